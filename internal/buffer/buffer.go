package buffer

// Buffer hosts many short byte sequences (segments) in a single bounded slice. Segments
// may be written in pieces, as they arrive from the network, and are finished once
// complete. Finished segments stay valid until Clear.
type Buffer struct {
	memory  []byte
	begin   int
	maxSize int
}

func New(initialSize, maxSize int) *Buffer {
	return &Buffer{
		memory:  make([]byte, 0, initialSize),
		maxSize: maxSize,
	}
}

// Append writes data into the current segment. If the limit would be exceeded, nothing
// is written and false is returned.
func (b *Buffer) Append(data []byte) (ok bool) {
	if len(b.memory)+len(data) > b.maxSize {
		return false
	}

	b.memory = append(b.memory, data...)
	return true
}

// SegmentLength returns the number of bytes written into the current segment so far.
func (b *Buffer) SegmentLength() int {
	return len(b.memory) - b.begin
}

// Finish completes the current segment and returns it.
func (b *Buffer) Finish() []byte {
	// the capacity is cut, so appending to the segment never overwrites the next one
	segment := b.memory[b.begin:len(b.memory):len(b.memory)]
	b.begin = len(b.memory)

	return segment
}

// Clear forgets all the segments. Their memory is reused by the following ones, so
// previously returned segments must not be used anymore.
func (b *Buffer) Clear() {
	b.begin = 0
	b.memory = b.memory[:0]
}
