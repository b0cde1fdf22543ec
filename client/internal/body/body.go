package body

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/nbclient/config"
	"github.com/indigo-web/nbclient/http/codec"
	"github.com/indigo-web/nbclient/http/status"
)

// Framing tells how the end of a body is recognized.
type Framing uint8

const (
	// None means there is no body at all.
	None Framing = iota
	// Length means the body is exactly as long as declared by Content-Length.
	Length
	// Chunked means the body is in the chunked transfer coding.
	Chunked
	// UntilClose means the body lasts until the peer closes the connection.
	UntilClose
)

// Body accumulates a response body, recognizing its end.
type Body struct {
	framing Framing
	left    uint64
	maxSize uint64
	trailer bool
	chunked *chunkedbody.Parser
	data    []byte
	done    bool
}

func New(cfg config.Body) *Body {
	return &Body{maxSize: cfg.MaxSize}
}

// Reset prepares the body for a new message. The length is meaningful only for the
// Length framing, trailer only for Chunked.
func (b *Body) Reset(framing Framing, length uint64, trailer bool) error {
	if framing == Length && length > b.maxSize {
		return status.ErrBodyTooLarge
	}

	b.framing = framing
	b.left = length
	b.trailer = trailer
	b.data = b.data[:0]
	b.done = framing == None || (framing == Length && length == 0)

	if framing == Chunked {
		b.chunked = chunkedbody.NewParser(chunkedbody.DefaultSettings())
	}

	return nil
}

// Write consumes a piece of the body. Bytes beyond the end of the body are an error,
// as nothing may follow a response before the next request is sent.
func (b *Body) Write(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	if b.done {
		return status.ErrExcessData
	}

	switch b.framing {
	case Length:
		if uint64(len(data)) > b.left {
			return status.ErrExcessData
		}

		b.left -= uint64(len(data))
		b.done = b.left == 0

		return b.append(data)
	case Chunked:
		for len(data) > 0 {
			chunk, extra, err := b.chunked.Parse(data, b.trailer)
			switch err {
			case nil:
			case io.EOF:
				b.done = true
			default:
				return fmt.Errorf("%w: %w", status.ErrBadChunk, err)
			}

			if err = b.append(chunk); err != nil {
				return err
			}

			if b.done && len(extra) > 0 {
				return status.ErrExcessData
			}

			data = extra
		}

		return nil
	case UntilClose:
		return b.append(data)
	default:
		return status.ErrExcessData
	}
}

func (b *Body) append(data []byte) error {
	if uint64(len(b.data))+uint64(len(data)) > b.maxSize {
		return status.ErrBodyTooLarge
	}

	b.data = append(b.data, data...)
	return nil
}

// Done reports whether the end of the body was seen. Bodies lasting until close are
// never done on their own.
func (b *Body) Done() bool {
	return b.done
}

// Satisfied reports whether the body may be considered complete if the data stops
// coming now.
func (b *Body) Satisfied() bool {
	return b.done || b.framing == UntilClose
}

// Bytes returns the body received so far. It stays valid until the next Reset.
func (b *Body) Bytes() []byte {
	return b.data
}

// Decode replaces the body by its decoded representation. The result is subject to
// the same size limit.
func (b *Body) Decode(c codec.Codec) error {
	r, err := c.NewReader(bytes.NewReader(b.data))
	if err != nil {
		return fmt.Errorf("%s: %w", c.Token(), err)
	}

	defer r.Close()

	decoded, err := io.ReadAll(io.LimitReader(r, int64(min(b.maxSize, math.MaxInt64-1))+1))
	if err != nil {
		return fmt.Errorf("%s: %w", c.Token(), err)
	}

	if uint64(len(decoded)) > b.maxSize {
		return status.ErrBodyTooLarge
	}

	b.data = decoded
	return nil
}
