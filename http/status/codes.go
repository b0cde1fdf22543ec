package status

type (
	Code   uint16
	Status string
)

// Codes the client treats specially. Anything else is passed through as is.
const (
	Continue           Code = 100
	SwitchingProtocols Code = 101

	OK        Code = 200
	NoContent Code = 204

	NotModified Code = 304
)

// IsInterim reports whether the code denotes an informational response, which is followed
// by the final one on the same connection.
func (c Code) IsInterim() bool {
	return c >= 100 && c < 200 && c != SwitchingProtocols
}

// HasBody reports whether a response with the code may carry a body at all.
func (c Code) HasBody() bool {
	return !(c >= 100 && c < 200) && c != NoContent && c != NotModified
}

// Valid reports whether the code fits into the three-digit range.
func (c Code) Valid() bool {
	return c >= 100 && c <= 999
}
