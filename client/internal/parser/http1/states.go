package http1

type parserState uint8

const (
	eProto parserState = iota + 1
	eCode
	eReason
	eHeaderKey
	eHeaderKeyCR
	eHeaderColon
	eHeaderValue
	eDone
)
