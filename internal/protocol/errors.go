package protocol

import "errors"

// Sentinel errors for the failure kinds a connection can run into while speaking the protocol.
// Callers compare with errors.Is; wrapped errors carry the underlying cause.
var (
	// ErrConnectionError covers transport-layer failures surfaced while reading or writing.
	ErrConnectionError = errors.New("protocol: connection error")

	// ErrConnectionLost covers a closed or otherwise gone connection.
	ErrConnectionLost = errors.New("protocol: connection lost")

	// ErrParsingFailed covers a CBOR payload that failed to decode into the expected shape.
	ErrParsingFailed = errors.New("protocol: parsing failed")

	// ErrProtocolViolation covers a structurally valid but semantically disallowed message
	// (wrong message type, out-of-range value, unexpected frame while a handshake is pending).
	ErrProtocolViolation = errors.New("protocol: protocol violation")

	// ErrTimeout covers the hello handshake not completing within its deadline.
	ErrTimeout = errors.New("protocol: timeout")
)
