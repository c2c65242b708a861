package mqtt5

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors returned as-is (not wrapped in a MalformedError or
// TruncatedError) by the encode path, Write and WriteInto. Callers that
// care about the specific failure reason should use errors.Is against
// these rather than string-matching Error().
var (
	ErrVariableByteIntegerTooLarge = errors.New("variable byte integer exceeds maximum (268,435,455)")
	ErrPacketTooLarge              = errors.New("packet exceeds maximum remaining length (268,435,455)")
	ErrFieldTooLong                = errors.New("string or binary data field exceeds 65535 bytes")
)

// ConstructionError is returned by a packet constructor (NewXxxPacket) when
// the supplied fields would violate one of spec.md §3.4's invariants
// (I1)-(I6). It is never returned by Read.
type ConstructionError struct {
	Field  string
	Reason string
	cause  error
}

func (e *ConstructionError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ConstructionError) Unwrap() error { return e.cause }

func newConstructionError(field, reason string, cause error) *ConstructionError {
	return &ConstructionError{Field: field, Reason: reason, cause: cause}
}

// TruncatedError is returned by Read when the input byte slice ends inside
// an otherwise well-formed construct. The caller may retry Read once more
// bytes are available; nothing about the already-read bytes is malformed.
//
// Needed, when known, is the number of additional bytes Read would need to
// make progress (e.g. once the fixed header's remaining length has been
// parsed). It is -1 when the shortfall cannot yet be determined (e.g. the
// input ends inside the variable byte integer itself).
type TruncatedError struct {
	Needed int
	cause  error
}

func (e *TruncatedError) Error() string {
	if e.Needed >= 0 {
		return fmt.Sprintf("truncated input: need %d more byte(s)", e.Needed)
	}
	return "truncated input"
}

func (e *TruncatedError) Unwrap() error { return e.cause }

func newTruncatedError(needed int, cause error) *TruncatedError {
	return &TruncatedError{Needed: needed, cause: cause}
}

// MalformedError is returned by Read when the bytes cannot represent a
// legal MQTT 5 packet. There is no recovery: the caller must abort the
// connection. ReasonCode is the MQTT 5.0 reason code a caller would send
// back on the wire while closing the connection (ReasonMalformedPacket,
// ReasonProtocolError, ReasonUnsupportedProtocolVersion, …).
type MalformedError struct {
	ReasonCode ReasonCode
	Detail     string
	cause      error
}

func (e *MalformedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("malformed packet (%s)", e.ReasonCode)
	}
	return fmt.Sprintf("malformed packet (%s): %s", e.ReasonCode, e.Detail)
}

func (e *MalformedError) Unwrap() error { return e.cause }

func newMalformedError(rc ReasonCode, detail string, cause error) *MalformedError {
	return &MalformedError{ReasonCode: rc, Detail: detail, cause: cause}
}

func malformed(rc ReasonCode, detail string) error {
	return newMalformedError(rc, detail, errors.New(detail))
}

func malformedWrap(rc ReasonCode, detail string, cause error) error {
	return newMalformedError(rc, detail, errors.Wrap(cause, detail))
}
