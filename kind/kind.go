// Package kind implements the error-kind taxonomy used by the binlog
// client: errors built with this package carry a Kind that kind.Of recovers.
// Not every error the client returns is built here; for the others (plain
// fmt.Errorf errors and sentinels such as ErrMalformedPacket) Of reports
// Unknown.
package kind

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// Unknown is the zero Kind; Of returns it for errors that don't carry
	// one of the kinds below.
	Unknown Kind = iota

	// InputIncomplete means a decoder needs more bytes than it was given.
	InputIncomplete

	// ConstraintError means decoded data violates an invariant the format
	// requires (e.g. a GTID interval set that isn't strictly increasing).
	ConstraintError

	// PacketError means the packet framer saw a malformed or out-of-sequence
	// packet.
	PacketError

	// SqlError wraps a server-reported ERR packet.
	SqlError

	// BinlogChecksumMismatch means an event's trailing CRC32 didn't match
	// the computed checksum.
	BinlogChecksumMismatch

	// InvalidBinlogFormat means the binlog stream or file failed a
	// structural check (bad magic header, unsupported version, ...).
	InvalidBinlogFormat

	// ParseTime means a temporal value could not be decoded.
	ParseTime

	// Utf8 means a byte sequence was expected to be valid UTF-8 and wasn't.
	Utf8

	// AddrNotFound means the configured host/port could not be resolved or
	// dialed.
	AddrNotFound

	// Unsupported means the caller asked for a feature this client
	// deliberately does not implement.
	Unsupported

	// Io wraps a plain I/O failure from the underlying transport.
	Io
)

func (k Kind) String() string {
	switch k {
	case InputIncomplete:
		return "input incomplete"
	case ConstraintError:
		return "constraint error"
	case PacketError:
		return "packet error"
	case SqlError:
		return "sql error"
	case BinlogChecksumMismatch:
		return "binlog checksum mismatch"
	case InvalidBinlogFormat:
		return "invalid binlog format"
	case ParseTime:
		return "parse time"
	case Utf8:
		return "invalid utf8"
	case AddrNotFound:
		return "address not found"
	case Unsupported:
		return "unsupported"
	case Io:
		return "io error"
	default:
		return "unknown"
	}
}

// Error is the concrete error type carrying a Kind plus structured detail.
type Error struct {
	K       Kind
	Cause   error
	Message string

	// InputIncomplete detail.
	Consumed, Needed int

	// SqlError detail.
	Code     uint16
	SQLState string

	// BinlogChecksumMismatch detail.
	Expected, Actual uint32
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	switch e.K {
	case InputIncomplete:
		return fmt.Sprintf("binlog: input incomplete: consumed %d, needed %d", e.Consumed, e.Needed)
	case SqlError:
		return fmt.Sprintf("binlog: sql error %d (%s): %s", e.Code, e.SQLState, msg)
	case BinlogChecksumMismatch:
		return fmt.Sprintf("binlog: checksum mismatch: expected %08x, got %08x", e.Expected, e.Actual)
	default:
		if msg == "" {
			return fmt.Sprintf("binlog: %s", e.K)
		}
		return fmt.Sprintf("binlog: %s: %s", e.K, msg)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Of reports the Kind carried by err, or Unknown if err (or anything it
// wraps) is not a *Error.
func Of(err error) Kind {
	var e *Error
	for err != nil {
		if k, ok := err.(*Error); ok {
			e = k
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if e == nil {
		return Unknown
	}
	return e.K
}

// New builds a new *Error of kind k with a plain message.
func New(k Kind, message string) *Error {
	return &Error{K: k, Message: message}
}

// Wrap builds a new *Error of kind k wrapping cause. The cause is wrapped
// with errors.Wrap, so the stack trace recorded at the wrap is kept on
// e.Cause (printed by %+v on e.Cause; e.Error() shows only the kind and
// message), and errors.Unwrap reaches the original cause through it.
func Wrap(k Kind, cause error, message string) *Error {
	return &Error{K: k, Cause: errors.Wrap(cause, message), Message: message}
}

// Incomplete builds an InputIncomplete error.
func Incomplete(consumed, needed int) *Error {
	return &Error{K: InputIncomplete, Consumed: consumed, Needed: needed}
}

// Sql builds a SqlError from a server ERR packet.
func Sql(code uint16, sqlState, message string) *Error {
	return &Error{K: SqlError, Code: code, SQLState: sqlState, Message: message}
}

// ChecksumMismatch builds a BinlogChecksumMismatch error.
func ChecksumMismatch(expected, actual uint32) *Error {
	return &Error{K: BinlogChecksumMismatch, Expected: expected, Actual: actual}
}
