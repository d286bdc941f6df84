package server

import (
	"fmt"

	"github.com/mshaverdo/assert"

	"github.com/nullcache/nullcache/core"
	"github.com/nullcache/nullcache/message"
)

// statusFor maps a core error sentinel to its wire-level Status. Every
// error the engine can return must have an entry here; an unmapped error
// is a programming mistake, not a client-facing condition, so it panics
// rather than leaking an "ERR unknown" reply.
func statusFor(err error) message.Status {
	switch err {
	case core.ErrWrongType:
		return message.StatusTypeMismatch
	case core.ErrNoSuchKey, core.ErrNoKey:
		return message.StatusNotFound
	case core.ErrNotInteger, core.ErrNotFloat, core.ErrOverflow, core.ErrInvalidValue,
		core.ErrInvalidStreamID, core.ErrStreamIDTooSmall, core.ErrInvalidDumpPayload,
		core.ErrDumpChecksumMismatch, core.ErrUnknownDumpType:
		return message.StatusInvalidArguments
	case core.ErrIndexOutOfRange:
		return message.StatusOutOfRange
	case core.ErrKeyAlreadyExists:
		return message.StatusAlreadyExists
	case core.ErrNoGroup:
		return message.StatusNoGroup
	case core.ErrGroupExists:
		return message.StatusGroupExists
	case core.ErrOutOfMemory:
		return message.StatusOutOfMemory
	default:
		assert.True(false, "unmapped core error: "+err.Error())
		return message.StatusError
	}
}

// responseError builds a Response carrying err's wire status and message.
func responseError(err error) message.Response {
	return message.NewResponseStatus(statusFor(err), err.Error())
}

// responseOk is the canonical "+OK" reply.
func responseOk() message.Response {
	return message.NewResponseStatus(message.StatusOk, "OK")
}

// responseNotFound is the canonical nil-bulk-reply "not found" status,
// used for absent-key reads that are not themselves errors.
func responseNotFound() message.Response {
	return message.NewResponseStatus(message.StatusNotFound, "")
}

// responseInvalidArguments reports a malformed command invocation (wrong
// arity, unparseable option, etc.) that never reached the engine.
func responseInvalidArguments(reason string) message.Response {
	return message.NewResponseStatus(message.StatusInvalidArguments, reason)
}

// responseInvalidCommand reports an unrecognized command name.
func responseInvalidCommand(cmd string) message.Response {
	return message.NewResponseStatus(message.StatusInvalidCommand, "unknown command '"+cmd+"'")
}

// responseRecovered builds a Response for a panic recovered from a
// handler -- an assert.True invariant trip or a programmer slip such as
// a bad slice bound. It goes straight to StatusError rather than through
// statusFor, since the recovered value is never one of core's sentinel
// errors.
func responseRecovered(r interface{}) message.Response {
	return message.NewResponseStatus(message.StatusError, fmt.Sprintf("internal error: %v", r))
}

func responseInt(n int) message.Response {
	return message.NewResponseInt(message.StatusOk, n)
}

func responseInt64(n int64) message.Response {
	return message.NewResponseInt(message.StatusOk, int(n))
}

func responseBulk(b []byte) message.Response {
	return message.NewResponseString(message.StatusOk, b)
}

func responseBulkOrNotFound(b []byte, ok bool) message.Response {
	if !ok {
		return responseNotFound()
	}
	return responseBulk(b)
}

func responseStringSlice(elems [][]byte) message.Response {
	if elems == nil {
		elems = [][]byte{}
	}
	return message.NewResponseStringSlice(message.StatusOk, elems)
}

func responseIntSlice(elems []int) message.Response {
	if elems == nil {
		elems = []int{}
	}
	return message.NewResponseIntSlice(message.StatusOk, elems)
}
