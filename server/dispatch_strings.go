package server

import (
	"strconv"
	"strings"

	"github.com/nullcache/nullcache/core"
	"github.com/nullcache/nullcache/message"
)

// formatFloatForWire renders f the way redis renders scores and counter
// replies: the shortest decimal that round-trips, trailing zeros trimmed.
func formatFloatForWire(f float64) string {
	if short := strconv.FormatFloat(f, 'f', -1, 64); short != "" {
		return short
	}
	return strconv.FormatFloat(f, 'f', 17, 64)
}

// parseSetExpiry scans the optional "EX seconds" / "PX millis" trailer
// of a SET command starting at argument index i.
func parseSetExpiry(r *message.Request, i int) (expiresAt *int64, ok bool) {
	if r.ArgumentsLen() <= i {
		return nil, true
	}
	opt, _ := r.GetArgumentString(i)
	n, _ := r.GetArgumentInt(i + 1)

	switch strings.ToUpper(opt) {
	case "EX":
		at := nowMsForServer() + int64(n)*1000
		return &at, true
	case "PX":
		at := nowMsForServer() + int64(n)
		return &at, true
	default:
		return nil, false
	}
}

func cmdSet(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 2 {
		return argErr()
	}
	key, _ := r.GetArgumentBytes(0)
	val, _ := r.GetArgumentBytes(1)

	expiresAt, ok := parseSetExpiry(r, 2)
	if !ok {
		return responseInvalidArguments("syntax error")
	}

	s.Set(key, val, expiresAt)
	return responseOk()
}

func cmdGet(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	val, ok, err := s.Get(key)
	if err != nil {
		return responseError(err)
	}
	return responseBulkOrNotFound(val, ok)
}

func cmdIncr(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	n, err := s.IncrBy(key, 1)
	if err != nil {
		return responseError(err)
	}
	return responseInt64(n)
}

func cmdDecr(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	n, err := s.IncrBy(key, -1)
	if err != nil {
		return responseError(err)
	}
	return responseInt64(n)
}

func cmdIncrBy(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	arg, _ := r.GetArgumentString(1)
	delta, ok := parseInt64(arg)
	if !ok {
		return responseInvalidArguments("value is not an integer or out of range")
	}
	n, err := s.IncrBy(key, delta)
	if err != nil {
		return responseError(err)
	}
	return responseInt64(n)
}

func cmdDecrBy(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	arg, _ := r.GetArgumentString(1)
	delta, ok := parseInt64(arg)
	if !ok {
		return responseInvalidArguments("value is not an integer or out of range")
	}
	n, err := s.IncrBy(key, -delta)
	if err != nil {
		return responseError(err)
	}
	return responseInt64(n)
}

func cmdIncrByFloat(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	arg, _ := r.GetArgumentString(1)
	delta, ok := parseFloat(arg)
	if !ok {
		return responseInvalidArguments("value is not a valid float")
	}
	n, err := s.IncrByFloat(key, delta)
	if err != nil {
		return responseError(err)
	}
	return responseBulk([]byte(formatFloatForWire(n)))
}

func cmdAppend(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	suffix, _ := r.GetArgumentBytes(1)
	n, err := s.AppendString(key, suffix)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

func cmdGetDel(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	val, ok, err := s.GetDel(key)
	if err != nil {
		return responseError(err)
	}
	return responseBulkOrNotFound(val, ok)
}

func cmdGetEx(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}

	persist := false
	var expiresAt *int64
	if r.ArgumentsLen() > 1 {
		opt, _ := r.GetArgumentString(1)
		switch strings.ToUpper(opt) {
		case "PERSIST":
			persist = true
		case "EX":
			n, perr := r.GetArgumentInt(2)
			if perr != nil {
				return responseInvalidArguments("value is not an integer or out of range")
			}
			at := nowMsForServer() + int64(n)*1000
			expiresAt = &at
		case "PX":
			n, perr := r.GetArgumentInt(2)
			if perr != nil {
				return responseInvalidArguments("value is not an integer or out of range")
			}
			at := nowMsForServer() + int64(n)
			expiresAt = &at
		default:
			return responseInvalidArguments("syntax error")
		}
	}

	val, ok, err := s.GetEx(key, expiresAt, persist)
	if err != nil {
		return responseError(err)
	}
	return responseBulkOrNotFound(val, ok)
}

func cmdGetRange(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	startArg, _ := r.GetArgumentString(1)
	endArg, _ := r.GetArgumentString(2)
	start, ok1 := parseInt(startArg)
	end, ok2 := parseInt(endArg)
	if !ok1 || !ok2 {
		return responseInvalidArguments("value is not an integer or out of range")
	}
	result, err := s.GetRange(key, start, end)
	if err != nil {
		return responseError(err)
	}
	return responseBulk(result)
}

func cmdSetRange(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	offArg, _ := r.GetArgumentString(1)
	offset, ok := parseInt(offArg)
	if !ok {
		return responseInvalidArguments("value is not an integer or out of range")
	}
	data, _ := r.GetArgumentBytes(2)
	n, err := s.SetRange(key, offset, data)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

func cmdSetBit(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	offArg, _ := r.GetArgumentString(1)
	offset, ok1 := parseInt(offArg)
	bitArg, _ := r.GetArgumentString(2)
	bitValue, ok2 := parseInt(bitArg)
	if !ok1 || !ok2 {
		return responseInvalidArguments("bit offset is not an integer or out of range")
	}
	old, err := s.SetBit(key, offset, bitValue)
	if err != nil {
		return responseError(err)
	}
	return responseInt(old)
}

func cmdGetBit(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	offArg, _ := r.GetArgumentString(1)
	offset, ok := parseInt(offArg)
	if !ok {
		return responseInvalidArguments("bit offset is not an integer or out of range")
	}
	bit, err := s.GetBit(key, offset)
	if err != nil {
		return responseError(err)
	}
	return responseInt(bit)
}

func cmdBitCount(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	var start, end *int
	if r.ArgumentsLen() >= 3 {
		startArg, _ := r.GetArgumentString(1)
		endArg, _ := r.GetArgumentString(2)
		s0, ok1 := parseInt(startArg)
		e0, ok2 := parseInt(endArg)
		if !ok1 || !ok2 {
			return responseInvalidArguments("value is not an integer or out of range")
		}
		start, end = &s0, &e0
	}
	n, err := s.BitCount(key, start, end)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

func cmdBitOp(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 3 {
		return argErr()
	}
	opArg, _ := r.GetArgumentString(0)
	dst, _ := r.GetArgumentBytes(1)
	srcs, _ := r.GetArgumentVariadicBytes(2)

	var op core.BitOpKind
	switch strings.ToUpper(opArg) {
	case "AND":
		op = core.BitOpAnd
	case "OR":
		op = core.BitOpOr
	case "XOR":
		op = core.BitOpXor
	case "NOT":
		op = core.BitOpNot
	default:
		return responseInvalidArguments("syntax error")
	}

	n, err := s.BitOp(op, dst, srcs)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}
