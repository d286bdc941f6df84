package server

import (
	"strings"

	"github.com/nullcache/nullcache/core"
	"github.com/nullcache/nullcache/message"
)

func cmdPush(left, mustExist bool) commandFunc {
	return func(s *core.Store, r *message.Request) message.Response {
		if r.ArgumentsLen() < 2 {
			return argErr()
		}
		key, _ := r.GetArgumentBytes(0)
		elems, _ := r.GetArgumentVariadicBytes(1)
		n, err := s.Push(key, left, mustExist, elems)
		if err != nil {
			return responseError(err)
		}
		return responseInt(n)
	}
}

func cmdPop(left bool) commandFunc {
	return func(s *core.Store, r *message.Request) message.Response {
		key, err := r.GetArgumentBytes(0)
		if err != nil {
			return argErr()
		}
		count := 1
		if r.ArgumentsLen() > 1 {
			arg, _ := r.GetArgumentString(1)
			n, ok := parseInt(arg)
			if !ok {
				return responseInvalidArguments("value is not an integer or out of range")
			}
			count = n
		}
		elems, err := s.Pop(key, left, count)
		if err != nil {
			return responseError(err)
		}
		if len(elems) == 0 {
			return responseNotFound()
		}
		return responseStringSlice(elems)
	}
}

func cmdLLen(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	n, err := s.LLen(key)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

func cmdLRange(s *core.Store, r *message.Request) message.Response {
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
	elems, err := s.LRange(key, start, end)
	if err != nil {
		return responseError(err)
	}
	return responseStringSlice(elems)
}

func cmdLIndex(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	idxArg, _ := r.GetArgumentString(1)
	idx, ok := parseInt(idxArg)
	if !ok {
		return responseInvalidArguments("value is not an integer or out of range")
	}
	elem, found, err := s.LIndex(key, idx)
	if err != nil {
		return responseError(err)
	}
	return responseBulkOrNotFound(elem, found)
}

func cmdLSet(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	idxArg, _ := r.GetArgumentString(1)
	idx, ok := parseInt(idxArg)
	if !ok {
		return responseInvalidArguments("value is not an integer or out of range")
	}
	elem, _ := r.GetArgumentBytes(2)
	if err := s.LSet(key, idx, elem); err != nil {
		return responseError(err)
	}
	return responseOk()
}

func cmdLTrim(s *core.Store, r *message.Request) message.Response {
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
	if err := s.LTrim(key, start, end); err != nil {
		return responseError(err)
	}
	return responseOk()
}

func cmdLRem(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	countArg, _ := r.GetArgumentString(1)
	count, ok := parseInt(countArg)
	if !ok {
		return responseInvalidArguments("value is not an integer or out of range")
	}
	elem, _ := r.GetArgumentBytes(2)
	n, err := s.LRem(key, count, elem)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

// cmdLPos implements LPOS key element [RANK rank] [COUNT count]
// [MAXLEN maxlen]. Without an explicit COUNT, it replies with a single
// index (or a not-found nil); COUNT, even COUNT 1, switches to an array
// reply the way redis does, since the client asked for a match list.
func cmdLPos(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	elem, _ := r.GetArgumentBytes(1)

	rank, count, maxlen := 1, 1, 0
	explicitCount := false

	rest, _ := r.GetArgumentVariadicString(2)
	for i := 0; i < len(rest); i++ {
		if i+1 >= len(rest) {
			return argErr()
		}
		n, ok := parseInt(rest[i+1])
		if !ok {
			return responseInvalidArguments("value is not an integer or out of range")
		}
		switch strings.ToUpper(rest[i]) {
		case "RANK":
			if n == 0 {
				return responseInvalidArguments("RANK can't be zero")
			}
			rank = n
		case "COUNT":
			if n < 0 {
				return responseInvalidArguments("COUNT can't be negative")
			}
			count = n
			explicitCount = true
		case "MAXLEN":
			if n < 0 {
				return responseInvalidArguments("MAXLEN can't be negative")
			}
			maxlen = n
		default:
			return argErr()
		}
		i++
	}

	matched, err := s.LPos(key, elem, rank, count, maxlen)
	if err != nil {
		return responseError(err)
	}
	if !explicitCount {
		if len(matched) == 0 {
			return responseNotFound()
		}
		return responseInt(matched[0])
	}
	return responseIntSlice(matched)
}

func cmdLInsert(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	whereArg, err := r.GetArgumentString(1)
	if err != nil {
		return argErr()
	}
	var before bool
	switch strings.ToUpper(whereArg) {
	case "BEFORE":
		before = true
	case "AFTER":
		before = false
	default:
		return responseInvalidArguments("syntax error")
	}
	pivot, _ := r.GetArgumentBytes(2)
	elem, _ := r.GetArgumentBytes(3)
	n, err := s.LInsert(key, before, pivot, elem)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

func cmdLMove(s *core.Store, r *message.Request) message.Response {
	src, err1 := r.GetArgumentBytes(0)
	dst, err2 := r.GetArgumentBytes(1)
	srcWhere, err3 := r.GetArgumentString(2)
	dstWhere, err4 := r.GetArgumentString(3)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return argErr()
	}

	elem, ok, err := s.LMove(src, dst, isLeft(srcWhere), isLeft(dstWhere))
	if err != nil {
		return responseError(err)
	}
	return responseBulkOrNotFound(elem, ok)
}

func isLeft(s string) bool {
	return len(s) > 0 && (s[0] == 'L' || s[0] == 'l')
}
