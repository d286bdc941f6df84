package server

import (
	"strings"

	"github.com/nullcache/nullcache/core"
	"github.com/nullcache/nullcache/message"
)

func cmdDump(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	blob, ok, err := s.Dump(key)
	if err != nil {
		return responseError(err)
	}
	return responseBulkOrNotFound(blob, ok)
}

func cmdRestore(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 3 {
		return argErr()
	}
	key, _ := r.GetArgumentBytes(0)
	ttlArg, _ := r.GetArgumentString(1)
	ttlMs, ok := parseInt64(ttlArg)
	if !ok {
		return responseInvalidArguments("value is not an integer or out of range")
	}
	blob, _ := r.GetArgumentBytes(2)

	replace := false
	if r.ArgumentsLen() > 3 {
		opt, _ := r.GetArgumentString(3)
		replace = strings.EqualFold(opt, "REPLACE")
	}

	if err := s.Restore(key, blob, ttlMs, replace); err != nil {
		return responseError(err)
	}
	return responseOk()
}
