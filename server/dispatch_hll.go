package server

import (
	"github.com/nullcache/nullcache/core"
	"github.com/nullcache/nullcache/message"
)

func cmdPFAdd(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 1 {
		return argErr()
	}
	key, _ := r.GetArgumentBytes(0)
	elements, _ := r.GetArgumentVariadicBytes(1)
	changed, err := s.PFAdd(key, elements)
	if err != nil {
		return responseError(err)
	}
	return responseInt(boolToInt(changed))
}

func cmdPFCount(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 1 {
		return argErr()
	}
	keys, _ := r.GetArgumentVariadicBytes(0)
	n, err := s.PFCount(keys)
	if err != nil {
		return responseError(err)
	}
	return responseInt64(n)
}

func cmdPFMerge(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 1 {
		return argErr()
	}
	dst, _ := r.GetArgumentBytes(0)
	srcs, _ := r.GetArgumentVariadicBytes(1)
	if err := s.PFMerge(dst, srcs); err != nil {
		return responseError(err)
	}
	return responseOk()
}
