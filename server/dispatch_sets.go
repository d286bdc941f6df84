package server

import (
	"github.com/nullcache/nullcache/core"
	"github.com/nullcache/nullcache/message"
)

func cmdSAdd(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 2 {
		return argErr()
	}
	key, _ := r.GetArgumentBytes(0)
	members, _ := r.GetArgumentVariadicBytes(1)
	n, err := s.SAdd(key, members)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

func cmdSRem(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 2 {
		return argErr()
	}
	key, _ := r.GetArgumentBytes(0)
	members, _ := r.GetArgumentVariadicBytes(1)
	n, err := s.SRem(key, members)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

func cmdSIsMember(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	member, _ := r.GetArgumentBytes(1)
	ok, err := s.SIsMember(key, member)
	if err != nil {
		return responseError(err)
	}
	return responseInt(boolToInt(ok))
}

func cmdSMIsMember(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	members, _ := r.GetArgumentVariadicBytes(1)
	flags, err := s.SMIsMember(key, members)
	if err != nil {
		return responseError(err)
	}
	result := make([][]byte, len(flags))
	for i, f := range flags {
		result[i] = []byte{byte('0' + boolToInt(f))}
	}
	return responseStringSlice(result)
}

func cmdSMembers(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	members, err := s.SMembers(key)
	if err != nil {
		return responseError(err)
	}
	return responseStringSlice(members)
}

func cmdSCard(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	n, err := s.SCard(key)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

func cmdSPop(s *core.Store, r *message.Request) message.Response {
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
	members, err := s.SPop(key, count)
	if err != nil {
		return responseError(err)
	}
	if len(members) == 0 {
		return responseNotFound()
	}
	return responseStringSlice(members)
}

func cmdSRandMember(s *core.Store, r *message.Request) message.Response {
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
	members, err := s.SRandMember(key, count)
	if err != nil {
		return responseError(err)
	}
	return responseStringSlice(members)
}

func cmdSMove(s *core.Store, r *message.Request) message.Response {
	src, err1 := r.GetArgumentBytes(0)
	dst, err2 := r.GetArgumentBytes(1)
	member, err3 := r.GetArgumentBytes(2)
	if err1 != nil || err2 != nil || err3 != nil {
		return argErr()
	}
	ok, err := s.SMove(src, dst, member)
	if err != nil {
		return responseError(err)
	}
	return responseInt(boolToInt(ok))
}

func cmdSCombine(op core.SetAlgebra) commandFunc {
	return func(s *core.Store, r *message.Request) message.Response {
		if r.ArgumentsLen() < 1 {
			return argErr()
		}
		keys, _ := r.GetArgumentVariadicBytes(0)
		members, err := s.SCombine(op, keys)
		if err != nil {
			return responseError(err)
		}
		return responseStringSlice(members)
	}
}

func cmdSCombineStore(op core.SetAlgebra) commandFunc {
	return func(s *core.Store, r *message.Request) message.Response {
		if r.ArgumentsLen() < 2 {
			return argErr()
		}
		dst, _ := r.GetArgumentBytes(0)
		keys, _ := r.GetArgumentVariadicBytes(1)
		n, err := s.SCombineStore(op, dst, keys)
		if err != nil {
			return responseError(err)
		}
		return responseInt(n)
	}
}

func cmdSInterCard(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 2 {
		return argErr()
	}
	numKeysArg, _ := r.GetArgumentString(0)
	numKeys, ok := parseInt(numKeysArg)
	if !ok || numKeys < 1 {
		return responseInvalidArguments("numkeys should be greater than 0")
	}
	allRest, _ := r.GetArgumentVariadicBytes(1)
	if len(allRest) < numKeys {
		return argErr()
	}
	keys := allRest[:numKeys]

	limit := 0
	if rest := allRest[numKeys:]; len(rest) >= 2 {
		if string(rest[0]) == "LIMIT" || string(rest[0]) == "limit" {
			if n, ok := parseInt(string(rest[1])); ok {
				limit = n
			}
		}
	}

	n, err := s.SInterCard(keys, limit)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}
