package server

import (
	"github.com/nullcache/nullcache/core"
	"github.com/nullcache/nullcache/message"
)

func cmdHSet(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 3 || r.ArgumentsLen()%2 != 1 {
		return argErr()
	}
	key, _ := r.GetArgumentBytes(0)
	rest, _ := r.GetArgumentVariadicBytes(1)

	fields := make(map[string][]byte, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		fields[string(rest[i])] = rest[i+1]
	}

	n, err := s.HSet(key, fields)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

func cmdHSetNX(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	field, _ := r.GetArgumentString(1)
	val, _ := r.GetArgumentBytes(2)
	ok, err := s.HSetNX(key, field, val)
	if err != nil {
		return responseError(err)
	}
	return responseInt(boolToInt(ok))
}

func cmdHGet(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	field, _ := r.GetArgumentString(1)
	val, ok, err := s.HGet(key, field)
	if err != nil {
		return responseError(err)
	}
	return responseBulkOrNotFound(val, ok)
}

func cmdHDel(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 2 {
		return argErr()
	}
	key, _ := r.GetArgumentBytes(0)
	fieldArgs, _ := r.GetArgumentVariadicString(1)
	n, err := s.HDel(key, fieldArgs)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

func cmdHExists(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	field, _ := r.GetArgumentString(1)
	ok, err := s.HExists(key, field)
	if err != nil {
		return responseError(err)
	}
	return responseInt(boolToInt(ok))
}

func cmdHLen(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	n, err := s.HLen(key)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

func cmdHGetAll(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	fields, err := s.HGetAll(key)
	if err != nil {
		return responseError(err)
	}
	result := make([][]byte, 0, len(fields)*2)
	for f, v := range fields {
		result = append(result, []byte(f), v)
	}
	return responseStringSlice(result)
}

func cmdHKeys(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	keys, err := s.HKeys(key)
	if err != nil {
		return responseError(err)
	}
	result := make([][]byte, len(keys))
	for i, k := range keys {
		result[i] = []byte(k)
	}
	return responseStringSlice(result)
}

func cmdHVals(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	vals, err := s.HVals(key)
	if err != nil {
		return responseError(err)
	}
	return responseStringSlice(vals)
}

func cmdHIncrBy(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	field, _ := r.GetArgumentString(1)
	deltaArg, _ := r.GetArgumentString(2)
	delta, ok := parseInt64(deltaArg)
	if !ok {
		return responseInvalidArguments("value is not an integer or out of range")
	}
	n, err := s.HIncrBy(key, field, delta)
	if err != nil {
		return responseError(err)
	}
	return responseInt64(n)
}

func cmdHIncrByFloat(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	field, _ := r.GetArgumentString(1)
	deltaArg, _ := r.GetArgumentString(2)
	delta, ok := parseFloat(deltaArg)
	if !ok {
		return responseInvalidArguments("value is not a valid float")
	}
	n, err := s.HIncrByFloat(key, field, delta)
	if err != nil {
		return responseError(err)
	}
	return responseBulk([]byte(formatFloatForWire(n)))
}
