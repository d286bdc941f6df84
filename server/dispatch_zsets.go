package server

import (
	"math"
	"strconv"
	"strings"

	"github.com/nullcache/nullcache/core"
	"github.com/nullcache/nullcache/message"
)

// parseScoreBound parses a ZRANGEBYSCORE-style bound: "-inf"/"+inf" for
// the unbounded ends, a leading "(" for exclusivity, else a plain float.
func parseScoreBound(s string) (score float64, excl bool, ok bool) {
	if len(s) > 0 && s[0] == '(' {
		excl = true
		s = s[1:]
	}
	switch strings.ToLower(s) {
	case "-inf":
		return math.Inf(-1), excl, true
	case "+inf", "inf":
		return math.Inf(1), excl, true
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, excl, err == nil
}

func cmdZAdd(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 3 {
		return argErr()
	}
	key, _ := r.GetArgumentBytes(0)
	rest, _ := r.GetArgumentVariadicString(1)

	var opts core.ZAddOption
	i := 0
	for i < len(rest) {
		switch strings.ToUpper(rest[i]) {
		case "NX":
			opts |= core.ZAddNX
		case "XX":
			opts |= core.ZAddXX
		case "GT":
			opts |= core.ZAddGT
		case "LT":
			opts |= core.ZAddLT
		case "CH":
			opts |= core.ZAddCH
		case "INCR":
			opts |= core.ZAddIncr
		default:
			goto pairs
		}
		i++
	}
pairs:
	remaining := rest[i:]
	if len(remaining) == 0 || len(remaining)%2 != 0 {
		return argErr()
	}

	members := make([]string, len(remaining)/2)
	scores := make([]float64, len(remaining)/2)
	for j := 0; j < len(remaining); j += 2 {
		score, ok := parseFloat(remaining[j])
		if !ok {
			return responseInvalidArguments("value is not a valid float")
		}
		scores[j/2] = score
		members[j/2] = remaining[j+1]
	}

	count, incrResult, err := s.ZAdd(key, opts, members, scores)
	if err != nil {
		return responseError(err)
	}
	if opts&core.ZAddIncr != 0 {
		if incrResult == nil {
			return responseNotFound()
		}
		return responseBulk([]byte(formatFloatForWire(*incrResult)))
	}
	return responseInt(count)
}

func cmdZRem(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 2 {
		return argErr()
	}
	key, _ := r.GetArgumentBytes(0)
	members, _ := r.GetArgumentVariadicString(1)
	n, err := s.ZRem(key, members)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

func zsetReply(members []string, scores []float64, withScores bool) message.Response {
	out := make([][]byte, 0, len(members)*2)
	for i, m := range members {
		out = append(out, []byte(m))
		if withScores {
			out = append(out, []byte(formatFloatForWire(scores[i])))
		}
	}
	return responseStringSlice(out)
}

func cmdZRange(reverse bool) commandFunc {
	return func(s *core.Store, r *message.Request) message.Response {
		key, err := r.GetArgumentBytes(0)
		if err != nil {
			return argErr()
		}
		startArg, _ := r.GetArgumentString(1)
		stopArg, _ := r.GetArgumentString(2)
		start, ok1 := parseInt(startArg)
		stop, ok2 := parseInt(stopArg)
		if !ok1 || !ok2 {
			return responseInvalidArguments("value is not an integer or out of range")
		}
		withScores := false
		if r.ArgumentsLen() > 3 {
			opt, _ := r.GetArgumentString(3)
			withScores = strings.EqualFold(opt, "WITHSCORES")
		}
		members, scores, err := s.ZRange(key, start, stop, reverse)
		if err != nil {
			return responseError(err)
		}
		return zsetReply(members, scores, withScores)
	}
}

func cmdZScore(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	member, _ := r.GetArgumentString(1)
	score, ok, err := s.ZScore(key, member)
	if err != nil {
		return responseError(err)
	}
	if !ok {
		return responseNotFound()
	}
	return responseBulk([]byte(formatFloatForWire(score)))
}

func cmdZCard(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	n, err := s.ZCard(key)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

func cmdZRank(reverse bool) commandFunc {
	return func(s *core.Store, r *message.Request) message.Response {
		key, err := r.GetArgumentBytes(0)
		if err != nil {
			return argErr()
		}
		member, _ := r.GetArgumentString(1)
		rank, ok, err := s.ZRank(key, member, reverse)
		if err != nil {
			return responseError(err)
		}
		if !ok {
			return responseNotFound()
		}
		return responseInt(rank)
	}
}

func cmdZIncrBy(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	deltaArg, _ := r.GetArgumentString(1)
	delta, ok := parseFloat(deltaArg)
	if !ok {
		return responseInvalidArguments("value is not a valid float")
	}
	member, _ := r.GetArgumentString(2)
	score, err := s.ZIncrBy(key, member, delta)
	if err != nil {
		return responseError(err)
	}
	return responseBulk([]byte(formatFloatForWire(score)))
}

func cmdZPop(max bool) commandFunc {
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
		members, scores, err := s.ZPop(key, count, max)
		if err != nil {
			return responseError(err)
		}
		return zsetReply(members, scores, true)
	}
}

func cmdZMScore(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	members, _ := r.GetArgumentVariadicString(1)
	scores, found, err := s.ZMScore(key, members)
	if err != nil {
		return responseError(err)
	}
	out := make([][]byte, len(members))
	for i := range members {
		if found[i] {
			out[i] = []byte(formatFloatForWire(scores[i]))
		}
	}
	return responseStringSlice(out)
}

func cmdZCount(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	minArg, _ := r.GetArgumentString(1)
	maxArg, _ := r.GetArgumentString(2)
	minScore, minExcl, ok1 := parseScoreBound(minArg)
	maxScore, maxExcl, ok2 := parseScoreBound(maxArg)
	if !ok1 || !ok2 {
		return responseInvalidArguments("min or max is not a float")
	}
	n, err := s.ZCount(key, minScore, maxScore, minExcl, maxExcl)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

// cmdZRangeByScore builds ZRANGEBYSCORE (reverse=false) and
// ZREVRANGEBYSCORE (reverse=true, which also swaps the min/max argument
// order at the call site the way redis does).
func cmdZRangeByScore(reverse bool) commandFunc {
	return func(s *core.Store, r *message.Request) message.Response {
		key, err := r.GetArgumentBytes(0)
		if err != nil {
			return argErr()
		}
		firstArg, _ := r.GetArgumentString(1)
		secondArg, _ := r.GetArgumentString(2)

		minArg, maxArg := firstArg, secondArg
		if reverse {
			minArg, maxArg = secondArg, firstArg
		}
		minScore, minExcl, ok1 := parseScoreBound(minArg)
		maxScore, maxExcl, ok2 := parseScoreBound(maxArg)
		if !ok1 || !ok2 {
			return responseInvalidArguments("min or max is not a float")
		}

		withScores := false
		offset, count := 0, -1
		rest, _ := r.GetArgumentVariadicString(3)
		for i := 0; i < len(rest); i++ {
			switch strings.ToUpper(rest[i]) {
			case "WITHSCORES":
				withScores = true
			case "LIMIT":
				if i+2 >= len(rest) {
					return argErr()
				}
				o, ok := parseInt(rest[i+1])
				c, ok2 := parseInt(rest[i+2])
				if !ok || !ok2 {
					return responseInvalidArguments("value is not an integer or out of range")
				}
				offset, count = o, c
				i += 2
			}
		}

		members, scores, err := s.ZRangeByScore(key, minScore, maxScore, minExcl, maxExcl, offset, count, reverse)
		if err != nil {
			return responseError(err)
		}
		return zsetReply(members, scores, withScores)
	}
}

func cmdZRandMember(s *core.Store, r *message.Request) message.Response {
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
	withScores := false
	if r.ArgumentsLen() > 2 {
		opt, _ := r.GetArgumentString(2)
		withScores = strings.EqualFold(opt, "WITHSCORES")
	}
	members, scores, err := s.ZRandMember(key, count)
	if err != nil {
		return responseError(err)
	}
	return zsetReply(members, scores, withScores)
}
