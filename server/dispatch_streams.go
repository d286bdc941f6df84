package server

import (
	"strconv"
	"strings"

	"github.com/nullcache/nullcache/core"
	"github.com/nullcache/nullcache/message"
)

// streamEntryView is the subset of core's unexported streamEntry type
// this package needs to render a reply; core.Store.XRange/XReadGroup
// etc. return values whose method set already satisfies it.
type streamEntryView interface {
	ID() core.StreamID
	Fields() []string
	Values() [][]byte
}

// streamEntriesReply renders a slice of stream entries as a flat
// [id, pairs, id, pairs, ...] bulk-string sequence, two elements per
// entry, where pairs is that entry's field, value, field, value, ...
// joined with each part NUL-terminated -- message.Response has no
// nested-array shape, so ResponseStringSlice is reused here as for every
// other "multi bulk" reply in this dispatcher.
func streamEntriesReply(entries []streamEntryView) message.Response {
	out := make([][]byte, 0, len(entries)*2)
	for _, e := range entries {
		out = append(out, []byte(e.ID().String()))
		fields := e.Fields()
		values := e.Values()
		flat := make([][]byte, 0, len(fields)*2)
		for i, f := range fields {
			flat = append(flat, []byte(f), values[i])
		}
		out = append(out, joinWithNul(flat))
	}
	return responseStringSlice(out)
}

func joinWithNul(parts [][]byte) []byte {
	total := 0
	for _, p := range parts {
		total += len(p) + 1
	}
	out := make([]byte, 0, total)
	for _, p := range parts {
		out = append(out, p...)
		out = append(out, 0)
	}
	return out
}

func parseStreamIDArg(s string, seqDefault int64) (core.StreamID, bool) {
	id, err := core.ParseStreamID(s, seqDefault)
	return id, err == nil
}

func parseRangeBound(s string, seqDefault int64) (core.StreamID, bool) {
	switch s {
	case "-":
		return core.StreamID{Ms: 0, Seq: 0}, true
	case "+":
		return core.StreamID{Ms: 1<<63 - 1, Seq: 1<<63 - 1}, true
	default:
		return parseStreamIDArg(s, seqDefault)
	}
}

func itoa64(n int64) string {
	return strconv.FormatInt(n, 10)
}

func cmdXAdd(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 4 {
		return argErr()
	}
	key, _ := r.GetArgumentBytes(0)
	idArg, _ := r.GetArgumentString(1)
	rest, _ := r.GetArgumentVariadicBytes(2)
	if len(rest)%2 != 0 {
		return argErr()
	}

	var id *core.StreamID
	if idArg != "*" {
		parsed, ok := parseStreamIDArg(idArg, 0)
		if !ok {
			return responseError(core.ErrInvalidStreamID)
		}
		id = &parsed
	}

	fields := make([]string, len(rest)/2)
	values := make([][]byte, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		fields[i/2] = string(rest[i])
		values[i/2] = rest[i+1]
	}

	newID, err := s.XAdd(key, id, fields, values)
	if err != nil {
		return responseError(err)
	}
	return responseBulk([]byte(newID.String()))
}

func cmdXLen(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	n, err := s.XLen(key)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

func cmdXRange(reverse bool) commandFunc {
	return func(s *core.Store, r *message.Request) message.Response {
		key, err := r.GetArgumentBytes(0)
		if err != nil {
			return argErr()
		}
		firstArg, _ := r.GetArgumentString(1)
		secondArg, _ := r.GetArgumentString(2)
		startArg, endArg := firstArg, secondArg
		if reverse {
			// XREVRANGE's wire order is "end start": the high bound first.
			startArg, endArg = secondArg, firstArg
		}

		start, ok1 := parseRangeBound(startArg, 0)
		end, ok2 := parseRangeBound(endArg, 1<<63-1)
		if !ok1 || !ok2 {
			return responseError(core.ErrInvalidStreamID)
		}

		count := -1
		if r.ArgumentsLen() > 4 {
			opt, _ := r.GetArgumentString(3)
			if strings.EqualFold(opt, "COUNT") {
				n, _ := r.GetArgumentInt(4)
				count = n
			}
		}

		views, err := rangeViews(s, key, start, end, count, reverse)
		if err != nil {
			return responseError(err)
		}
		return streamEntriesReply(views)
	}
}

// rangeViews calls core.Store.XRange/XRevRange and converts the result
// into streamEntryView, element-wise (each entry's own method set
// already satisfies the interface).
func rangeViews(s *core.Store, key []byte, start, end core.StreamID, count int, reverse bool) ([]streamEntryView, error) {
	if reverse {
		entries, err := s.XRevRange(key, start, end, count)
		if err != nil {
			return nil, err
		}
		out := make([]streamEntryView, len(entries))
		for i, e := range entries {
			out[i] = e
		}
		return out, nil
	}
	entries, err := s.XRange(key, start, end, count)
	if err != nil {
		return nil, err
	}
	out := make([]streamEntryView, len(entries))
	for i, e := range entries {
		out[i] = e
	}
	return out, nil
}

func cmdXDel(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 2 {
		return argErr()
	}
	key, _ := r.GetArgumentBytes(0)
	idArgs, _ := r.GetArgumentVariadicString(1)
	ids := make([]core.StreamID, 0, len(idArgs))
	for _, a := range idArgs {
		id, ok := parseStreamIDArg(a, 0)
		if !ok {
			return responseError(core.ErrInvalidStreamID)
		}
		ids = append(ids, id)
	}
	n, err := s.XDel(key, ids)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

func cmdXTrim(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 3 {
		return argErr()
	}
	key, _ := r.GetArgumentBytes(0)
	strategy, _ := r.GetArgumentString(1)
	if !strings.EqualFold(strategy, "MAXLEN") {
		return responseInvalidArguments("syntax error")
	}
	countArg, _ := r.GetArgumentString(2)
	countArg = strings.TrimPrefix(countArg, "~")
	countArg = strings.TrimPrefix(countArg, "=")
	maxLen, ok := parseInt(countArg)
	if !ok {
		return responseInvalidArguments("value is not an integer or out of range")
	}
	n, err := s.XTrim(key, maxLen)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

func cmdXGroup(s *core.Store, r *message.Request) message.Response {
	sub, err := r.GetArgumentString(0)
	if err != nil {
		return argErr()
	}
	if !strings.EqualFold(sub, "CREATE") {
		return responseInvalidArguments("unsupported XGROUP subcommand")
	}
	key, _ := r.GetArgumentBytes(1)
	name, _ := r.GetArgumentString(2)
	idArg, _ := r.GetArgumentString(3)

	mkStream := false
	if r.ArgumentsLen() > 4 {
		opt, _ := r.GetArgumentString(4)
		mkStream = strings.EqualFold(opt, "MKSTREAM")
	}

	var start core.StreamID
	if idArg == "$" {
		if info, ierr := s.XInfoStream(key); ierr == nil {
			start = info.LastID
		}
	} else {
		start, _ = parseStreamIDArg(idArg, 0)
	}

	if err := s.XGroupCreate(key, name, start, mkStream); err != nil {
		return responseError(err)
	}
	return responseOk()
}

func cmdXReadGroup(s *core.Store, r *message.Request) message.Response {
	// XREADGROUP GROUP <group> <consumer> [COUNT n] STREAMS <key> <id>
	args, _ := r.GetArgumentVariadicString(0)
	if len(args) < 5 || !strings.EqualFold(args[0], "GROUP") {
		return responseInvalidArguments("syntax error")
	}
	group := args[1]
	consumer := args[2]

	count := -1
	i := 3
	if strings.EqualFold(args[i], "COUNT") {
		n, ok := parseInt(args[i+1])
		if !ok {
			return responseInvalidArguments("value is not an integer or out of range")
		}
		count = n
		i += 2
	}
	if !strings.EqualFold(args[i], "STREAMS") {
		return responseInvalidArguments("syntax error")
	}
	rest := args[i+1:]
	if len(rest) != 2 {
		return responseInvalidArguments("XREADGROUP with this implementation supports exactly one stream key")
	}
	key := []byte(rest[0])
	idArg := rest[1]
	replayOwn := idArg == "0" || idArg == "0-0"

	entries, err := s.XReadGroup(key, group, consumer, replayOwn, count)
	if err != nil {
		return responseError(err)
	}
	views := make([]streamEntryView, len(entries))
	for i, e := range entries {
		views[i] = e
	}
	return streamEntriesReply(views)
}

func cmdXAck(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 3 {
		return argErr()
	}
	key, _ := r.GetArgumentBytes(0)
	group, _ := r.GetArgumentString(1)
	idArgs, _ := r.GetArgumentVariadicString(2)
	ids := make([]core.StreamID, 0, len(idArgs))
	for _, a := range idArgs {
		id, ok := parseStreamIDArg(a, 0)
		if !ok {
			return responseError(core.ErrInvalidStreamID)
		}
		ids = append(ids, id)
	}
	n, err := s.XAck(key, group, ids)
	if err != nil {
		return responseError(err)
	}
	return responseInt(n)
}

func cmdXPending(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	group, _ := r.GetArgumentString(1)
	summaries, err := s.XPending(key, group)
	if err != nil {
		return responseError(err)
	}
	out := make([][]byte, 0, len(summaries)*4)
	for _, p := range summaries {
		out = append(out,
			[]byte(p.ID.String()),
			[]byte(p.Consumer),
			[]byte(itoa64(p.IdleMs)),
			[]byte(itoa64(p.DeliveryCount)),
		)
	}
	return responseStringSlice(out)
}

func cmdXInfo(s *core.Store, r *message.Request) message.Response {
	sub, err := r.GetArgumentString(0)
	if err != nil {
		return argErr()
	}
	if !strings.EqualFold(sub, "STREAM") {
		return responseInvalidArguments("unsupported XINFO subcommand")
	}
	key, err := r.GetArgumentBytes(1)
	if err != nil {
		return argErr()
	}
	info, err := s.XInfoStream(key)
	if err != nil {
		return responseError(err)
	}
	out := [][]byte{
		[]byte("length"), []byte(itoa64(int64(info.Length))),
		[]byte("last-generated-id"), []byte(info.LastID.String()),
		[]byte("groups"), []byte(itoa64(int64(info.Groups))),
	}
	return responseStringSlice(out)
}
