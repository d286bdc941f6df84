// Package server implements the RESP2 front end: a redcon-based accept
// loop (server.go) and a command dispatcher (this file) translating
// wire-level requests into core.Store calls and their results back into
// message.Response values. Every concern here -- framing, command
// lookup, argument parsing -- is the "external collaborator" the engine
// itself stays ignorant of.
package server

import (
	"strconv"
	"strings"

	"github.com/nullcache/nullcache/core"
	"github.com/nullcache/nullcache/message"
)

// Dispatcher implements MessageHandler over a core.Store, translating
// each named command to the matching engine call.
type Dispatcher struct {
	store *core.Store
}

// NewDispatcher constructs a Dispatcher serving store.
func NewDispatcher(store *core.Store) *Dispatcher {
	return &Dispatcher{store: store}
}

// HandleMessage dispatches request to the handler for its command name,
// recovering programmer-logic assertion panics from the engine into an
// error status rather than crashing the connection.
func (d *Dispatcher) HandleMessage(request *message.Request) (response message.Response) {
	defer func() {
		if r := recover(); r != nil {
			response = responseRecovered(r)
		}
	}()

	handler, ok := commandTable[strings.ToUpper(request.Cmd)]
	if !ok {
		return responseInvalidCommand(request.Cmd)
	}
	return handler(d.store, request)
}

type commandFunc func(*core.Store, *message.Request) message.Response

var commandTable = map[string]commandFunc{
	"DEL":      cmdDel,
	"EXISTS":   cmdExists,
	"TYPE":     cmdType,
	"DBSIZE":   cmdDBSize,
	"FLUSHALL": cmdFlushAll,
	"KEYS":     cmdKeys,
	"EXPIRE":   cmdExpire,
	"PEXPIRE":  cmdPExpire,
	"PERSIST":  cmdPersist,
	"TTL":      cmdTTL,
	"PTTL":     cmdPTTL,
	"RENAME":   cmdRename,
	"RENAMENX": cmdRenameNX,
	"COPY":     cmdCopy,
	"TOUCH":    cmdTouch,

	"SET":        cmdSet,
	"GET":        cmdGet,
	"INCR":       cmdIncr,
	"DECR":       cmdDecr,
	"INCRBY":     cmdIncrBy,
	"DECRBY":     cmdDecrBy,
	"INCRBYFLOAT": cmdIncrByFloat,
	"APPEND":     cmdAppend,
	"GETDEL":     cmdGetDel,
	"GETEX":      cmdGetEx,
	"GETRANGE":   cmdGetRange,
	"SETRANGE":   cmdSetRange,
	"SETBIT":     cmdSetBit,
	"GETBIT":     cmdGetBit,
	"BITCOUNT":   cmdBitCount,
	"BITOP":      cmdBitOp,

	"LPUSH":  cmdPush(true, false),
	"RPUSH":  cmdPush(false, false),
	"LPUSHX": cmdPush(true, true),
	"RPUSHX": cmdPush(false, true),
	"LPOP":   cmdPop(true),
	"RPOP":   cmdPop(false),
	"LLEN":   cmdLLen,
	"LRANGE": cmdLRange,
	"LINDEX": cmdLIndex,
	"LSET":   cmdLSet,
	"LTRIM":  cmdLTrim,
	"LREM":   cmdLRem,
	"LPOS":     cmdLPos,
	"LINSERT":  cmdLInsert,
	"LMOVE":    cmdLMove,

	"SADD":        cmdSAdd,
	"SREM":        cmdSRem,
	"SISMEMBER":   cmdSIsMember,
	"SMISMEMBER":  cmdSMIsMember,
	"SMEMBERS":    cmdSMembers,
	"SCARD":       cmdSCard,
	"SPOP":        cmdSPop,
	"SRANDMEMBER": cmdSRandMember,
	"SMOVE":       cmdSMove,
	"SUNION":      cmdSCombine(core.SetUnion),
	"SINTER":      cmdSCombine(core.SetInter),
	"SDIFF":       cmdSCombine(core.SetDiff),
	"SUNIONSTORE": cmdSCombineStore(core.SetUnion),
	"SINTERSTORE": cmdSCombineStore(core.SetInter),
	"SDIFFSTORE":  cmdSCombineStore(core.SetDiff),
	"SINTERCARD":  cmdSInterCard,

	"HSET":         cmdHSet,
	"HGET":         cmdHGet,
	"HDEL":         cmdHDel,
	"HGETALL":      cmdHGetAll,
	"HKEYS":        cmdHKeys,
	"HVALS":        cmdHVals,
	"HEXISTS":      cmdHExists,
	"HLEN":         cmdHLen,
	"HINCRBY":      cmdHIncrBy,
	"HINCRBYFLOAT": cmdHIncrByFloat,
	"HSETNX":       cmdHSetNX,

	"ZADD":            cmdZAdd,
	"ZREM":            cmdZRem,
	"ZRANGE":          cmdZRange(false),
	"ZREVRANGE":       cmdZRange(true),
	"ZRANGEBYSCORE":   cmdZRangeByScore(false),
	"ZREVRANGEBYSCORE": cmdZRangeByScore(true),
	"ZSCORE":          cmdZScore,
	"ZMSCORE":         cmdZMScore,
	"ZCARD":           cmdZCard,
	"ZCOUNT":          cmdZCount,
	"ZRANK":           cmdZRank(false),
	"ZREVRANK":        cmdZRank(true),
	"ZINCRBY":         cmdZIncrBy,
	"ZPOPMIN":         cmdZPop(false),
	"ZPOPMAX":         cmdZPop(true),
	"ZRANDMEMBER":     cmdZRandMember,

	"PFADD":   cmdPFAdd,
	"PFCOUNT": cmdPFCount,
	"PFMERGE": cmdPFMerge,

	"DUMP":    cmdDump,
	"RESTORE": cmdRestore,

	"XADD":        cmdXAdd,
	"XLEN":        cmdXLen,
	"XRANGE":      cmdXRange(false),
	"XREVRANGE":   cmdXRange(true),
	"XDEL":        cmdXDel,
	"XTRIM":       cmdXTrim,
	"XGROUP":      cmdXGroup,
	"XREADGROUP":  cmdXReadGroup,
	"XACK":        cmdXAck,
	"XPENDING":    cmdXPending,
	"XINFO":       cmdXInfo,
}

func argErr() message.Response {
	return responseInvalidArguments("wrong number of arguments")
}

func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func parseInt64(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// --- keyspace ---

func cmdDel(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 1 {
		return argErr()
	}
	keys, _ := r.GetArgumentVariadicBytes(0)
	return responseInt(s.Del(keys))
}

func cmdExists(s *core.Store, r *message.Request) message.Response {
	if r.ArgumentsLen() < 1 {
		return argErr()
	}
	keys, _ := r.GetArgumentVariadicBytes(0)
	count := 0
	for _, k := range keys {
		if s.Exists(string(k)) {
			count++
		}
	}
	return responseInt(count)
}

func cmdType(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	kind, ok := s.GetType(string(key))
	if !ok {
		return responseBulk([]byte("none"))
	}
	return responseBulk([]byte(kind.String()))
}

func cmdDBSize(s *core.Store, r *message.Request) message.Response {
	return responseInt(s.DBSize())
}

func cmdFlushAll(s *core.Store, r *message.Request) message.Response {
	s.FlushAll()
	return responseOk()
}

func cmdKeys(s *core.Store, r *message.Request) message.Response {
	pattern, err := r.GetArgumentString(0)
	if err != nil {
		return argErr()
	}
	return responseStringSlice(s.Keys(pattern))
}

func cmdExpireGeneric(s *core.Store, r *message.Request, toMillis func(int64) int64) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	n, err := r.GetArgumentInt(1)
	if err != nil {
		return responseInvalidArguments("value is not an integer")
	}
	at := toMillis(int64(n))
	ok, err := s.SetExpiry(key, &at, 0)
	if err != nil {
		return responseError(err)
	}
	if !ok {
		return responseInt(0)
	}
	return responseInt(1)
}

func cmdExpire(s *core.Store, r *message.Request) message.Response {
	return cmdExpireGeneric(s, r, func(seconds int64) int64 { return nowMsForServer() + seconds*1000 })
}

func cmdPExpire(s *core.Store, r *message.Request) message.Response {
	return cmdExpireGeneric(s, r, func(ms int64) int64 { return nowMsForServer() + ms })
}

func cmdPersist(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	ok, err := s.SetExpiry(key, nil, 0)
	if err != nil {
		return responseError(err)
	}
	if !ok {
		return responseInt(0)
	}
	return responseInt(1)
}

func cmdTTL(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	ms := s.GetTtlMs(key)
	if ms < 0 {
		return responseInt64(ms)
	}
	return responseInt64((ms + 999) / 1000)
}

func cmdPTTL(s *core.Store, r *message.Request) message.Response {
	key, err := r.GetArgumentBytes(0)
	if err != nil {
		return argErr()
	}
	return responseInt64(s.GetTtlMs(key))
}

func cmdRename(s *core.Store, r *message.Request) message.Response {
	src, err1 := r.GetArgumentBytes(0)
	dst, err2 := r.GetArgumentBytes(1)
	if err1 != nil || err2 != nil {
		return argErr()
	}
	if err := s.Rename(src, dst); err != nil {
		return responseError(err)
	}
	return responseOk()
}

func cmdRenameNX(s *core.Store, r *message.Request) message.Response {
	src, err1 := r.GetArgumentBytes(0)
	dst, err2 := r.GetArgumentBytes(1)
	if err1 != nil || err2 != nil {
		return argErr()
	}
	ok, err := s.RenameNX(src, dst)
	if err != nil {
		return responseError(err)
	}
	return responseInt(boolToInt(ok))
}

func cmdCopy(s *core.Store, r *message.Request) message.Response {
	src, err1 := r.GetArgumentBytes(0)
	dst, err2 := r.GetArgumentBytes(1)
	if err1 != nil || err2 != nil {
		return argErr()
	}
	replace := false
	if r.ArgumentsLen() > 2 {
		opt, _ := r.GetArgumentString(2)
		replace = strings.EqualFold(opt, "REPLACE")
	}
	return responseInt(boolToInt(s.CopyKey(src, dst, replace)))
}

func cmdTouch(s *core.Store, r *message.Request) message.Response {
	keys, _ := r.GetArgumentVariadicBytes(0)
	return responseInt(s.Touch(keys))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nowMsForServer exists so expire commands can compute absolute deadlines
// without the dispatcher importing time directly into every handler.
func nowMsForServer() int64 {
	return wallClockMs()
}
