package core

import "github.com/mshaverdo/assert"

//go:generate stringer -type=Kind
type Kind int

const (
	KindString Kind = iota
	KindList
	KindSet
	KindHash
	KindZSet
	KindStream
	KindHLL
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindHash:
		return "hash"
	case KindZSet:
		return "zset"
	case KindStream:
		return "stream"
	case KindHLL:
		return "hll"
	default:
		return "unknown"
	}
}

// value is the tagged variant stored under every key in the keyspace.
// expireAt is a Unix millisecond timestamp; zero means "no expiration".
// Only the field matching kind is meaningful; accessors on the wrong kind
// are a program logic error and panic.
type value struct {
	kind     Kind
	expireAt int64

	str    []byte
	list   [][]byte
	set    map[string]struct{}
	hash   map[string][]byte
	zset   *sortedSet
	stream *streamLog
	hll    *hllRegisters
}

func newStringValue(b []byte) *value {
	return &value{kind: KindString, str: b}
}

func newListValue(elems [][]byte) *value {
	return &value{kind: KindList, list: elems}
}

func newSetValue(members map[string]struct{}) *value {
	return &value{kind: KindSet, set: members}
}

func newHashValue(fields map[string][]byte) *value {
	return &value{kind: KindHash, hash: fields}
}

func newZSetValue(z *sortedSet) *value {
	return &value{kind: KindZSet, zset: z}
}

func newStreamValue(s *streamLog) *value {
	return &value{kind: KindStream, stream: s}
}

func newHLLValue(h *hllRegisters) *value {
	return &value{kind: KindHLL, hll: h}
}

func (v *value) isExpired(nowMs int64) bool {
	return v.expireAt != 0 && nowMs >= v.expireAt
}

func (v *value) Str() []byte {
	assert.True(v.kind == KindString, "trying to get Str value on "+v.kind.String())
	return v.str
}

func (v *value) List() [][]byte {
	assert.True(v.kind == KindList, "trying to get List value on "+v.kind.String())
	return v.list
}

func (v *value) Set() map[string]struct{} {
	assert.True(v.kind == KindSet, "trying to get Set value on "+v.kind.String())
	return v.set
}

func (v *value) Hash() map[string][]byte {
	assert.True(v.kind == KindHash, "trying to get Hash value on "+v.kind.String())
	return v.hash
}

func (v *value) ZSet() *sortedSet {
	assert.True(v.kind == KindZSet, "trying to get ZSet value on "+v.kind.String())
	return v.zset
}

func (v *value) Stream() *streamLog {
	assert.True(v.kind == KindStream, "trying to get Stream value on "+v.kind.String())
	return v.stream
}

func (v *value) HLL() *hllRegisters {
	assert.True(v.kind == KindHLL, "trying to get HLL value on "+v.kind.String())
	return v.hll
}

// clone deep-copies a value, used by COPY.
func (v *value) clone() *value {
	out := &value{kind: v.kind, expireAt: v.expireAt}

	switch v.kind {
	case KindString:
		out.str = append([]byte(nil), v.str...)
	case KindList:
		out.list = make([][]byte, len(v.list))
		for i, e := range v.list {
			out.list[i] = append([]byte(nil), e...)
		}
	case KindSet:
		out.set = make(map[string]struct{}, len(v.set))
		for m := range v.set {
			out.set[m] = struct{}{}
		}
	case KindHash:
		out.hash = make(map[string][]byte, len(v.hash))
		for f, val := range v.hash {
			out.hash[f] = append([]byte(nil), val...)
		}
	case KindZSet:
		out.zset = v.zset.clone()
	case KindStream:
		out.stream = v.stream.clone()
	case KindHLL:
		out.hll = v.hll.clone()
	default:
		assert.True(false, "clone of unknown kind "+v.kind.String())
	}

	return out
}
