package core

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"math"
)

// dumpTag maps a Kind to its DUMP blob type tag (0x00 string .. 0xFD hll).
func dumpTag(kind Kind) (byte, bool) {
	switch kind {
	case KindString:
		return 0x00, true
	case KindList:
		return 0x01, true
	case KindSet:
		return 0x02, true
	case KindZSet:
		return 0x03, true
	case KindHash:
		return 0x04, true
	case KindStream:
		return 0xFE, true
	case KindHLL:
		return 0xFD, true
	default:
		return 0, false
	}
}

func kindFromTag(tag byte) (Kind, bool) {
	switch tag {
	case 0x00:
		return KindString, true
	case 0x01:
		return KindList, true
	case 0x02:
		return KindSet, true
	case 0x03:
		return KindZSet, true
	case 0x04:
		return KindHash, true
	case 0xFE:
		return KindStream, true
	case 0xFD:
		return KindHLL, true
	default:
		return 0, false
	}
}

func putBlob(buf *bytes.Buffer, b []byte) {
	var lenBytes [4]byte
	binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(b)))
	buf.Write(lenBytes[:])
	buf.Write(b)
}

func putU32(buf *bytes.Buffer, n uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], n)
	buf.Write(b[:])
}

func putU64(buf *bytes.Buffer, n uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], n)
	buf.Write(b[:])
}

// blobReader walks a dump body, yielding ErrInvalidDumpPayload on any
// short read -- every variant's body is parsed through this rather than
// raw slicing, so truncated/corrupt blobs fail uniformly.
type blobReader struct {
	data []byte
	pos  int
}

func (r *blobReader) u32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, ErrInvalidDumpPayload
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *blobReader) u64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, ErrInvalidDumpPayload
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}

func (r *blobReader) blob() ([]byte, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if r.pos+int(n) > len(r.data) {
		return nil, ErrInvalidDumpPayload
	}
	b := append([]byte(nil), r.data[r.pos:r.pos+int(n)]...)
	r.pos += int(n)
	return b, nil
}

func (r *blobReader) fixed(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, ErrInvalidDumpPayload
	}
	b := append([]byte(nil), r.data[r.pos:r.pos+n]...)
	r.pos += n
	return b, nil
}

func (r *blobReader) done() bool {
	return r.pos == len(r.data)
}

// encodeBody serializes v's payload (not the type/expiry header) per the
// variant-specific layout in the DUMP blob format.
func encodeBody(v *value) []byte {
	var buf bytes.Buffer

	switch v.kind {
	case KindString:
		putBlob(&buf, v.str)
	case KindList:
		putU32(&buf, uint32(len(v.list)))
		for _, e := range v.list {
			putBlob(&buf, e)
		}
	case KindSet:
		putU32(&buf, uint32(len(v.set)))
		for m := range v.set {
			putBlob(&buf, []byte(m))
		}
	case KindHash:
		putU32(&buf, uint32(len(v.hash)))
		for f, val := range v.hash {
			putBlob(&buf, []byte(f))
			putBlob(&buf, val)
		}
	case KindZSet:
		putU32(&buf, uint32(v.zset.Len()))
		for _, e := range v.zset.seq {
			putU64(&buf, math.Float64bits(e.score))
			putBlob(&buf, []byte(e.member))
		}
	case KindHLL:
		putU32(&buf, hllRegisterCount)
		buf.Write(v.hll.regs[:])
	case KindStream:
		encodeStreamBody(&buf, v.stream)
	}

	return buf.Bytes()
}

// encodeStreamBody follows the same length-prefixed-blob conventions as
// every other variant so DUMP/RESTORE round-trips streams too.
func encodeStreamBody(buf *bytes.Buffer, sl *streamLog) {
	putU64(buf, uint64(sl.lastID.Ms))
	putU64(buf, uint64(sl.lastID.Seq))
	putU32(buf, uint32(len(sl.entries)))
	for _, e := range sl.entries {
		putU64(buf, uint64(e.id.Ms))
		putU64(buf, uint64(e.id.Seq))
		putU32(buf, uint32(len(e.fields)))
		for i, f := range e.fields {
			putBlob(buf, []byte(f))
			putBlob(buf, e.values[i])
		}
	}
	putU32(buf, uint32(len(sl.groups)))
	for name, g := range sl.groups {
		putBlob(buf, []byte(name))
		putU64(buf, uint64(g.lastDelivered.Ms))
		putU64(buf, uint64(g.lastDelivered.Seq))
		putU32(buf, uint32(len(g.pending)))
		for id, p := range g.pending {
			putU64(buf, uint64(id.Ms))
			putU64(buf, uint64(id.Seq))
			putBlob(buf, []byte(p.consumer))
			putU64(buf, uint64(p.deliveryCount))
			putU64(buf, uint64(p.deliveredAtMs))
		}
	}
}

func decodeStreamBody(r *blobReader) (*streamLog, error) {
	sl := newStreamLog()

	ms, err := r.u64()
	if err != nil {
		return nil, err
	}
	seq, err := r.u64()
	if err != nil {
		return nil, err
	}
	sl.lastID = StreamID{Ms: int64(ms), Seq: int64(seq)}

	entryCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < entryCount; i++ {
		entMs, err := r.u64()
		if err != nil {
			return nil, err
		}
		entSeq, err := r.u64()
		if err != nil {
			return nil, err
		}
		fieldCount, err := r.u32()
		if err != nil {
			return nil, err
		}
		entry := streamEntry{id: StreamID{Ms: int64(entMs), Seq: int64(entSeq)}}
		for j := uint32(0); j < fieldCount; j++ {
			f, err := r.blob()
			if err != nil {
				return nil, err
			}
			val, err := r.blob()
			if err != nil {
				return nil, err
			}
			entry.fields = append(entry.fields, string(f))
			entry.values = append(entry.values, val)
		}
		sl.entries = append(sl.entries, entry)
	}

	groupCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < groupCount; i++ {
		name, err := r.blob()
		if err != nil {
			return nil, err
		}
		gMs, err := r.u64()
		if err != nil {
			return nil, err
		}
		gSeq, err := r.u64()
		if err != nil {
			return nil, err
		}
		g := newConsumerGroup(StreamID{Ms: int64(gMs), Seq: int64(gSeq)})

		pendingCount, err := r.u32()
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < pendingCount; j++ {
			idMs, err := r.u64()
			if err != nil {
				return nil, err
			}
			idSeq, err := r.u64()
			if err != nil {
				return nil, err
			}
			consumer, err := r.blob()
			if err != nil {
				return nil, err
			}
			deliveryCount, err := r.u64()
			if err != nil {
				return nil, err
			}
			deliveredAt, err := r.u64()
			if err != nil {
				return nil, err
			}
			id := StreamID{Ms: int64(idMs), Seq: int64(idSeq)}
			g.pending[id] = &pendingEntry{
				id:            id,
				consumer:      string(consumer),
				deliveryCount: int64(deliveryCount),
				deliveredAtMs: int64(deliveredAt),
			}
		}
		sl.groups[string(name)] = g
	}

	return sl, nil
}

// decodeBody parses a variant-specific body into a fresh value of kind.
func decodeBody(kind Kind, body []byte) (*value, error) {
	r := &blobReader{data: body}

	switch kind {
	case KindString:
		b, err := r.blob()
		if err != nil {
			return nil, err
		}
		if !r.done() {
			return nil, ErrInvalidDumpPayload
		}
		return newStringValue(b), nil

	case KindList:
		count, err := r.u32()
		if err != nil {
			return nil, err
		}
		elems := make([][]byte, 0, count)
		for i := uint32(0); i < count; i++ {
			e, err := r.blob()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		if !r.done() {
			return nil, ErrInvalidDumpPayload
		}
		return newListValue(elems), nil

	case KindSet:
		count, err := r.u32()
		if err != nil {
			return nil, err
		}
		set := make(map[string]struct{}, count)
		for i := uint32(0); i < count; i++ {
			m, err := r.blob()
			if err != nil {
				return nil, err
			}
			set[string(m)] = struct{}{}
		}
		if !r.done() {
			return nil, ErrInvalidDumpPayload
		}
		return newSetValue(set), nil

	case KindHash:
		count, err := r.u32()
		if err != nil {
			return nil, err
		}
		hash := make(map[string][]byte, count)
		for i := uint32(0); i < count; i++ {
			f, err := r.blob()
			if err != nil {
				return nil, err
			}
			val, err := r.blob()
			if err != nil {
				return nil, err
			}
			hash[string(f)] = val
		}
		if !r.done() {
			return nil, ErrInvalidDumpPayload
		}
		return newHashValue(hash), nil

	case KindZSet:
		count, err := r.u32()
		if err != nil {
			return nil, err
		}
		z := newSortedSet()
		for i := uint32(0); i < count; i++ {
			bits, err := r.u64()
			if err != nil {
				return nil, err
			}
			m, err := r.blob()
			if err != nil {
				return nil, err
			}
			z.setScore(string(m), math.Float64frombits(bits))
		}
		if !r.done() {
			return nil, ErrInvalidDumpPayload
		}
		return newZSetValue(z), nil

	case KindHLL:
		n, err := r.u32()
		if err != nil || n != hllRegisterCount {
			return nil, ErrInvalidDumpPayload
		}
		regs, err := r.fixed(hllRegisterCount)
		if err != nil {
			return nil, err
		}
		if !r.done() {
			return nil, ErrInvalidDumpPayload
		}
		h := newHLLRegisters()
		copy(h.regs[:], regs)
		return newHLLValue(h), nil

	case KindStream:
		sl, err := decodeStreamBody(r)
		if err != nil {
			return nil, err
		}
		if !r.done() {
			return nil, ErrInvalidDumpPayload
		}
		return newStreamValue(sl), nil

	default:
		return nil, ErrUnknownDumpType
	}
}

// Dump serializes key's value into the bit-exact blob layout: type tag,
// expiration flag(+value), variant body, trailing CRC32. Returns
// ok=false if key is absent/expired.
func (s *Store) Dump(key []byte) (blob []byte, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, found := s.getLive(string(key))
	if !found {
		return nil, false, nil
	}

	tag, known := dumpTag(v.kind)
	if !known {
		return nil, false, ErrUnknownDumpType
	}

	var buf bytes.Buffer
	buf.WriteByte(tag)
	if v.expireAt != 0 {
		buf.WriteByte(1)
		putU64(&buf, uint64(v.expireAt))
	} else {
		buf.WriteByte(0)
	}
	buf.Write(encodeBody(v))

	crc := crc32.ChecksumIEEE(buf.Bytes())
	putU32(&buf, crc)

	return buf.Bytes(), true, nil
}

// Restore decodes blob and installs it at key. ttlMs > 0 overrides the
// expiration to now+ttlMs; ttlMs == 0 carries over whatever expiration
// (possibly none) was embedded in the blob; a negative ttlMs is invalid.
// Fails with ErrKeyAlreadyExists if key is live and replace is false.
func (s *Store) Restore(key []byte, blob []byte, ttlMs int64, replace bool) error {
	if ttlMs < 0 {
		return ErrInvalidValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !replace {
		if _, live := s.getLive(string(key)); live {
			return ErrKeyAlreadyExists
		}
	}

	if len(blob) < 6 {
		return ErrInvalidDumpPayload
	}

	payload, trailer := blob[:len(blob)-4], blob[len(blob)-4:]
	wantCRC := binary.LittleEndian.Uint32(trailer)
	if crc32.ChecksumIEEE(payload) != wantCRC {
		return ErrDumpChecksumMismatch
	}

	kind, known := kindFromTag(payload[0])
	if !known {
		return ErrUnknownDumpType
	}

	r := &blobReader{data: payload, pos: 1}
	hasExpiry, err := r.fixed(1)
	if err != nil {
		return err
	}

	var expireAt int64
	if hasExpiry[0] == 1 {
		ts, err := r.u64()
		if err != nil {
			return err
		}
		expireAt = int64(ts)
	} else if hasExpiry[0] != 0 {
		return ErrInvalidDumpPayload
	}

	v, err := decodeBody(kind, payload[r.pos:])
	if err != nil {
		return err
	}

	if ttlMs > 0 {
		v.expireAt = s.now() + ttlMs
	} else {
		// ttlMs == 0: no override requested, carry over the expiration
		// embedded in the blob itself (possibly none) -- this is what makes
		// the restoreValue(dumpValue(k), 0, ...) round-trip preserve TTL.
		v.expireAt = expireAt
	}

	s.data[string(key)] = v
	return nil
}
