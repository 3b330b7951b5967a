package wire

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// HeaderSize is the fixed prefix in front of every payload:
//
//	lastAccess(i64 le) | expires(i64 le) | sliding(i64 le) | payload(rest)
//
// All three fields are counted in 100ns ticks. Timestamps are measured from
// 0001-01-01T00:00:00Z, which is also the instant of Go's zero time.Time.
const HeaderSize = 8 + 8 + 8

const (
	ticksPerSecond = int64(time.Second / 100)
	// seconds between 0001-01-01 and 1970-01-01
	unixEpochSeconds = int64(62135596800)
	maxSlidingTicks  = int64(math.MaxInt64 / 100)
)

var ErrMalformed = errors.New("sessioncache: malformed record")

// Record is the decoded form of a stored session value.
type Record struct {
	LastAccess time.Time
	Expires    time.Time     // zero => no absolute expiration
	Sliding    time.Duration // 0 => no sliding expiration
	Payload    []byte
}

// Ticks converts t to 100ns ticks since 0001-01-01 UTC. The zero time maps to 0.
func Ticks(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return (t.Unix()+unixEpochSeconds)*ticksPerSecond + int64(t.Nanosecond()/100)
}

// FromTicks is the inverse of Ticks. The result is always in UTC.
func FromTicks(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	sec := n/ticksPerSecond - unixEpochSeconds
	nsec := (n % ticksPerSecond) * 100
	return time.Unix(sec, nsec).UTC()
}

func Encode(r Record) []byte {
	b := make([]byte, HeaderSize+len(r.Payload))
	binary.LittleEndian.PutUint64(b[0:8], uint64(Ticks(r.LastAccess)))
	binary.LittleEndian.PutUint64(b[8:16], uint64(Ticks(r.Expires)))
	binary.LittleEndian.PutUint64(b[16:24], uint64(int64(r.Sliding/100)))
	copy(b[HeaderSize:], r.Payload)
	return b
}

// Decode parses b. The returned payload does not alias b.
func Decode(b []byte) (Record, error) {
	if len(b) < HeaderSize {
		return Record{}, ErrMalformed
	}
	last := int64(binary.LittleEndian.Uint64(b[0:8]))
	exp := int64(binary.LittleEndian.Uint64(b[8:16]))
	sliding := int64(binary.LittleEndian.Uint64(b[16:24]))
	if last < 0 || exp < 0 || sliding < 0 || sliding > maxSlidingTicks {
		return Record{}, ErrMalformed
	}

	payload := make([]byte, len(b)-HeaderSize)
	copy(payload, b[HeaderSize:])

	return Record{
		LastAccess: FromTicks(last),
		Expires:    FromTicks(exp),
		Sliding:    time.Duration(sliding) * 100,
		Payload:    payload,
	}, nil
}
