package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are ULIDs: 48-bit millisecond timestamp followed by 80 random bits,
// Crockford base32 encoded to 26 characters. IDs generated within the same
// millisecond stay ordered through a sequence in the random part.

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

type ulidSource struct {
	mu   sync.Mutex
	now  func() time.Time
	last uint64
	seq  uint16
}

var jobIDs = &ulidSource{now: time.Now}

func generateULID() string {
	return jobIDs.next()
}

func (s *ulidSource) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := uint64(s.now().UnixMilli())
	if ts <= s.last {
		ts = s.last
		s.seq++
	} else {
		s.last = ts
		s.seq = 0
	}

	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], ts<<16)
	rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], s.seq)
	return encodeULID(b)
}

// encodeULID writes the 128 bits as 26 base32 digits, most significant
// first. The leading digit carries the top 3 bits.
func encodeULID(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[0:8])
	lo := binary.BigEndian.Uint64(b[8:16])

	var out [26]byte
	for i := 25; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
