package auth

import (
	"encoding/binary"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2beens/otpgate/pkg"
)

const (
	otpMin   = 100000
	otpRange = 900000
)

// Random supplies session ids and OTP codes.
type Random interface {
	SessionID() (string, error)
	OTP() (int, error)
}

var (
	_ Random = (*LegacyRandom)(nil)
	_ Random = (*SecureRandom)(nil)
)

// LegacyRandom reproduces the old low-entropy behaviour: a short base36 id
// cut from a pseudo random fraction and an OTP drawn with math/rand.
// Only meant for compatibility testing.
type LegacyRandom struct {
	mutex sync.Mutex
	rnd   *rand.Rand
}

func NewLegacyRandom(seed int64) *LegacyRandom {
	return &LegacyRandom{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

func NewLegacyRandomFromClock() *LegacyRandom {
	return NewLegacyRandom(time.Now().UnixNano())
}

func (r *LegacyRandom) SessionID() (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	// base36 digits of a random fraction, dropping the leading ones
	id := strconv.FormatUint(r.rnd.Uint64(), 36)
	if len(id) > 7 {
		id = id[5:]
	}
	return id, nil
}

func (r *LegacyRandom) OTP() (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return otpMin + r.rnd.Intn(otpRange), nil
}

// SecureRandom draws ids (uuid v4) and OTPs from crypto/rand.
type SecureRandom struct{}

func NewSecureRandom() *SecureRandom {
	return &SecureRandom{}
}

func (r *SecureRandom) SessionID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (r *SecureRandom) OTP() (int, error) {
	for {
		b, err := pkg.GenerateRandomBytes(4)
		if err != nil {
			return 0, err
		}
		n := binary.BigEndian.Uint32(b)
		// reject the tail so every code is equally likely
		if n >= (1<<32)/otpRange*otpRange {
			continue
		}
		return otpMin + int(n%otpRange), nil
	}
}
