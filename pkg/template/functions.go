package template

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// intN returns a random int in [0, n) from the engine source.
func (e *Engine) intN(n int) int {
	if n <= 0 {
		return 0
	}
	if e.rng == nil {
		return globalIntN(n)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.IntN(n)
}

// float64 returns a random float in [0, 1) from the engine source.
func (e *Engine) float64() float64 {
	if e.rng == nil {
		return globalFloat64()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64()
}

// uuid returns a v4 UUID. Seeded engines derive it from their source so
// output stays reproducible.
func (e *Engine) uuid() string {
	if e.rng == nil {
		return uuid.New().String()
	}
	var b [16]byte
	for i := range b {
		b[i] = byte(e.intN(256))
	}
	b[6] = (b[6] & 0x0f) | 0x40 // version 4
	b[8] = (b[8] & 0x3f) | 0x80 // variant
	u, err := uuid.FromBytes(b[:])
	if err != nil {
		return ""
	}
	return u.String()
}

// randomInt returns a random integer between lo and hi inclusive.
func (e *Engine) randomInt(lo, hi int) string {
	if lo > hi {
		return ""
	}
	return strconv.Itoa(lo + e.intN(hi-lo+1))
}

// randomFloat returns a random float in [lo, hi) with two decimals when a
// range is given.
func (e *Engine) randomFloat(lo, hi float64) string {
	if lo > hi {
		lo, hi = hi, lo
	}
	f := lo + e.float64()*(hi-lo)
	if lo == 0 && hi == 1 {
		return fmt.Sprintf("%f", f)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func (e *Engine) randomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphanumeric[e.intN(len(alphanumeric))]
	}
	return string(b)
}

func (e *Engine) pick(values []string) string {
	return values[e.intN(len(values))]
}
