package test

import (
	"math/rand"
	"sync"
	"time"
)

const sessionAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomSessionID returns a well formed cart token within the provided bounds.
// When maxLen equals minLen the resulting token always has that exact length.
func RandomSessionID(minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	length := minLen
	if maxLen > minLen {
		length += RandomIntn(maxLen - minLen + 1)
	}
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = sessionAlphabet[RandomIntn(len(sessionAlphabet))]
	}
	return string(buf)
}

// RandomQuantity returns a quantity in [1, max].
func RandomQuantity(max int) int {
	if max < 1 {
		max = 1
	}
	return RandomIntn(max) + 1
}

// RandomIntn returns a pseudo-random number in [0, n).
func RandomIntn(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}
