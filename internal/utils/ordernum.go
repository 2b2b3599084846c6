package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const orderNumberLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateOrderNumber returns a human-readable order code: two uppercase
// letters followed by three digits, e.g. "KD042". Uniqueness is enforced by
// the orders table; callers retry on collision.
func GenerateOrderNumber() string {
	letters := make([]byte, 2)
	for i := range letters {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(orderNumberLetters))))
		if err != nil {
			// fallback: time-based entropy
			n = big.NewInt(time.Now().UnixNano() % int64(len(orderNumberLetters)))
		}
		letters[i] = orderNumberLetters[n.Int64()]
	}

	num, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		num = big.NewInt(time.Now().UnixNano() % 1000)
	}

	return fmt.Sprintf("%s%03d", letters, num.Int64())
}
