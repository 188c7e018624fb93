package generator

import (
	"crypto/rand"
	"math/big"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// IDLength is the length of every entity id issued by NewID.
	IDLength = 24
)

// IDFunc issues a fresh identifier. Services take one so tests can pin ids.
type IDFunc func() (string, error)

func NewID() (string, error) {
	return GenerateRandomID(IDLength)
}

func GenerateRandomID(length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	result := make([]byte, length)
	for i := range result {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		result[i] = alphabet[idx.Int64()]
	}
	return string(result), nil
}

// Sequence returns an IDFunc that hands out the given ids in order and
// then falls back to NewID.
func Sequence(ids ...string) IDFunc {
	next := 0
	return func() (string, error) {
		if next < len(ids) {
			id := ids[next]
			next++
			return id, nil
		}
		return NewID()
	}
}
