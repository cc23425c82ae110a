package store

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const nonceAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
const nonceLen = 9

// NewID generates a record id of the form mem_{decimalMillis}_{9-char
// base36 nonce}. Collisions across two ids generated within the same
// millisecond are improbable but not impossible; callers that hit an
// IntegrityViolation on insert should call NewID again and retry, per
// the id-collision design note.
func NewID() (string, error) {
	nonce, err := randomNonce()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("mem_%d_%s", nowMillis(), nonce), nil
}

func randomNonce() (string, error) {
	buf := make([]byte, nonceLen)
	base := big.NewInt(int64(len(nonceAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", fmt.Errorf("generate nonce: %w", err)
		}
		buf[i] = nonceAlphabet[n.Int64()]
	}
	return string(buf), nil
}
