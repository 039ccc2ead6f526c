package usecase

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet omits 0/O/1/I/L so staff can read codes back over a counter.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const codeLength = 8

// generateVoucherCode returns a human-typable random code. Collisions are
// checked by the caller against other pending vouchers of the same business.
func generateVoucherCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate voucher code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
