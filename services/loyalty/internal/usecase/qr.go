package usecase

import (
	"errors"
	"strings"
	"time"

	"pointstack/services/loyalty/internal/entity"

	"github.com/golang-jwt/jwt/v5"
)

// qrClaims is the payload embedded in a voucher QR code: the voucher id plus
// the standard exp claim mirroring the voucher's ExpiresAt.
type qrClaims struct {
	VoucherID string `json:"voucher_id"`
	jwt.RegisteredClaims
}

// QRSigner mints and verifies the short-lived signed tokens rendered as
// voucher QR codes. Rendering itself is out of scope; the ledger only owns
// the payload.
type QRSigner struct {
	secret []byte
}

func NewQRSigner(secret string) *QRSigner {
	return &QRSigner{secret: []byte(secret)}
}

func (s *QRSigner) Sign(voucherID string, expiresAt time.Time) (string, error) {
	claims := qrClaims{
		VoucherID: voucherID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature and returns the voucher id. An expired token
// with a valid signature still resolves to its voucher id so the caller can
// flip the voucher to expired and report ErrVoucherExpired instead of a
// generic signature failure.
func (s *QRSigner) Verify(payload string) (string, error) {
	token, err := jwt.ParseWithClaims(payload, &qrClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, entity.ErrInvalidQRSignature
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && token != nil {
			if claims, ok := token.Claims.(*qrClaims); ok && claims.VoucherID != "" {
				return claims.VoucherID, nil
			}
		}
		return "", entity.ErrInvalidQRSignature
	}

	claims, ok := token.Claims.(*qrClaims)
	if !ok || claims.VoucherID == "" {
		return "", entity.ErrInvalidQRSignature
	}
	return claims.VoucherID, nil
}

// looksLikeQRPayload distinguishes a signed token from a human-typed code.
func looksLikeQRPayload(input string) bool {
	return strings.Count(input, ".") == 2
}
