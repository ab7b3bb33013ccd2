package helpers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const resetPurpose = "password_reset"

var ErrInvalidResetToken = errors.New("invalid reset token")

// ResetTokenManager signs password reset links.
type ResetTokenManager struct {
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

func NewResetTokenManager(secret string, ttl time.Duration) *ResetTokenManager {
	return &ResetTokenManager{Secret: []byte(secret), TTL: ttl, now: time.Now}
}

type ResetClaims struct {
	UserID      string `json:"uid"`
	Fingerprint string `json:"fp"`
	Purpose     string `json:"purpose"`
	jwt.RegisteredClaims
}

// PasswordFingerprint binds a reset token to the credential it was issued
// against; after any password change the token stops verifying.
func PasswordFingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}

func (m *ResetTokenManager) Generate(userID, passwordHash string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.TTL)
	claims := &ResetClaims{
		UserID:      userID,
		Fingerprint: PasswordFingerprint(passwordHash),
		Purpose:     resetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	return s, exp, err
}

// Parse validates signature, expiry and purpose. The fingerprint is checked
// by the caller against the stored hash.
func (m *ResetTokenManager) Parse(tokenStr string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidResetToken
	}
	if claims.Purpose != resetPurpose || claims.UserID == "" {
		return nil, ErrInvalidResetToken
	}
	return claims, nil
}
