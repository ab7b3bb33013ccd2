package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// ActivationTokens issues stateless account activation tokens.
//
// A token is "<unix seconds in base36>-<hex hmac>" where the HMAC covers the
// user id, the timestamp and the current activation flag. Flipping the flag
// invalidates every token issued before, so a token works once.
type ActivationTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewActivationTokens(secret string, ttl time.Duration) *ActivationTokens {
	return &ActivationTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source; tests use it to move past the window.
func (a *ActivationTokens) WithClock(now func() time.Time) *ActivationTokens {
	a.now = now
	return a
}

func (a *ActivationTokens) Issue(userID string, active bool) string {
	ts := a.now().Unix()
	return strconv.FormatInt(ts, 36) + "-" + a.digest(userID, ts, active)
}

func (a *ActivationTokens) Verify(userID string, active bool, token string) bool {
	tsPart, sig, ok := strings.Cut(token, "-")
	if !ok || tsPart == "" || sig == "" {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return false
	}
	if !hmac.Equal([]byte(sig), []byte(a.digest(userID, ts, active))) {
		return false
	}
	age := a.now().Sub(time.Unix(ts, 0))
	return age >= 0 && age <= a.ttl
}

func (a *ActivationTokens) digest(userID string, ts int64, active bool) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(userID + "|" + strconv.FormatInt(ts, 10) + "|" + strconv.FormatBool(active)))
	return hex.EncodeToString(mac.Sum(nil))
}
