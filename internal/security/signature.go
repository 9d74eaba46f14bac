package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"smsbridge/internal/constants"

	"golang.org/x/crypto/pbkdf2"
)

const signaturePrefix = "sha256="

// DeriveSigningKey stretches the shared channel secret into the HMAC key.
func DeriveSigningKey(secret string) []byte {
	return pbkdf2.Key([]byte(secret), []byte(constants.SigningKeySalt), constants.SigningKeyIterations, constants.SigningKeySize, sha256.New)
}

// Sign returns the signature header value for body sent at timestamp.
func Sign(key []byte, timestamp string, body []byte) string {
	return signaturePrefix + hex.EncodeToString(mac(key, timestamp, body))
}

func mac(key []byte, timestamp string, body []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(timestamp))
	h.Write([]byte("."))
	h.Write(body)
	return h.Sum(nil)
}

// VerifySignature checks a "sha256=<hex>" signature over timestamp and body
// and rejects timestamps further than maxSkew from now.
func VerifySignature(key []byte, timestamp, signature string, body []byte, now time.Time, maxSkew time.Duration) error {
	if timestamp == "" {
		return fmt.Errorf("missing %s header", constants.TimestampHeader)
	}
	if signature == "" {
		return fmt.Errorf("missing %s header", constants.SignatureHeader)
	}

	seconds, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q", timestamp)
	}
	skew := now.Sub(time.Unix(seconds, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > maxSkew {
		return fmt.Errorf("timestamp outside allowed skew of %s", maxSkew)
	}

	scheme, hexSig, ok := strings.Cut(signature, "=")
	if !ok || !strings.EqualFold(scheme, "sha256") {
		return fmt.Errorf("invalid signature format")
	}
	provided, err := hex.DecodeString(hexSig)
	if err != nil {
		return fmt.Errorf("invalid signature encoding")
	}

	if !hmac.Equal(provided, mac(key, timestamp, body)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

// KeyCache remembers the key derived for the most recent secret so rotation
// costs one derivation instead of one per request.
type KeyCache struct {
	mu     sync.Mutex
	secret string
	key    []byte
}

// Key returns the signing key for secret, deriving it on first use.
func (c *KeyCache) Key(secret string) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.key == nil || c.secret != secret {
		c.secret = secret
		c.key = DeriveSigningKey(secret)
	}
	return c.key
}
