package security

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveSigningKey(t *testing.T) {
	key := DeriveSigningKey("shared-secret")

	assert.Len(t, key, 32)
	assert.Equal(t, key, DeriveSigningKey("shared-secret"))
	assert.NotEqual(t, key, DeriveSigningKey("other-secret"))
}

func TestSignAndVerify(t *testing.T) {
	key := DeriveSigningKey("shared-secret")
	now := time.Unix(1700000000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	body := []byte(`{"method":"getSmsMessages"}`)

	sig := Sign(key, ts, body)
	require.True(t, strings.HasPrefix(sig, "sha256="))
	assert.Len(t, sig, len("sha256=")+64)

	assert.NoError(t, VerifySignature(key, ts, sig, body, now, 5*time.Minute))
	assert.NoError(t, VerifySignature(key, ts, "SHA256="+strings.TrimPrefix(sig, "sha256="), body, now, 5*time.Minute))
}

func TestVerifySignature_Rejections(t *testing.T) {
	key := DeriveSigningKey("shared-secret")
	now := time.Unix(1700000000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	body := []byte(`{"method":"getSmsMessages"}`)
	valid := Sign(key, ts, body)

	tests := []struct {
		name      string
		timestamp string
		signature string
		body      []byte
		wantErr   string
	}{
		{"missing timestamp", "", valid, body, "missing X-Channel-Timestamp"},
		{"missing signature", ts, "", body, "missing X-Channel-Signature"},
		{"non numeric timestamp", "soon", valid, body, "invalid timestamp"},
		{"stale timestamp", strconv.FormatInt(now.Unix()-301, 10), valid, body, "skew"},
		{"future timestamp", strconv.FormatInt(now.Unix()+301, 10), valid, body, "skew"},
		{"wrong scheme", ts, "md5=abcd", body, "invalid signature format"},
		{"no scheme", ts, "abcd", body, "invalid signature format"},
		{"bad hex", ts, "sha256=zz", body, "invalid signature encoding"},
		{"tampered body", ts, valid, []byte(`{"method":"other"}`), "signature mismatch"},
		{"wrong key", ts, Sign(DeriveSigningKey("nope"), ts, body), body, "signature mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySignature(key, tt.timestamp, tt.signature, tt.body, now, 5*time.Minute)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVerifySignature_TimestampIsSigned(t *testing.T) {
	key := DeriveSigningKey("shared-secret")
	now := time.Unix(1700000000, 0)
	body := []byte("{}")

	sig := Sign(key, "1700000000", body)
	err := VerifySignature(key, "1700000001", sig, body, now, time.Minute)
	assert.EqualError(t, err, "signature mismatch")
}

func TestKeyCache(t *testing.T) {
	var cache KeyCache

	first := cache.Key("a")
	assert.Equal(t, DeriveSigningKey("a"), first)
	assert.Equal(t, first, cache.Key("a"))
	assert.Equal(t, DeriveSigningKey("b"), cache.Key("b"))
}
