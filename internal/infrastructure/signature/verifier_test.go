package signature

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testSecret = "test-webhook-secret"

var fixedNow = time.Unix(1_700_000_000, 0)

func newTestVerifier() *Verifier {
	return NewVerifier(zap.NewNop(), []string{"X-Webhook-Secret"}, 0, WithClock(func() time.Time { return fixedNow }))
}

func signedHeader(key []byte, id string, ts time.Time, body []byte) http.Header {
	stamp := strconv.FormatInt(ts.Unix(), 10)
	sig := base64.StdEncoding.EncodeToString(Sign(key, id, stamp, body))
	h := http.Header{}
	h.Set("webhook-id", id)
	h.Set("webhook-timestamp", stamp)
	h.Set("webhook-signature", "v1,"+sig)
	return h
}

func TestVerify_TimestampedScheme(t *testing.T) {
	v := newTestVerifier()
	body := []byte(`{"type":"payment.succeeded"}`)

	t.Run("valid signature", func(t *testing.T) {
		h := signedHeader([]byte(testSecret), "msg_1", fixedNow, body)
		assert.NoError(t, v.Verify(body, h, testSecret))
	})

	t.Run("tampered body", func(t *testing.T) {
		h := signedHeader([]byte(testSecret), "msg_1", fixedNow, body)
		assert.ErrorIs(t, v.Verify([]byte(`{"type":"payment.failed"}`), h, testSecret), ErrSignatureMismatch)
	})

	t.Run("wrong secret", func(t *testing.T) {
		h := signedHeader([]byte("other"), "msg_1", fixedNow, body)
		assert.ErrorIs(t, v.Verify(body, h, testSecret), ErrSignatureMismatch)
	})

	t.Run("multiple candidates", func(t *testing.T) {
		h := signedHeader([]byte(testSecret), "msg_1", fixedNow, body)
		h.Set("webhook-signature", "v1,bm90LWl0 v2,ignored "+h.Get("webhook-signature"))
		assert.NoError(t, v.Verify(body, h, testSecret))
	})

	t.Run("stale timestamp", func(t *testing.T) {
		h := signedHeader([]byte(testSecret), "msg_1", fixedNow.Add(-6*time.Minute), body)
		assert.ErrorIs(t, v.Verify(body, h, testSecret), ErrTimestampOutOfTolerance)
	})

	t.Run("future timestamp", func(t *testing.T) {
		h := signedHeader([]byte(testSecret), "msg_1", fixedNow.Add(6*time.Minute), body)
		assert.ErrorIs(t, v.Verify(body, h, testSecret), ErrTimestampOutOfTolerance)
	})

	t.Run("within tolerance", func(t *testing.T) {
		h := signedHeader([]byte(testSecret), "msg_1", fixedNow.Add(-4*time.Minute), body)
		assert.NoError(t, v.Verify(body, h, testSecret))
	})

	t.Run("invalid timestamp", func(t *testing.T) {
		h := signedHeader([]byte(testSecret), "msg_1", fixedNow, body)
		h.Set("webhook-timestamp", "yesterday")
		assert.ErrorIs(t, v.Verify(body, h, testSecret), ErrInvalidTimestamp)
	})

	t.Run("missing id", func(t *testing.T) {
		h := signedHeader([]byte(testSecret), "msg_1", fixedNow, body)
		h.Del("webhook-id")
		assert.ErrorIs(t, v.Verify(body, h, testSecret), ErrMissingSignature)
	})

	t.Run("svix header names", func(t *testing.T) {
		src := signedHeader([]byte(testSecret), "msg_2", fixedNow, body)
		h := http.Header{}
		h.Set("svix-id", src.Get("webhook-id"))
		h.Set("svix-timestamp", src.Get("webhook-timestamp"))
		h.Set("svix-signature", src.Get("webhook-signature"))
		assert.NoError(t, v.Verify(body, h, testSecret))
		assert.Equal(t, "msg_2", MessageID(h))
	})
}

func TestVerify_PrefixedSecret(t *testing.T) {
	v := newTestVerifier()
	body := []byte(`{}`)
	key := []byte("raw-key-bytes")
	secret := "whsec_" + base64.StdEncoding.EncodeToString(key)

	h := signedHeader(key, "msg_3", fixedNow, body)
	assert.NoError(t, v.Verify(body, h, secret))
}

func TestVerify_SharedSecretHeader(t *testing.T) {
	v := newTestVerifier()
	body := []byte(`{}`)

	h := http.Header{}
	h.Set("X-Webhook-Secret", testSecret)
	assert.NoError(t, v.Verify(body, h, testSecret))

	h.Set("X-Webhook-Secret", "guess")
	assert.ErrorIs(t, v.Verify(body, h, testSecret), ErrSignatureMismatch)
}

func TestVerify_NoCredentials(t *testing.T) {
	v := newTestVerifier()
	assert.ErrorIs(t, v.Verify([]byte(`{}`), http.Header{}, testSecret), ErrMissingSignature)
}

func TestVerify_NoSecretConfigured(t *testing.T) {
	v := newTestVerifier()
	assert.NoError(t, v.Verify([]byte(`{}`), http.Header{}, ""))
}
