// Package signature authenticates inbound webhook deliveries.
//
// Two schemes are accepted. The timestamped scheme follows Standard Webhooks:
// an id, a Unix timestamp and one or more "v1,<base64 HMAC-SHA256>"
// candidates over "{id}.{timestamp}.{body}". The legacy scheme carries the
// shared secret itself in a header.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTolerance bounds how far a signed timestamp may drift from now.
	DefaultTolerance = 5 * time.Minute

	secretPrefix    = "whsec_"
	signatureScheme = "v1"
)

var (
	ErrMissingSignature        = errors.New("webhook signature headers are missing")
	ErrInvalidTimestamp        = errors.New("webhook timestamp is not a unix timestamp")
	ErrTimestampOutOfTolerance = errors.New("webhook timestamp is outside the tolerance window")
	ErrSignatureMismatch       = errors.New("webhook signature does not match")
)

// header triplets in lookup order; the svix names are the same scheme
var (
	idHeaders        = []string{"webhook-id", "svix-id"}
	timestampHeaders = []string{"webhook-timestamp", "svix-timestamp"}
	signatureHeaders = []string{"webhook-signature", "svix-signature"}
)

type Verifier struct {
	secretHeaders []string
	tolerance     time.Duration
	now           func() time.Time
	logger        *zap.Logger
}

type Option func(*Verifier)

// WithClock overrides the clock used for the timestamp window.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		v.now = now
	}
}

// NewVerifier creates a verifier. secretHeaders names the headers that may
// carry a plain shared secret; a zero tolerance means DefaultTolerance.
func NewVerifier(logger *zap.Logger, secretHeaders []string, tolerance time.Duration, opts ...Option) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	v := &Verifier{
		secretHeaders: secretHeaders,
		tolerance:     tolerance,
		now:           time.Now,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify authenticates body against whichever scheme the headers present.
// With an empty secret every request is accepted and a warning is logged so
// that a fresh install can receive its first deliveries.
func (v *Verifier) Verify(body []byte, header http.Header, secret string) error {
	if secret == "" {
		v.logger.Warn("Webhook secret is not configured, accepting unverified request",
			zap.String("message_id", MessageID(header)))
		return nil
	}

	if sig := firstHeader(header, signatureHeaders); sig != "" {
		return v.verifyTimestamped(body, header, sig, secret)
	}

	for _, name := range v.secretHeaders {
		if presented := header.Get(name); presented != "" {
			if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
				return ErrSignatureMismatch
			}
			return nil
		}
	}

	return ErrMissingSignature
}

func (v *Verifier) verifyTimestamped(body []byte, header http.Header, sigHeader, secret string) error {
	id := firstHeader(header, idHeaders)
	ts := firstHeader(header, timestampHeaders)
	if id == "" || ts == "" {
		return ErrMissingSignature
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidTimestamp
	}
	drift := v.now().Sub(time.Unix(unix, 0))
	if drift < 0 {
		drift = -drift
	}
	if drift > v.tolerance {
		return ErrTimestampOutOfTolerance
	}

	expected := Sign(signingKey(secret), id, ts, body)

	for _, candidate := range strings.Fields(sigHeader) {
		scheme, encoded, ok := strings.Cut(candidate, ",")
		if !ok || scheme != signatureScheme {
			continue
		}
		presented, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			continue
		}
		if hmac.Equal(presented, expected) {
			return nil
		}
	}

	return ErrSignatureMismatch
}

// Sign computes the raw HMAC-SHA256 over "{id}.{timestamp}.{body}".
func Sign(key []byte, id, timestamp string, body []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return mac.Sum(nil)
}

// signingKey decodes "whsec_" secrets; anything else is used verbatim.
func signingKey(secret string) []byte {
	if encoded, ok := strings.CutPrefix(secret, secretPrefix); ok {
		if key, err := base64.StdEncoding.DecodeString(encoded); err == nil {
			return key
		}
	}
	return []byte(secret)
}

// MessageID returns the transport-level delivery id, which stays stable
// across retries of the same delivery.
func MessageID(header http.Header) string {
	return firstHeader(header, idHeaders)
}

// MessageID is the method form of the package-level MessageID.
func (v *Verifier) MessageID(header http.Header) string {
	return MessageID(header)
}

func firstHeader(header http.Header, names []string) string {
	for _, name := range names {
		if value := strings.TrimSpace(header.Get(name)); value != "" {
			return value
		}
	}
	return ""
}
