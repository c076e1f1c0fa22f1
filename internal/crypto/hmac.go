// Package crypto implements request signing for authenticated exchange APIs.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

// HMACAuth holds the credentials for HMAC-authenticated requests against the
// OKX v5 API.
type HMACAuth struct {
	Key        string // API key
	Secret     string // API secret, used raw as the HMAC key
	Passphrase string // API passphrase
}

// Configured reports whether all three credential fields are present.
func (h *HMACAuth) Configured() bool {
	return h.Key != "" && h.Secret != "" && h.Passphrase != ""
}

// Headers returns the OK-ACCESS-* HTTP headers for a request. The signature
// is HMAC-SHA256(secret, timestamp+method+path+body) encoded as base64, with
// the timestamp in the ISO8601 millisecond format OKX expects.
//
// Returned header keys:
//   - OK-ACCESS-KEY
//   - OK-ACCESS-TIMESTAMP
//   - OK-ACCESS-PASSPHRASE
//   - OK-ACCESS-SIGN
func (h *HMACAuth) Headers(method, path, body string) map[string]string {
	return h.HeadersAt(method, path, body, time.Now().UTC())
}

// HeadersAt is like Headers but lets the caller supply the timestamp (useful
// for deterministic testing).
func (h *HMACAuth) HeadersAt(method, path, body string, at time.Time) map[string]string {
	ts := at.UTC().Format("2006-01-02T15:04:05.000Z")

	message := ts + method + path + body
	sig := hmacSHA256Base64([]byte(h.Secret), message)

	return map[string]string{
		"OK-ACCESS-KEY":        h.Key,
		"OK-ACCESS-TIMESTAMP":  ts,
		"OK-ACCESS-PASSPHRASE": h.Passphrase,
		"OK-ACCESS-SIGN":       sig,
	}
}

// String returns a redacted representation suitable for logging.
func (h *HMACAuth) String() string {
	redact := func(s string) string {
		if len(s) <= 4 {
			return "****"
		}
		return s[:4] + "****"
	}
	return fmt.Sprintf("HMACAuth{key=%s, secret=%s}", redact(h.Key), redact(h.Secret))
}

// hmacSHA256Base64 computes HMAC-SHA256 of message using key and returns the
// result as a base64 standard-encoded string.
func hmacSHA256Base64(key []byte, message string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
