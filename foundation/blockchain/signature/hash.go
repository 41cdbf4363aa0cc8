package signature

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"strconv"
	"time"
)

// ZeroHash represents a hash code of zeros. It is the previous hash of the
// genesis block.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// TimeFormat is the fixed layout used to render a block timestamp inside
// the canonical encoding. Time is always rendered in UTC with microsecond
// precision and no zone suffix.
const TimeFormat = "2006-01-02T15:04:05.000000"

// chunkSize is the read size used when hashing content.
const chunkSize = 4096

// =============================================================================

// HashContent returns the SHA-256 of everything read from r as 64 lowercase
// hex characters. This is the payload hash of a certificate file.
func HashContent(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Digest returns the block hash for the specified block fields. The value
// is the SHA-256 of the canonical encoding rendered as 64 lowercase hex
// characters.
func Digest(prevHash string, payloadHash string, timeStamp time.Time, nonce uint64) string {
	hash := sha256.Sum256(Canonical(prevHash, payloadHash, timeStamp, nonce))
	return hex.EncodeToString(hash[:])
}

// Canonical produces the exact bytes that are hashed for a block. The fields
// are written as a JSON object with the keys sorted by name:
//
//	{"certificate_hash": "<payload>", "nonce": <n>, "previous_hash": "<prev>", "timestamp": "<ts>"}
//
// Any implementation that reproduces these bytes for the same logical values
// will produce the same block hash.
func Canonical(prevHash string, payloadHash string, timeStamp time.Time, nonce uint64) []byte {
	var b bytes.Buffer
	b.Grow(200)

	b.WriteString(`{"certificate_hash": `)
	b.Write(quote(payloadHash))
	b.WriteString(`, "nonce": `)
	b.WriteString(strconv.FormatUint(nonce, 10))
	b.WriteString(`, "previous_hash": `)
	b.Write(quote(prevHash))
	b.WriteString(`, "timestamp": `)
	b.Write(quote(FormatTime(timeStamp)))
	b.WriteString(`}`)

	return b.Bytes()
}

// FormatTime renders the time the way it is hashed.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// IsHash reports whether the string has the shape of a digest produced by
// this package: 64 lowercase hex characters.
func IsHash(s string) bool {
	if len(s) != 64 {
		return false
	}

	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}

	return true
}

// quote renders the string as a JSON string literal. Invalid UTF-8 is
// replaced with U+FFFD, so a payload carrying it hashes lossily. The
// gateway only accepts hex payloads, the ledger itself does not check.
func quote(s string) []byte {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)

	// Encoding a string value never fails.
	enc.Encode(s)

	return bytes.TrimSuffix(b.Bytes(), []byte("\n"))
}
