// Package certid generates and parses public certificate identifiers of the
// form CERT-<base36 millisecond timestamp>-<7 base36 chars>, upper-cased,
// e.g. CERT-LX3K9A2-F8G1J2K. Identifiers sort roughly by issuance time and
// are short enough to type. Uniqueness is probabilistic; the store enforces
// the hard guarantee.
package certid

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	prefix       = "CERT"
	randomLength = 7
	alphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var ErrMalformed = errors.New("malformed certificate id")

// New returns a fresh identifier using the current clock.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns an identifier for the given issuance instant.
func NewAt(t time.Time) string {
	ts := strconv.FormatInt(t.UnixMilli(), 36)
	return strings.ToUpper(prefix + "-" + ts + "-" + randomSuffix())
}

func randomSuffix() string {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, randomLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken;
			// nothing sensible to degrade to.
			panic(fmt.Sprintf("certid: rand failed: %v", err))
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf)
}

// IssuedAt extracts the embedded issuance timestamp.
func IssuedAt(id string) (time.Time, error) {
	parts, err := split(id)
	if err != nil {
		return time.Time{}, err
	}
	millis, err := strconv.ParseInt(strings.ToLower(parts[1]), 36, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad timestamp segment", ErrMalformed)
	}
	return time.UnixMilli(millis), nil
}

// Valid reports whether id has the CERT-<ts>-<random> shape.
func Valid(id string) bool {
	_, err := split(id)
	return err == nil
}

func split(id string) ([]string, error) {
	parts := strings.Split(id, "-")
	if len(parts) != 3 || parts[0] != prefix {
		return nil, ErrMalformed
	}
	if parts[1] == "" || len(parts[2]) != randomLength {
		return nil, ErrMalformed
	}
	for _, seg := range parts[1:] {
		for _, r := range seg {
			if !strings.ContainsRune(alphabet, r) {
				return nil, ErrMalformed
			}
		}
	}
	return parts, nil
}
