// Package cryptox computes content fingerprints used to detect corruption
// of upload slices in transit.
package cryptox

import (
	"crypto/md5"
	"encoding/hex"
	"hash"
	"io"
)

// Fingerprint returns the lowercase hex md5 digest of data.
//
// md5 is used for transport-corruption detection only, not as a security
// boundary; clients compute the same digest before sending a slice.
func Fingerprint(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// FingerprintReader streams r through md5 and returns the digest with the
// number of bytes read.
func FingerprintReader(r io.Reader) (string, int64, error) {
	h := md5.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, err
	}
	return encode(h), n, nil
}

// MatchFingerprint reports whether want equals the fingerprint of data.
// The comparison is exact: an uppercase hex digest does not match.
func MatchFingerprint(data []byte, want string) bool {
	return Fingerprint(data) == want
}

func encode(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
