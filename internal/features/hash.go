// Package features implements the deterministic transforms from a raw
// transaction to the numeric feature vector the classifier consumes. The
// same code runs in the offline training pipeline and in the serving path,
// which is what keeps the two bit-for-bit consistent.
package features

import "crypto/md5"

// Bucket maps a string value onto a bucket index in [0, n). The hash is MD5
// with the digest reduced modulo n, so offline and online callers agree
// without sharing any state. Collisions are expected; this is dimensionality
// reduction, not a lookup.
//
// An empty value maps to the sentinel bucket 0. n must be positive.
func Bucket(value string, n int) int {
	if n <= 0 {
		return 0
	}
	if value == "" {
		return 0
	}
	sum := md5.Sum([]byte(value))
	// The digest is an unsigned big-endian integer; reduce it byte by byte
	// to avoid big-number arithmetic. r stays below n (<= 5000) so the
	// intermediate r*256+b never overflows.
	r := 0
	for _, b := range sum {
		r = (r*256 + int(b)) % n
	}
	return r
}
