// Package hash computes the xxHash64 fingerprints of table descriptors.
package hash

import "github.com/cespare/xxhash/v2"

// Fingerprint computes the xxHash64 of parts joined by a NUL separator.
//
// The separator keeps ("ab", "c") and ("a", "bc") from hashing alike.
func Fingerprint(parts ...string) uint64 {
	d := xxhash.New()
	for i, p := range parts {
		if i > 0 {
			_, _ = d.Write([]byte{0})
		}
		_, _ = d.WriteString(p)
	}

	return d.Sum64()
}
