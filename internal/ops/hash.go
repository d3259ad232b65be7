// Hashing primitives: `hash(algo, s)` over the standard digest set,
// wrapping stdlib crypto/* behind a name-dispatched primitive table the
// same way Apply1/Apply2 above do. Nothing third-party is worth
// preferring over crypto/md5, crypto/sha1, and crypto/sha256/sha512,
// which are the ecosystem-standard choice for fixed, non-configurable
// digests.
package ops

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"github.com/lucid-lang/lucid/internal/ident"
)

// HashAlgo names the four supported digests.
type HashAlgo string

const (
	Md5    HashAlgo = "md5"
	Sha1   HashAlgo = "sha1"
	Sha256 HashAlgo = "sha256"
	Sha512 HashAlgo = "sha512"
)

// Hash renders the hex digest of s under algo, or an OpError if algo
// names none of the four supported digests.
func Hash(pos ident.Pos, algo, s string) (string, error) {
	switch HashAlgo(algo) {
	case Md5:
		sum := md5.Sum([]byte(s))
		return hex.EncodeToString(sum[:]), nil
	case Sha1:
		sum := sha1.Sum([]byte(s))
		return hex.EncodeToString(sum[:]), nil
	case Sha256:
		sum := sha256.Sum256([]byte(s))
		return hex.EncodeToString(sum[:]), nil
	case Sha512:
		sum := sha512.Sum512([]byte(s))
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", opErr(pos, "hash: unknown algorithm %q (expected md5, sha1, sha256, or sha512)", fmt.Sprint(algo))
	}
}
