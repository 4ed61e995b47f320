package authority

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashProjectRoot derives the deterministic 32-byte identifier an
// AuthorityToken's ProjectID carries for a given canonical project root
// path. A plain content hash is wanted here, not a password hash: two
// tokens minted for the same root must compare equal without a per-call
// salt, so bcrypt (used elsewhere for HTTP bearer tokens) is the wrong
// primitive for this job.
func HashProjectRoot(root string) [32]byte {
	return sha256.Sum256([]byte(root))
}

// ProjectIDHex renders id the way audit logs and API responses surface
// it — a stable lowercase hex string rather than a raw byte array.
func ProjectIDHex(id [32]byte) string {
	return hex.EncodeToString(id[:])
}
