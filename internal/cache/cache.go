// Package cache persists a lightweight compiled-spec validity record to
// disk so repeated CLI invocations against the same specification can
// tell whether a previous compilation is still current without
// re-parsing the spec text. Grounded on the teacher's own save-state
// codec (server/dao/sqlite/sessions.go, server/dao/sqlite/sqlite.go),
// which uses github.com/dekarrin/rezi's reflection-based binary
// encoding (rezi.EncBinary/DecBinary) rather than a hand-written
// marshaler.
//
// The compiled CDFA/grammar/pattern graph itself is not persisted here:
// it is a web of pointer-linked, interning-table-backed structures with
// no natural flat binary form, and spec compilation is fast and fully
// deterministic from source text, so there is nothing to gain from
// serializing it. What the cache buys is a cheap on-disk fingerprint a
// host process can compare against before deciding to recompile at all.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/dekarrin/rezi"
)

// Record is the on-disk cache entry for one specification file: the hash
// of the spec text it was compiled from, and the revision stamped on
// that compilation (padd.CompiledSpec.Revision, as a string so the
// record stays within rezi's reflection-friendly primitive types).
type Record struct {
	SpecHash string
	Revision string
}

// Hash returns the hex-encoded SHA-256 digest of specText, the key a
// Record is indexed by.
func Hash(specText string) string {
	sum := sha256.Sum256([]byte(specText))
	return hex.EncodeToString(sum[:])
}

// Load reads a Record from path. A missing file is not an error: it
// reports a nil Record and no error, meaning "no cache entry yet".
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var rec Record
	if _, err := rezi.DecBinary(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save writes rec to path, creating or truncating it.
func Save(path string, rec Record) error {
	data := rezi.EncBinary(rec)
	return os.WriteFile(path, data, 0o644)
}

// Valid reports whether a loaded Record still matches specText, i.e.
// whether the compilation it records can be trusted without re-running
// the spec compiler.
func (r *Record) Valid(specText string) bool {
	return r != nil && r.SpecHash == Hash(specText)
}
