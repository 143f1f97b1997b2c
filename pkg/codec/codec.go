// Package codec defines the boundary between a merged template tree and the
// external Havok binary format (.hkx). The actual byte-level encoder is
// deliberately out of scope for this module: callers wire in their own
// Codec implementation, or use the provided atomic file writer with any
// byte producer.
package codec

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sardonyx-sard/dmerge/pkg/template"
)

// Target selects between the two output byte layouts a Codec may produce.
// The distinction between them is opaque to this package; it exists only
// so a Codec implementation can branch on it.
type Target int

const (
	TargetSkyrimSE Target = iota
	TargetSkyrimLE
)

func (t Target) String() string {
	if t == TargetSkyrimLE {
		return "skyrim_le"
	}
	return "skyrim_se"
}

// Codec turns a merged template tree into the bytes of one output file. A
// real implementation understands the Havok object-graph wire format; this
// package ships no such implementation.
type Codec interface {
	Encode(root *template.Node, target Target) ([]byte, error)
}

// Error reports a codec that could not encode a tree, carrying the
// template key and target for diagnostics.
type Error struct {
	TemplateKey string
	Target      Target
	Reason      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("codec: %s (%s): %s", e.TemplateKey, e.Target, e.Reason)
}

// Unimplemented is a Codec stub that always fails, used where no real
// Havok encoder has been wired in.
type Unimplemented struct{}

func (Unimplemented) Encode(_ *template.Node, target Target) ([]byte, error) {
	return nil, &Error{Target: target, Reason: "no Havok codec configured"}
}

// WriteAtomic writes data to a temp file alongside path, then renames it
// into place, so a reader never observes a partially-written output file.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("codec: creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("codec: writing temp file %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("codec: closing temp file %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("codec: chmod temp file %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("codec: renaming %s to %s: %w", tmpName, path, err)
	}
	return nil
}
