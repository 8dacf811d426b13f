package safeio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// MarshalStable encodes v as indented JSON. Map keys are sorted by
// encoding/json, HTML characters are left unescaped and the output ends
// with a newline.
func MarshalStable(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ArtifactStore persists JSON artifacts as <dir>/<name>.<ext>.
type ArtifactStore struct {
	fs  afero.Fs
	dir string
	ext string
}

// NewArtifactStore creates a store rooted at dir. ext is the file extension
// without the leading dot.
func NewArtifactStore(fs afero.Fs, dir, ext string) *ArtifactStore {
	return &ArtifactStore{
		fs:  fs,
		dir: filepath.Clean(dir),
		ext: strings.TrimPrefix(ext, "."),
	}
}

// Path returns the file an artifact named name is written to.
func (s *ArtifactStore) Path(name string) (string, error) {
	clean, err := CleanRelativeName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)+"."+s.ext), nil
}

// Write encodes v and writes it atomically, overwriting any previous
// artifact of the same name. Returns the written path.
func (s *ArtifactStore) Write(name string, v any) (string, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}
	data, err := MarshalStable(v)
	if err != nil {
		return "", fmt.Errorf("encode artifact %s: %w", name, err)
	}
	if err := WriteFileAtomic(s.fs, path, data); err != nil {
		return "", err
	}
	return path, nil
}
