package releases

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/fulmenhq/relinfo/internal/schema"
	"github.com/fulmenhq/relinfo/pkg/logger"
	"github.com/fulmenhq/relinfo/pkg/safeio"
)

// Validator is the cache record kept per resource key.
type Validator struct {
	ETag         string `json:"ETag,omitempty"`
	LastModified string `json:"Last-Modified,omitempty"`
}

// Empty reports whether neither validator is set.
func (v Validator) Empty() bool {
	return v.ETag == "" && v.LastModified == ""
}

// Header builds the conditional request headers. ETag wins over
// Last-Modified.
func (v Validator) Header() http.Header {
	h := http.Header{}
	switch {
	case v.ETag != "":
		h.Set("If-None-Match", v.ETag)
	case v.LastModified != "":
		h.Set("If-Modified-Since", v.LastModified)
	}
	return h
}

// ValidatorStore persists validators as one JSON file per key under a
// cache directory.
type ValidatorStore struct {
	fs  afero.Fs
	dir string
}

// NewValidatorStore creates a store rooted at dir.
func NewValidatorStore(fs afero.Fs, dir string) *ValidatorStore {
	return &ValidatorStore{fs: fs, dir: filepath.Clean(dir)}
}

// Dir returns the cache directory.
func (s *ValidatorStore) Dir() string {
	return s.dir
}

func (s *ValidatorStore) path(key string) (string, error) {
	name, err := safeio.CleanRelativeName(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, filepath.FromSlash(name)), nil
}

// Lookup returns the stored validator for key. Missing, unreadable or
// malformed records report false.
func (s *ValidatorStore) Lookup(key string) (Validator, bool) {
	p, err := s.path(key)
	if err != nil {
		logger.Warn("Invalid cache key", logger.String("key", key), logger.Err(err))
		return Validator{}, false
	}

	data, err := safeio.ReadFileContained(s.fs, s.dir, p)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Unexpected cache read error", logger.String("path", p), logger.Err(err))
		}
		return Validator{}, false
	}

	res, err := schema.ValidateBytes(data, schema.ValidatorRecord)
	if err != nil || !res.Valid {
		msg := res.Summary()
		if err != nil {
			msg = err.Error()
		}
		logger.Warn("Ignoring malformed cache record", logger.String("path", p), logger.String("reason", msg))
		return Validator{}, false
	}

	var v Validator
	if err := json.Unmarshal(data, &v); err != nil {
		return Validator{}, false
	}
	return v, true
}

// Load returns conditional request headers for key; empty when nothing
// usable is cached.
func (s *ValidatorStore) Load(key string) http.Header {
	v, ok := s.Lookup(key)
	if !ok {
		return http.Header{}
	}
	return v.Header()
}

// Save records the ETag and Last-Modified of h under key, replacing any
// previous record.
func (s *ValidatorStore) Save(key string, h http.Header) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	v := Validator{
		ETag:         h.Get("ETag"),
		LastModified: h.Get("Last-Modified"),
	}
	data, err := safeio.MarshalStable(v)
	if err != nil {
		return err
	}
	return safeio.WriteFileAtomic(s.fs, p, data)
}

// Remove deletes the record for key. Removing a missing record is not an
// error.
func (s *ValidatorStore) Remove(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
