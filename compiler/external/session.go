package external

import (
	"os"
	"path/filepath"

	"tlog.app/go/errors"
)

// Session scopes the filesystem resources one compilation run touches:
// the output directory assembly units and class files land in, and any
// temporary files created along the way. Close releases everything
// Session created, so callers can defer it right after NewSession
// succeeds and not worry about cleanup on any exit path, the same
// discipline the teacher's pipeline stages apply to wrapped errors.
type Session struct {
	Dir string // output directory; may be pre-existing or created fresh

	owned bool // Dir was created by NewSession, so Close should remove it
	temps []string
}

// NewSession resolves dir (creating it, and recording that ownership,
// if it does not already exist).
func NewSession(dir string) (*Session, error) {
	s := &Session{Dir: dir}

	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "stat output directory %v", dir)
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create output directory %v", dir)
		}

		s.owned = true
	}

	return s, nil
}

// WriteUnit writes data to name under the session's directory and
// returns the path written.
func (s *Session) WriteUnit(name string, data []byte) (string, error) {
	path := filepath.Join(s.Dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "write unit %v", path)
	}

	return path, nil
}

// Temp creates a new empty temporary file under the session's
// directory, tracked for removal on Close.
func (s *Session) Temp(pattern string) (*os.File, error) {
	f, err := os.CreateTemp(s.Dir, pattern)
	if err != nil {
		return nil, errors.Wrap(err, "create temp file")
	}

	s.temps = append(s.temps, f.Name())

	return f, nil
}

// Close removes every temp file this session created, and the output
// directory itself if NewSession created it.
func (s *Session) Close() error {
	var errs []error

	for _, t := range s.temps {
		if err := os.Remove(t); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}

	if s.owned {
		if err := os.RemoveAll(s.Dir); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return nil
	}

	return errors.Wrap(errs[0], "close session")
}
