package loadsave

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/mdedit/pkg/fsutil"
)

// MaxRecentFiles caps the recent files list.
const MaxRecentFiles = 20

// RecentFile is a recently opened file and the caret offset it was left at.
type RecentFile struct {
	Path   string `yaml:"path"`
	Offset int    `yaml:"offset"`
}

// Session is the state remembered between runs. It is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	path     string
	lastOpen string
	recent   []RecentFile
}

type sessionFile struct {
	LastOpenFile string       `yaml:"last_open_file,omitempty"`
	RecentFiles  []RecentFile `yaml:"recent_files,omitempty"`
}

// NewSession creates an empty session persisted at path. An empty path
// keeps the session in memory only.
func NewSession(path string) *Session {
	return &Session{path: path}
}

// LoadSession reads the session at path. A missing file yields an empty
// session.
func LoadSession(ctx context.Context, path string) (*Session, error) {
	s := NewSession(path)

	content, _, err := fsutil.ReadFile(ctx, path)
	if errors.Is(err, fsutil.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var file sessionFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", path, err)
	}

	s.lastOpen = file.LastOpenFile
	for _, r := range file.RecentFiles {
		s.addRecent(r.Path, r.Offset, false)
	}
	return s, nil
}

// Path returns where the session is persisted.
func (s *Session) Path() string {
	return s.path
}

// Save writes the session to its path. It does nothing for in-memory sessions.
func (s *Session) Save(ctx context.Context) error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	file := sessionFile{
		LastOpenFile: s.lastOpen,
		RecentFiles:  append([]RecentFile(nil), s.recent...),
	}
	s.mu.Unlock()

	content, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	if err := fsutil.WriteAtomic(ctx, s.path, content, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// LastOpen returns the last opened file as "path|offset", or "".
func (s *Session) LastOpen() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOpen
}

// SetLastOpen records the last opened file spec.
func (s *Session) SetLastOpen(spec string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastOpen = spec
}

// AddRecent moves path to the front of the recent files list.
func (s *Session) AddRecent(path string, offset int) {
	s.addRecent(path, offset, true)
}

func (s *Session) addRecent(path string, offset int, front bool) {
	if strings.TrimSpace(path) == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.recent[:0]
	for _, r := range s.recent {
		if r.Path != path {
			kept = append(kept, r)
		}
	}

	entry := RecentFile{Path: path, Offset: max(offset, 0)}
	if front {
		s.recent = append([]RecentFile{entry}, kept...)
	} else {
		s.recent = append(kept, entry)
	}
	if len(s.recent) > MaxRecentFiles {
		s.recent = s.recent[:MaxRecentFiles]
	}
}

// Recent returns the recent files, most recent first.
func (s *Session) Recent() []RecentFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecentFile(nil), s.recent...)
}

// FileSpec formats a file and caret offset as "path|offset".
func FileSpec(path string, offset int) string {
	return path + "|" + strconv.Itoa(offset)
}

// ParseFileSpec splits "path|offset". A missing or malformed offset is 0.
func ParseFileSpec(spec string) (string, int) {
	path, raw, found := strings.Cut(spec, "|")
	if !found {
		return path, 0
	}
	offset, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || offset < 0 {
		return path, 0
	}
	return path, offset
}
