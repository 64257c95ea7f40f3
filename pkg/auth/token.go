// Package auth provides the bearer token attached to backend requests.
//
// The token is an explicit dependency handed to the API client instead of
// ambient state. Sources are read on every request.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// TokenSource yields the bearer token for a request. An empty token means
// the request is sent without an Authorization header.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a fixed token, typically from config or the environment.
type StaticToken string

// Token returns the token unchanged.
func (s StaticToken) Token() (string, error) {
	return strings.TrimSpace(string(s)), nil
}

// NoToken sends requests unauthenticated.
type NoToken struct{}

// Token always returns an empty token.
func (NoToken) Token() (string, error) {
	return "", nil
}

// FileTokenSource reads the token from a file and caches it until the file
// changes on disk. The web client keeps its token in local storage; a token
// file is the terminal equivalent.
type FileTokenSource struct {
	path string
	log  zerolog.Logger

	mu     sync.RWMutex
	token  string
	loaded bool

	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// NewFileTokenSource creates a source for path and starts watching its
// directory so writes, renames and removals invalidate the cached value.
// If the watcher cannot be created the source still works, re-reading the
// file on every call.
func NewFileTokenSource(path string, logger zerolog.Logger) (*FileTokenSource, error) {
	if path == "" {
		return nil, errors.New("token file path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve token file %s: %w", path, err)
	}

	s := &FileTokenSource{
		path: abs,
		log:  logger.With().Str("component", "token").Logger(),
		done: make(chan struct{}),
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.log.Warn().Err(err).Msg("token watcher unavailable, reading token file per request")
		close(s.done)
		return s, nil
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		s.log.Warn().Err(err).Str("dir", filepath.Dir(abs)).Msg("cannot watch token directory")
		w.Close()
		close(s.done)
		return s, nil
	}
	s.watcher = w
	go s.watch()
	return s, nil
}

// Token returns the cached token, reading the file if needed.
func (s *FileTokenSource) Token() (string, error) {
	s.mu.RLock()
	if s.loaded && s.watcher != nil {
		tok := s.token
		s.mu.RUnlock()
		return tok, nil
	}
	s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read token file %s: %w", s.path, err)
	}
	tok := strings.TrimSpace(string(data))

	s.mu.Lock()
	s.token = tok
	s.loaded = true
	s.mu.Unlock()
	return tok, nil
}

// Path returns the absolute path of the token file.
func (s *FileTokenSource) Path() string {
	return s.path
}

// Close stops the file watcher.
func (s *FileTokenSource) Close() error {
	var err error
	s.once.Do(func() {
		if s.watcher != nil {
			err = s.watcher.Close()
			<-s.done
		}
	})
	return err
}

func (s *FileTokenSource) invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.token = ""
	s.mu.Unlock()
}

func (s *FileTokenSource) watch() {
	defer close(s.done)
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			s.log.Debug().Str("op", event.Op.String()).Msg("token file changed")
			s.invalidate()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn().Err(err).Msg("token watcher error")
		}
	}
}
