// Package shortcut persists the key bound to the mute shortcut.
package shortcut

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"

	"micmute/keys"
	"micmute/log"
)

// FileName is the document created beside the executable.
const FileName = "micmute.yaml"

var (
	ErrConfigRead  = errors.New("shortcut config unreadable")
	ErrConfigWrite = errors.New("shortcut config not writable")
)

// document is the on-disk layout:
//
//	root:
//	    shortcutkey: "41"
type document struct {
	Root struct {
		ShortcutKey string `yaml:"shortcutkey"`
	} `yaml:"root"`
}

// Store reads and writes the shortcut document at a fixed path.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the document path in the executable's directory.
func DefaultPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), FileName), nil
}

func (s *Store) Path() string { return s.path }

// Load returns the persisted key. A missing document is created holding
// keys.Default. Anything unreadable or unparseable yields keys.Default and
// leaves the file as it is.
func (s *Store) Load() keys.Key {
	k, err := s.load()
	if err != nil {
		log.Warnf("shortcut config %s: %v (using %s)", s.path, err, keys.Default)
		return keys.Default
	}
	return k
}

// Peek is Load without side effects: a missing document is reported as
// keys.Default and not created.
func (s *Store) Peek() keys.Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return keys.Default
	}
	k, err := decode(raw)
	if err != nil {
		return keys.Default
	}
	return k
}

func (s *Store) load() (keys.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		log.Infof("shortcut config missing, creating %s", s.path)
		return keys.Default, s.write(keys.Default)
	}
	if err != nil {
		return keys.Default, fmt.Errorf("%w: %w", ErrConfigRead, err)
	}
	return decode(raw)
}

// Save overwrites the persisted key. Failures wrap ErrConfigWrite.
func (s *Store) Save(k keys.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(k)
}

func (s *Store) write(k keys.Key) error {
	raw, err := encode(k)
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrConfigWrite, err)
	}
	if err := atomicWrite(s.path, raw); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigWrite, err)
	}
	return nil
}

func encode(k keys.Key) ([]byte, error) {
	var doc document
	doc.Root.ShortcutKey = strconv.Itoa(int(k))
	return yaml.Marshal(&doc)
}

func decode(raw []byte) (keys.Key, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return keys.Default, fmt.Errorf("%w: %w", ErrConfigRead, err)
	}
	v := strings.TrimSpace(doc.Root.ShortcutKey)
	if v == "" {
		return keys.Default, fmt.Errorf("%w: shortcutkey is empty", ErrConfigRead)
	}
	n, err := strconv.ParseUint(v, 10, 16)
	if err != nil {
		return keys.Default, fmt.Errorf("%w: shortcutkey %q: %w", ErrConfigRead, v, err)
	}
	k := keys.Key(n)
	if !keys.Valid(k) {
		return keys.Default, fmt.Errorf("%w: shortcutkey %d is not bindable", ErrConfigRead, n)
	}
	return k, nil
}

// atomicWrite replaces path via a temp file in the same directory so a
// crash never leaves a half-written document behind.
func atomicWrite(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".micmute.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
		}
		if err != nil {
			if removeErr := os.Remove(tmpPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
				log.Warnf("failed to remove temp file %s: %v", tmpPath, removeErr)
			}
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err = tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	err = tmpFile.Close()
	tmpFile = nil
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
