package file

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
)

// Ensure TemplateStore implements the interface.
var _ driven.TemplateStore = (*TemplateStore)(nil)

//go:embed templates/*.json
var defaultTemplates embed.FS

const templateExt = ".json"

// TemplateStore loads card templates from user-editable files on disk.
// Templates live in a configurable directory with fallback to the embedded
// defaults.
//
// The directory is only created on first access, not in the constructor.
type TemplateStore struct {
	mu          sync.RWMutex
	templateDir string
	cache       map[string][]byte
	initOnce    sync.Once
	initErr     error
}

// NewTemplateStore creates a new file-based template store.
// If templateDir is empty, defaults to ~/.cardstudio/templates/.
func NewTemplateStore(templateDir string) (*TemplateStore, error) {
	if templateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		templateDir = filepath.Join(home, ".cardstudio", "templates")
	}

	return &TemplateStore{
		templateDir: templateDir,
		cache:       make(map[string][]byte),
	}, nil
}

// Load returns the template document for the given name.
// Falls back to the embedded default when the file cannot be read.
func (s *TemplateStore) Load(name string) ([]byte, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: template name %q", domain.ErrInvalidInput, name)
	}

	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return builtin(name)
	}

	s.mu.RLock()
	if data, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return data, nil
	}
	s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.templateDir, name+templateExt))
	if err != nil {
		return builtin(name)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		data = cached
	} else {
		s.cache[name] = data
	}
	s.mu.Unlock()

	return data, nil
}

// Names returns the templates on disk together with the built-in ones.
func (s *TemplateStore) Names() ([]string, error) {
	s.initOnce.Do(s.initialise)

	seen := make(map[string]bool)
	builtins, err := fs.Glob(defaultTemplates, "templates/*"+templateExt)
	if err != nil {
		return nil, err
	}
	for _, path := range builtins {
		seen[strings.TrimSuffix(filepath.Base(path), templateExt)] = true
	}

	if s.initErr == nil {
		entries, err := os.ReadDir(s.templateDir)
		if err != nil {
			return nil, fmt.Errorf("read template directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != templateExt {
				continue
			}
			seen[strings.TrimSuffix(e.Name(), templateExt)] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Reload clears the template cache, forcing fresh loads from disk.
func (s *TemplateStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()
}

// Dir returns the template directory path.
func (s *TemplateStore) Dir() string {
	return s.templateDir
}

// initialise creates the template directory and writes the defaults that
// are not there yet. Called once via sync.Once.
func (s *TemplateStore) initialise() {
	if err := os.MkdirAll(s.templateDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create template directory: %w", err)
		return
	}

	err := fs.WalkDir(defaultTemplates, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		target := filepath.Join(s.templateDir, d.Name())
		if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
			return nil
		}
		data, err := defaultTemplates.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0600)
	})
	if err != nil {
		s.initErr = fmt.Errorf("write default templates: %w", err)
	}
}

func builtin(name string) ([]byte, error) {
	data, err := defaultTemplates.ReadFile("templates/" + name + templateExt)
	if err != nil {
		return nil, fmt.Errorf("%w: template %q", domain.ErrNotFound, name)
	}
	return data, nil
}

// validName rejects names that would escape the template directory.
func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && name != "." && name != ".."
}
