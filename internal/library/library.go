// ABOUTME: Chunk library access: resolves uris under a root and parses YAML files
// ABOUTME: Every failure is reported as a LoadError naming the offending file
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harper/prompt-randomizer/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrSelectionDefect is wrapped by load errors for empty slots or choices
var ErrSelectionDefect = models.ErrSelectionDefect

// Load operations reported in LoadError.Op
const (
	OpResolve  = "resolve"
	OpRead     = "read"
	OpParse    = "parse"
	OpValidate = "validate"
)

// LoadError reports a file that could not be turned into a template or chunk group
type LoadError struct {
	Path string
	Op   string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Library is a directory of chunk group files
type Library struct {
	root string
}

// New creates a library rooted at dir
func New(dir string) *Library {
	if dir == "" {
		dir = "."
	}
	return &Library{root: filepath.Clean(dir)}
}

// Root returns the library directory
func (l *Library) Root() string {
	return l.root
}

// Resolve maps a template uri to a path inside the library
func (l *Library) Resolve(uri string) (string, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", errors.New("empty uri")
	}
	if filepath.IsAbs(uri) {
		return "", fmt.Errorf("uri %q must be relative to the library", uri)
	}
	clean := filepath.Clean(filepath.FromSlash(uri))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("uri %q escapes the library", uri)
	}
	return filepath.Join(l.root, clean), nil
}

// LoadGroup reads and validates the chunk group referenced by uri
func (l *Library) LoadGroup(uri string) (*models.ChunkGroup, error) {
	path, err := l.Resolve(uri)
	if err != nil {
		return nil, &LoadError{Path: uri, Op: OpResolve, Err: err}
	}
	group, err := LoadGroupFile(path)
	if err != nil {
		return nil, err
	}
	group.Source = uri
	return group, nil
}

// LoadGroupFile parses a chunk group from an explicit path
func LoadGroupFile(path string) (*models.ChunkGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Op: OpRead, Err: err}
	}

	var group models.ChunkGroup
	if err := yaml.Unmarshal(data, &group); err != nil {
		return nil, &LoadError{Path: path, Op: OpParse, Err: err}
	}
	if err := group.Validate(); err != nil {
		return nil, &LoadError{Path: path, Op: OpValidate, Err: err}
	}
	group.Source = path
	return &group, nil
}

// LoadTemplateDefinition parses a root template file
func LoadTemplateDefinition(path string) (models.TemplateDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Op: OpRead, Err: err}
	}

	var def models.TemplateDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, &LoadError{Path: path, Op: OpParse, Err: err}
	}
	if err := def.Validate(); err != nil {
		return nil, &LoadError{Path: path, Op: OpValidate, Err: err}
	}
	return def, nil
}
