// ABOUTME: Store persists guys as JSON values under guy:<name> keys
// ABOUTME: Backed by any KV; the charm client is the production implementation
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harper/prompt-randomizer/internal/charm"
	"github.com/harper/prompt-randomizer/internal/models"
)

// ErrGuyNotFound is returned for a name with no stored guy
var ErrGuyNotFound = errors.New("guy not found")

// KV is the key-value surface the store needs. Get returns charm.ErrNotFound for a missing key.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	ListKeys(prefix string) ([]string, error)
}

// Store reads and writes guys
type Store struct {
	kv KV
}

// New wraps kv
func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Get loads a guy by name
func (s *Store) Get(name string) (*models.Guy, error) {
	data, err := s.kv.Get(charm.GuyKey(name))
	if errors.Is(err, charm.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGuyNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	var g models.Guy
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to decode guy %s: %w", name, err)
	}
	return &g, nil
}

// GetOrCreate loads a guy, or returns a new empty one that is not yet stored
func (s *Store) GetOrCreate(name string) (*models.Guy, bool, error) {
	g, err := s.Get(name)
	if err == nil {
		return g, false, nil
	}
	if !errors.Is(err, ErrGuyNotFound) {
		return nil, false, err
	}
	g, err = models.NewGuy(name)
	if err != nil {
		return nil, false, err
	}
	return g, true, nil
}

// Put upserts a guy
func (s *Store) Put(g *models.Guy) error {
	if strings.TrimSpace(g.Name) == "" {
		return errors.New("guy name cannot be empty")
	}
	g.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode guy %s: %w", g.Name, err)
	}
	return s.kv.Set(charm.GuyKey(g.Name), data)
}

// Delete removes a guy
func (s *Store) Delete(name string) error {
	if _, err := s.kv.Get(charm.GuyKey(name)); err != nil {
		if errors.Is(err, charm.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrGuyNotFound, name)
		}
		return err
	}
	return s.kv.Delete(charm.GuyKey(name))
}

// List returns stored guy names, sorted
func (s *Store) List() ([]string, error) {
	keys, err := s.kv.ListKeys(charm.GuyPrefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, charm.GuyPrefix))
	}
	sort.Strings(names)
	return names, nil
}
