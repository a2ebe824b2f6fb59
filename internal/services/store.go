package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Conceptual-Machines/magda-composer/internal/models"
)

// Store persists generation runs and humanization presets
type Store interface {
	SaveGeneration(ctx context.Context, g *models.Generation) error
	GetGeneration(ctx context.Context, publicID string) (*models.Generation, error)
	SavePreset(ctx context.Context, p *models.HumanizationPreset) error
	GetPreset(ctx context.Context, name string) (*models.HumanizationPreset, error)
	ListPresets(ctx context.Context) ([]models.HumanizationPreset, error)
	Ping(ctx context.Context) error
}

// MemoryStore keeps everything in process memory. Used when no database is configured.
type MemoryStore struct {
	mu          sync.RWMutex
	generations map[string]models.Generation
	presets     map[string]models.HumanizationPreset
	nextID      uint
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		generations: make(map[string]models.Generation),
		presets:     make(map[string]models.HumanizationPreset),
	}
}

func (s *MemoryStore) SaveGeneration(_ context.Context, g *models.Generation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.generations[g.PublicID]; exists {
		return fmt.Errorf("generation %s: %w", g.PublicID, ErrConflict)
	}
	s.nextID++
	g.ID = s.nextID
	now := time.Now()
	g.CreatedAt, g.UpdatedAt = now, now
	s.generations[g.PublicID] = *g
	return nil
}

func (s *MemoryStore) GetGeneration(_ context.Context, publicID string) (*models.Generation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.generations[publicID]
	if !ok {
		return nil, fmt.Errorf("generation %s: %w", publicID, ErrNotFound)
	}
	return &g, nil
}

func (s *MemoryStore) SavePreset(_ context.Context, p *models.HumanizationPreset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.presets[p.Name]; exists {
		return fmt.Errorf("preset %s: %w", p.Name, ErrConflict)
	}
	s.nextID++
	p.ID = s.nextID
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.presets[p.Name] = *p
	return nil
}

func (s *MemoryStore) GetPreset(_ context.Context, name string) (*models.HumanizationPreset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.presets[name]
	if !ok {
		return nil, fmt.Errorf("preset %s: %w", name, ErrNotFound)
	}
	return &p, nil
}

func (s *MemoryStore) ListPresets(_ context.Context) ([]models.HumanizationPreset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.HumanizationPreset, 0, len(s.presets))
	for _, p := range s.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}
