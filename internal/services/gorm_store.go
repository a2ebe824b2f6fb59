package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Conceptual-Machines/magda-composer/internal/database"
	"github.com/Conceptual-Machines/magda-composer/internal/models"
)

// GormStore persists generations and presets in PostgreSQL
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over an open, migrated database
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) SaveGeneration(ctx context.Context, g *models.Generation) error {
	if err := s.db.WithContext(ctx).Create(g).Error; err != nil {
		return fmt.Errorf("failed to save generation: %w", mapGormError(err))
	}
	return nil
}

func (s *GormStore) GetGeneration(ctx context.Context, publicID string) (*models.Generation, error) {
	var g models.Generation
	if err := s.db.WithContext(ctx).Where("public_id = ?", publicID).First(&g).Error; err != nil {
		return nil, fmt.Errorf("generation %s: %w", publicID, mapGormError(err))
	}
	return &g, nil
}

func (s *GormStore) SavePreset(ctx context.Context, p *models.HumanizationPreset) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("preset %s: %w", p.Name, mapGormError(err))
	}
	return nil
}

func (s *GormStore) GetPreset(ctx context.Context, name string) (*models.HumanizationPreset, error) {
	var p models.HumanizationPreset
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&p).Error; err != nil {
		return nil, fmt.Errorf("preset %s: %w", name, mapGormError(err))
	}
	return &p, nil
}

func (s *GormStore) ListPresets(ctx context.Context) ([]models.HumanizationPreset, error) {
	var presets []models.HumanizationPreset
	if err := s.db.WithContext(ctx).Order("name").Find(&presets).Error; err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	return presets, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	return database.Ping(ctx, s.db)
}

func mapGormError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}
