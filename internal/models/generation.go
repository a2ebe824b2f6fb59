package models

import (
	"time"

	"gorm.io/gorm"
)

// Generation is a stored generation run
type Generation struct {
	ID        uint           `gorm:"primarykey" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PublicID   string `gorm:"uniqueIndex;not null" json:"id"`
	RequestID  string `gorm:"index" json:"request_id,omitempty"`
	Seed       int64  `gorm:"not null" json:"seed"`
	BlockCount int    `gorm:"not null" json:"block_count"`
	EventCount int    `gorm:"not null" json:"event_count"`
	RestBlocks int    `gorm:"default:0" json:"rest_blocks"`
	Request    string `gorm:"type:text;not null" json:"-"` // JSON encoded GenerationRequest
	Result     string `gorm:"type:text;not null" json:"-"` // JSON encoded GenerationResult
	DurationMS int    `gorm:"not null" json:"duration_ms"`
}

// HumanizationPreset is a user-defined humanization template
type HumanizationPreset struct {
	ID        uint           `gorm:"primarykey" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name               string  `gorm:"uniqueIndex;not null" json:"name"`
	TimeVariation      float64 `gorm:"not null" json:"time_variation"`
	DurationPercentage float64 `gorm:"not null" json:"duration_percentage"`
	VelocityVariation  int     `gorm:"not null" json:"velocity_variation"`
	UseFractionalNoise bool    `gorm:"default:false" json:"use_fbm_time"`
	FBMScale           float64 `gorm:"default:0.01" json:"fbm_time_scale"`
	FBMHurst           float64 `gorm:"default:0.6" json:"fbm_hurst"`
}
