package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserPreference holds per-user optimizer settings. The threshold is a
// 0-100 percentage.
type UserPreference struct {
	UserID            string    `gorm:"primaryKey" json:"user_id"`
	MinImprovementPct float64   `gorm:"not null" json:"min_improvement_pct"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PreferenceStore persists user preferences and implements the engine's
// UserPreferenceProvider contract.
type PreferenceStore struct {
	db         *DB
	defaultPct float64
}

// NewPreferenceStore creates a preference store. defaultPct is returned
// for users with no saved preference.
func NewPreferenceStore(db *DB, defaultPct float64) *PreferenceStore {
	return &PreferenceStore{db: db, defaultPct: defaultPct}
}

// MinImprovementPct returns the user's saved threshold, or the configured
// default when none exists.
func (s *PreferenceStore) MinImprovementPct(ctx context.Context, userID string) (float64, error) {
	var pref UserPreference
	err := s.db.WithContext(ctx).First(&pref, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.defaultPct, nil
		}
		return 0, fmt.Errorf("failed to load user preference: %w", err)
	}
	return pref.MinImprovementPct, nil
}

// SetMinImprovementPct upserts the user's threshold.
func (s *PreferenceStore) SetMinImprovementPct(ctx context.Context, userID string, pct float64) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("min improvement percentage must be between 0 and 100, got %.2f", pct)
	}
	pref := UserPreference{UserID: userID, MinImprovementPct: pct}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"min_improvement_pct", "updated_at"}),
	}).Create(&pref).Error
	if err != nil {
		return fmt.Errorf("failed to save user preference: %w", err)
	}
	return nil
}
