package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OptimizationRun is one audit row per optimize call. The row records the
// aggregates only; the full lineup is recomputed on demand and never
// persisted.
type OptimizationRun struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OptimizationID        string    `gorm:"not null;index" json:"optimization_id"`
	LeagueID              string    `gorm:"not null;index" json:"league_id"`
	UserID                string    `gorm:"not null;index" json:"user_id"`
	Week                  int       `gorm:"not null" json:"week"`
	Year                  int       `gorm:"not null" json:"year"`
	ScoringFormat         string    `gorm:"not null" json:"scoring_format"`
	ProjectedPoints       float64   `json:"projected_points"`
	CurrentPoints         float64   `json:"current_points"`
	Improvement           float64   `json:"improvement"`
	ActionableImprovement float64   `json:"actionable_improvement"`
	ChangeCount           int       `json:"change_count"`
	CreatedAt             time.Time `json:"created_at"`
}

// RunStore persists optimization run audit records.
type RunStore struct {
	db *DB
}

// NewRunStore creates a run store
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// Record inserts one audit row.
func (s *RunStore) Record(ctx context.Context, run *OptimizationRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to record optimization run: %w", err)
	}
	return nil
}

// RecentForLeague returns the most recent runs for a league, newest first.
func (s *RunStore) RecentForLeague(ctx context.Context, leagueID string, limit int) ([]OptimizationRun, error) {
	var runs []OptimizationRun
	err := s.db.WithContext(ctx).
		Where("league_id = ?", leagueID).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load optimization runs: %w", err)
	}
	return runs, nil
}
