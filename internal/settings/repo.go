package settings

import (
	"context"
	"errors"
	"time"

	"github.com/suPer8Hu/chat-dashboard/internal/models"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Latest returns the newest snapshot, or (nil, nil) when none was stored yet.
func (r *Repo) Latest(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	err := r.db.WithContext(ctx).Order("id DESC").Limit(1).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Insert appends s as a new snapshot. ID and CreatedAt are assigned by the
// store.
func (r *Repo) Insert(ctx context.Context, s *models.Settings) error {
	s.ID = 0
	s.CreatedAt = time.Time{}
	return r.db.WithContext(ctx).Create(s).Error
}

// History returns up to limit snapshots, newest first.
func (r *Repo) History(ctx context.Context, limit int) ([]models.Settings, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []models.Settings
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
