package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
)

// GetConfiguration returns nil, nil when userID has no stored configuration.
func (a *SQLiteAdapter) GetConfiguration(ctx context.Context, userID string) (*domain.ScoringConfiguration, error) {
	var m ConfigurationModel
	err := a.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cfg := configurationToDomain(m)
	return &cfg, nil
}

// UpsertConfiguration inserts cfg or overwrites the row of the same user.
func (a *SQLiteAdapter) UpsertConfiguration(ctx context.Context, cfg domain.ScoringConfiguration) (*domain.ScoringConfiguration, error) {
	m := configurationToModel(cfg)
	m.ID = 0

	err := a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"bio_relevance_weight",
			"cvss_weight",
			"sole_source_multiplier",
			"human_impact_weight",
			"bio_relevance_threshold",
			"updated_at",
		}),
	}).Create(&m).Error
	if err != nil {
		return nil, err
	}

	// The conflict path does not report the existing primary key.
	return a.GetConfiguration(ctx, cfg.UserID)
}

// EnsureDefaultConfiguration inserts the default row when it is missing and
// leaves an existing one untouched.
func (a *SQLiteAdapter) EnsureDefaultConfiguration(ctx context.Context, cfg domain.ScoringConfiguration) error {
	m := configurationToModel(cfg)
	m.ID = 0
	return a.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error
}
