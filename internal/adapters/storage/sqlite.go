package storage

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/lcalzada-xor/biowatch/internal/core/ports"
)

var (
	_ ports.ConfigurationRepository = (*SQLiteAdapter)(nil)
	_ ports.CommentRepository       = (*SQLiteAdapter)(nil)
)

// SQLiteAdapter persists scoring configurations and activity comments using
// GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// ConfigurationModel is the GORM model for per-user scoring configurations.
type ConfigurationModel struct {
	ID                    uint   `gorm:"primaryKey"`
	UserID                string `gorm:"uniqueIndex;not null"`
	BioRelevanceWeight    float64
	CVSSWeight            float64 `gorm:"column:cvss_weight"`
	SoleSourceMultiplier  float64
	HumanImpactWeight     float64
	BioRelevanceThreshold float64
	UpdatedAt             time.Time
}

func (ConfigurationModel) TableName() string { return "ai_configurations" }

// CommentModel is the GORM model for activity entries.
type CommentModel struct {
	ID              uint   `gorm:"primaryKey"`
	Content         string `gorm:"not null"`
	Author          string `gorm:"not null"`
	VulnerabilityID *int64 `gorm:"index"`
	CommentType     string `gorm:"index;not null;default:general"`
	Action          string
	CreatedAt       time.Time `gorm:"index"`
}

func (CommentModel) TableName() string { return "comments" }

// Options tunes the adapter.
type Options struct {
	Tracing bool // instrument queries with OpenTelemetry spans
}

// NewSQLiteAdapter opens path and migrates the schema. ":memory:" is accepted
// for tests.
func NewSQLiteAdapter(path string, opts Options) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(dsn(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if path == ":memory:" {
		// Every new connection would see its own empty database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if opts.Tracing {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, fmt.Errorf("enable gorm tracing: %w", err)
		}
	}

	if err := db.AutoMigrate(&ConfigurationModel{}, &CommentModel{}); err != nil {
		return nil, err
	}

	// Activity feed ordering
	db.Exec("CREATE INDEX IF NOT EXISTS idx_comments_created_id ON comments(created_at DESC, id DESC)")

	return &SQLiteAdapter{db: db}, nil
}

// Close releases the underlying connection pool.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dsn(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}
