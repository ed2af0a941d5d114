package cve

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/ports"
)

//go:embed schema.sql
var schemaSQL string

var _ ports.VulnerabilityRepository = (*SQLiteRepository)(nil)

// sqliteDateTime is what SQLite's datetime('now') produces.
const sqliteDateTime = "2006-01-02 15:04:05"

const selectColumns = `
	SELECT id, cve_id, title, description, severity, score, bio_relevance_score,
	       priority_score, source, source_credibility, biotech_relevance,
	       biological_impact, human_impact, sole_source_flag, discovered_date,
	       affected_systems, created_at, ai_rating, user_rating, is_reviewed, reviewed_at
	FROM vulnerabilities`

// SQLiteRepository implements ports.VulnerabilityRepository using SQLite.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a new SQLite-based vulnerability repository.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for snapshot reads alongside writers
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// GetByID returns nil, nil when no vulnerability has that id.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*domain.VulnerabilityRecord, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	v, err := scanVulnerability(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vulnerability: %w", err)
	}
	return &v, nil
}

// GetByCVE returns nil, nil when the CVE id is not stored.
func (r *SQLiteRepository) GetByCVE(ctx context.Context, cveID string) (*domain.VulnerabilityRecord, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+" WHERE cve_id = ?", cveID)
	v, err := scanVulnerability(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vulnerability: %w", err)
	}
	return &v, nil
}

func (r *SQLiteRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM vulnerabilities ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) List(ctx context.Context, filter domain.VulnerabilityFilter) ([]domain.VulnerabilityRecord, error) {
	var conditions []string
	var args []interface{}

	if filter.ReviewedOnly {
		conditions = append(conditions, "is_reviewed = 1")
	}
	if filter.MinBioRelevance != nil {
		conditions = append(conditions, "bio_relevance_score >= ?")
		args = append(args, *filter.MinBioRelevance)
	}

	query := selectColumns
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if filter.NewestFirst {
		query += " ORDER BY created_at DESC, id DESC"
	} else {
		query += " ORDER BY id"
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	vulns := []domain.VulnerabilityRecord{}
	for rows.Next() {
		v, err := scanVulnerability(rows)
		if err != nil {
			return nil, err
		}
		vulns = append(vulns, v)
	}
	return vulns, rows.Err()
}

// Upsert inserts v or refreshes the descriptive fields of the record with the
// same CVE id. A stored AI rating is kept; review state is never touched.
func (r *SQLiteRepository) Upsert(ctx context.Context, v domain.VulnerabilityRecord) (int64, error) {
	affected := v.AffectedSystems
	if affected == nil {
		affected = []string{}
	}
	affectedJSON, err := json.Marshal(affected)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal affected systems: %w", err)
	}

	createdAt := v.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}

	query := `
		INSERT INTO vulnerabilities (
			cve_id, title, description, severity, score, bio_relevance_score, priority_score,
			source, source_credibility, biotech_relevance, biological_impact, human_impact,
			sole_source_flag, discovered_date, affected_systems, created_at, ai_rating, is_reviewed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(cve_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			severity = excluded.severity,
			score = excluded.score,
			bio_relevance_score = excluded.bio_relevance_score,
			priority_score = excluded.priority_score,
			source = excluded.source,
			source_credibility = excluded.source_credibility,
			biotech_relevance = excluded.biotech_relevance,
			biological_impact = excluded.biological_impact,
			human_impact = excluded.human_impact,
			sole_source_flag = excluded.sole_source_flag,
			discovered_date = excluded.discovered_date,
			affected_systems = excluded.affected_systems,
			ai_rating = COALESCE(vulnerabilities.ai_rating, excluded.ai_rating)
	`

	_, err = r.db.ExecContext(ctx, query,
		v.CVEID, v.Title, v.Description, v.Severity,
		nullFloat(v.CVSSScore), nullFloat(v.BioRelevanceScore), nullFloat(v.PriorityScore),
		v.Source, v.SourceCredibility, v.BiotechRelevance, v.BiologicalImpact, v.HumanImpact,
		v.SoleSourceFlag, v.DiscoveredDate, string(affectedJSON),
		createdAt.UTC().Format(time.RFC3339), nullFloat(v.AIRating),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert vulnerability: %w", err)
	}

	// LastInsertId is unreliable on the update path.
	var id int64
	if err := r.db.QueryRowContext(ctx, "SELECT id FROM vulnerabilities WHERE cve_id = ?", v.CVEID).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateUserRating sets the analyst rating and marks the record reviewed.
func (r *SQLiteRepository) UpdateUserRating(ctx context.Context, id int64, rating float64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE vulnerabilities SET user_rating = ?, is_reviewed = 1, reviewed_at = ? WHERE id = ?",
		rating, r.now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	return requireRow(res)
}

// MarkReviewed flags the record reviewed. Unless keepCurrentRating is set, a
// missing user rating is filled from the AI rating.
func (r *SQLiteRepository) MarkReviewed(ctx context.Context, id int64, keepCurrentRating bool) error {
	query := "UPDATE vulnerabilities SET is_reviewed = 1, reviewed_at = ? WHERE id = ?"
	if !keepCurrentRating {
		query = "UPDATE vulnerabilities SET is_reviewed = 1, reviewed_at = ?, user_rating = COALESCE(user_rating, ai_rating) WHERE id = ?"
	}
	res, err := r.db.ExecContext(ctx, query, r.now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to mark reviewed: %w", err)
	}
	return requireRow(res)
}

// Stats summarises records with a bio relevance of at least minBioRelevance.
func (r *SQLiteRepository) Stats(ctx context.Context, minBioRelevance float64) (domain.VulnerabilityStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN severity = 'Critical' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN severity = 'High' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN severity = 'Medium' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN severity = 'Low' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(sole_source_flag), 0),
			COALESCE(AVG(score), 0)
		FROM vulnerabilities
		WHERE bio_relevance_score >= ?`

	var s domain.VulnerabilityStats
	err := r.db.QueryRowContext(ctx, query, minBioRelevance).Scan(
		&s.TotalVulnerabilities, &s.CriticalCount, &s.HighCount, &s.MediumCount,
		&s.LowCount, &s.SoleSourceCount, &s.AvgScore,
	)
	if err != nil {
		return s, fmt.Errorf("failed to compute stats: %w", err)
	}
	return s, nil
}

// ReviewStats reports review progress. The average rating difference is
// taken over every record, unrated ones counting as zero.
func (r *SQLiteRepository) ReviewStats(ctx context.Context) (domain.ReviewStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN is_reviewed = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN user_rating IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(CASE WHEN user_rating IS NOT NULL THEN ABS(user_rating - COALESCE(ai_rating, user_rating)) ELSE 0 END), 0)
		FROM vulnerabilities`

	var s domain.ReviewStats
	err := r.db.QueryRowContext(ctx, query).Scan(&s.Total, &s.Reviewed, &s.RatingChanged, &s.AvgRatingDifference)
	if err != nil {
		return s, fmt.Errorf("failed to compute review stats: %w", err)
	}
	if s.Total > 0 {
		s.ReviewPercentage = float64(s.Reviewed) / float64(s.Total) * 100
	}
	return s, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vulnerabilities").Scan(&count)
	return count, err
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVulnerability(row rowScanner) (domain.VulnerabilityRecord, error) {
	var v domain.VulnerabilityRecord
	var description, severity, source, credibility, biotech, biological, human, discovered, affected sql.NullString
	var score, bio, priority, aiRating, userRating sql.NullFloat64
	var soleSource, reviewed sql.NullInt64
	var createdAt string
	var reviewedAt sql.NullString

	err := row.Scan(
		&v.ID, &v.CVEID, &v.Title, &description, &severity, &score, &bio,
		&priority, &source, &credibility, &biotech,
		&biological, &human, &soleSource, &discovered,
		&affected, &createdAt, &aiRating, &userRating, &reviewed, &reviewedAt,
	)
	if err != nil {
		return v, err
	}

	v.Description = description.String
	v.Severity = severity.String
	v.Source = source.String
	v.SourceCredibility = credibility.String
	v.BiotechRelevance = biotech.String
	v.BiologicalImpact = biological.String
	v.HumanImpact = human.String
	v.DiscoveredDate = discovered.String
	v.CVSSScore = floatPtr(score)
	v.BioRelevanceScore = floatPtr(bio)
	v.PriorityScore = floatPtr(priority)
	v.AIRating = floatPtr(aiRating)
	v.UserRating = floatPtr(userRating)
	v.SoleSourceFlag = soleSource.Int64 != 0
	v.IsReviewed = reviewed.Int64 != 0
	v.CreatedAt = parseTime(createdAt)
	if reviewedAt.Valid {
		t := parseTime(reviewedAt.String)
		v.ReviewedAt = &t
	}

	v.AffectedSystems = []string{}
	if affected.Valid && affected.String != "" {
		if err := json.Unmarshal([]byte(affected.String), &v.AffectedSystems); err != nil {
			// A bad narrative column must not hide the record's scores.
			slog.Warn("Ignoring malformed affected systems", "cve_id", v.CVEID, "error", err)
			v.AffectedSystems = []string{}
		}
	}

	return v, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrVulnerabilityNotFound
	}
	return nil
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, sqliteDateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func dsn(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000"
}
