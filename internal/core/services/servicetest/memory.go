// Package servicetest provides in-memory repositories for service tests.
package servicetest

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
)

// VulnerabilityStore is a map-backed ports.VulnerabilityRepository.
type VulnerabilityStore struct {
	mu      sync.Mutex
	records map[int64]domain.VulnerabilityRecord
	nextID  int64
	Err     error // returned by every call when set
}

func NewVulnerabilityStore(records ...domain.VulnerabilityRecord) *VulnerabilityStore {
	s := &VulnerabilityStore{records: make(map[int64]domain.VulnerabilityRecord)}
	for _, r := range records {
		if _, err := s.Upsert(context.Background(), r); err != nil {
			panic(err)
		}
	}
	return s
}

func (s *VulnerabilityStore) GetByID(_ context.Context, id int64) (*domain.VulnerabilityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	v, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (s *VulnerabilityStore) GetByCVE(_ context.Context, cveID string) (*domain.VulnerabilityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, v := range s.records {
		if v.CVEID == cveID {
			return &v, nil
		}
	}
	return nil, nil
}

func (s *VulnerabilityStore) ListIDs(context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.sortedIDs(), nil
}

func (s *VulnerabilityStore) List(_ context.Context, filter domain.VulnerabilityFilter) ([]domain.VulnerabilityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []domain.VulnerabilityRecord{}
	for _, id := range s.sortedIDs() {
		v := s.records[id]
		if filter.ReviewedOnly && !v.IsReviewed {
			continue
		}
		if filter.MinBioRelevance != nil && (v.BioRelevanceScore == nil || *v.BioRelevanceScore < *filter.MinBioRelevance) {
			continue
		}
		out = append(out, v)
	}
	if filter.NewestFirst {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (s *VulnerabilityStore) Upsert(_ context.Context, v domain.VulnerabilityRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	for id, existing := range s.records {
		if existing.CVEID == v.CVEID {
			v.ID = id
			if existing.AIRating != nil {
				v.AIRating = existing.AIRating
			}
			s.records[id] = v
			return id, nil
		}
	}
	if v.ID == 0 {
		s.nextID++
		v.ID = s.nextID
	} else if v.ID > s.nextID {
		s.nextID = v.ID
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	s.records[v.ID] = v
	return v.ID, nil
}

func (s *VulnerabilityStore) UpdateUserRating(_ context.Context, id int64, rating float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	v, ok := s.records[id]
	if !ok {
		return domain.ErrVulnerabilityNotFound
	}
	now := time.Now().UTC()
	v.UserRating = &rating
	v.IsReviewed = true
	v.ReviewedAt = &now
	s.records[id] = v
	return nil
}

func (s *VulnerabilityStore) MarkReviewed(_ context.Context, id int64, keepCurrentRating bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	v, ok := s.records[id]
	if !ok {
		return domain.ErrVulnerabilityNotFound
	}
	now := time.Now().UTC()
	v.IsReviewed = true
	v.ReviewedAt = &now
	if !keepCurrentRating && v.UserRating == nil {
		v.UserRating = v.AIRating
	}
	s.records[id] = v
	return nil
}

func (s *VulnerabilityStore) Stats(_ context.Context, minBioRelevance float64) (domain.VulnerabilityStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st domain.VulnerabilityStats
	if s.Err != nil {
		return st, s.Err
	}
	var scoreSum float64
	var scored int
	for _, v := range s.records {
		if v.BioRelevanceScore == nil || *v.BioRelevanceScore < minBioRelevance {
			continue
		}
		st.TotalVulnerabilities++
		switch v.Severity {
		case domain.SeverityCritical:
			st.CriticalCount++
		case domain.SeverityHigh:
			st.HighCount++
		case domain.SeverityMedium:
			st.MediumCount++
		case domain.SeverityLow:
			st.LowCount++
		}
		if v.SoleSourceFlag {
			st.SoleSourceCount++
		}
		if v.CVSSScore != nil {
			scoreSum += *v.CVSSScore
			scored++
		}
	}
	if scored > 0 {
		st.AvgScore = scoreSum / float64(scored)
	}
	return st, nil
}

func (s *VulnerabilityStore) ReviewStats(context.Context) (domain.ReviewStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st domain.ReviewStats
	if s.Err != nil {
		return st, s.Err
	}
	var diffSum float64
	for _, v := range s.records {
		st.Total++
		if v.IsReviewed {
			st.Reviewed++
		}
		if v.UserRating != nil {
			st.RatingChanged++
			if v.AIRating != nil {
				diffSum += math.Abs(*v.UserRating - *v.AIRating)
			}
		}
	}
	// averaged over every record, unrated ones counting as zero
	if st.Total > 0 {
		st.AvgRatingDifference = diffSum / float64(st.Total)
		st.ReviewPercentage = float64(st.Reviewed) / float64(st.Total) * 100
	}
	return st, nil
}

func (s *VulnerabilityStore) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), s.Err
}

func (s *VulnerabilityStore) Close() error { return nil }

func (s *VulnerabilityStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CommentStore is a slice-backed ports.CommentRepository.
type CommentStore struct {
	mu       sync.Mutex
	comments []domain.Comment
	nextID   uint
	Err      error
}

func NewCommentStore() *CommentStore {
	return &CommentStore{}
}

func (s *CommentStore) SaveComment(_ context.Context, c *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.nextID++
	c.ID = s.nextID
	s.comments = append(s.comments, *c)
	return nil
}

func (s *CommentStore) ListComments(_ context.Context, filter domain.CommentFilter) ([]domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []domain.Comment{}
	for i := len(s.comments) - 1; i >= 0; i-- {
		c := s.comments[i]
		if filter.VulnerabilityID != nil && (c.VulnerabilityID == nil || *c.VulnerabilityID != *filter.VulnerabilityID) {
			continue
		}
		if filter.CommentType != "" && c.CommentType != filter.CommentType {
			continue
		}
		out = append(out, c)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *CommentStore) DeleteComment(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i, c := range s.comments {
		if c.ID == id {
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			return nil
		}
	}
	return domain.ErrCommentNotFound
}

// All returns every stored comment in insertion order.
func (s *CommentStore) All() []domain.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Comment(nil), s.comments...)
}

// Seed returns a small catalogue covering both verification outcomes.
func Seed() []domain.VulnerabilityRecord {
	return []domain.VulnerabilityRecord{
		{
			CVEID: "CVE-2024-1234", Title: "Critical SQL Injection in Lab Management Software",
			Severity: domain.SeverityCritical, CVSSScore: domain.Float(9.8), BioRelevanceScore: domain.Float(0.92),
			AIRating: domain.Float(9.5),
		},
		{
			CVEID: "CVE-2024-1235", Title: "Remote Code Execution in DNA Analysis Tools",
			Severity: domain.SeverityCritical, CVSSScore: domain.Float(9.5), BioRelevanceScore: domain.Float(0.98),
			SoleSourceFlag: true, AIRating: domain.Float(5.0),
		},
		{
			CVEID: "CVE-2024-1237", Title: "Cross-Site Scripting in Patient Data Portal",
			Severity: domain.SeverityMedium, CVSSScore: domain.Float(6.5), BioRelevanceScore: domain.Float(0.65),
			AIRating: domain.Float(6.8),
		},
	}
}
