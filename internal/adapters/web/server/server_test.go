package server_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/biowatch/internal/adapters/reporting"
	"github.com/lcalzada-xor/biowatch/internal/adapters/web"
	"github.com/lcalzada-xor/biowatch/internal/adapters/web/server"
	"github.com/lcalzada-xor/biowatch/internal/core/domain"
)

type mocks struct {
	configs      *web.MockConfigurationService
	verification *web.MockVerification
	reports      *web.MockReportService
	audit        *web.MockAuditService
	review       *web.MockReviewService
	vulns        *web.MockVulnerabilityService
}

// setupServer helper creates a server instance with mocks
func setupServer(t *testing.T) (http.Handler, *mocks) {
	t.Helper()
	m := &mocks{
		configs:      new(web.MockConfigurationService),
		verification: new(web.MockVerification),
		reports:      new(web.MockReportService),
		audit:        new(web.MockAuditService),
		review:       new(web.MockReviewService),
		vulns:        new(web.MockVulnerabilityService),
	}

	srv := server.NewServer(server.Options{Addr: ":0"}, server.Services{
		Configs:         m.configs,
		Verification:    m.verification,
		Reports:         m.reports,
		PDF:             reporting.NewPDFExporter(),
		Audit:           m.audit,
		Review:          m.review,
		Vulnerabilities: m.vulns,
	}, nil)

	t.Cleanup(func() {
		m.configs.AssertExpectations(t)
		m.verification.AssertExpectations(t)
		m.reports.AssertExpectations(t)
		m.audit.AssertExpectations(t)
		m.review.AssertExpectations(t)
		m.vulns.AssertExpectations(t)
	})
	return srv.Handler(), m
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestServer_GetConfiguration(t *testing.T) {
	h, m := setupServer(t)
	cfg := domain.DefaultScoringConfiguration("default")
	m.configs.On("Get", mock.Anything, "default").Return(cfg, nil)

	rec := do(t, h, http.MethodGet, "/api/ownai", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	etag := rec.Header().Get("ETag")
	assert.Equal(t, `"`+cfg.Fingerprint()+`"`, etag)

	var got domain.ScoringConfiguration
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 0.4, got.BioRelevanceWeight)
	assert.Equal(t, "default", got.UserID)

	req := httptest.NewRequest(http.MethodGet, "/api/ownai", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestServer_GetConfigurationInvalidUser(t *testing.T) {
	h, _ := setupServer(t)

	long := strings.Repeat("u", domain.MaxUserIDLength+1)
	rec := do(t, h, http.MethodGet, "/api/ownai?userId="+long, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid userId", errorBody(t, rec))
}

func TestServer_FreeFormUserID(t *testing.T) {
	h, m := setupServer(t)
	cfg := domain.DefaultScoringConfiguration("Lab A")
	m.configs.On("Get", mock.Anything, "Lab A").Return(cfg, nil)
	m.verification.On("VerifyAll", mock.Anything, "Lab A").Return(domain.Summarize(nil), nil)

	rec := do(t, h, http.MethodGet, "/api/ownai?userId=Lab%20A", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.ScoringConfiguration
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Lab A", got.UserID)

	rec = do(t, h, http.MethodPost, "/api/airatingverification/verify-all?userId=Lab%20A", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_UpdateConfiguration(t *testing.T) {
	tests := []struct {
		name           string
		payload        map[string]float64
		serviceErr     error
		expectedStatus int
		expectedError  string
	}{
		{
			name: "Valid",
			payload: map[string]float64{
				"bioRelevanceWeight": 0.5, "cvssWeight": 0.3, "humanImpactWeight": 0.2,
				"soleSourceMultiplier": 2.0, "bioRelevanceThreshold": 0.7,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Weights Do Not Sum",
			payload: map[string]float64{
				"bioRelevanceWeight": 0.5, "cvssWeight": 0.5, "humanImpactWeight": 0.5,
				"soleSourceMultiplier": 1.5, "bioRelevanceThreshold": 0.6,
			},
			serviceErr:     &domain.ValidationError{Message: "Weights must sum to 1.0"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Weights must sum to 1.0",
		},
		{
			name: "Store Fault",
			payload: map[string]float64{
				"bioRelevanceWeight": 0.4, "cvssWeight": 0.3, "humanImpactWeight": 0.3,
				"soleSourceMultiplier": 1.5, "bioRelevanceThreshold": 0.6,
			},
			serviceErr:     errors.New("disk I/O error"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "disk I/O error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := setupServer(t)

			matches := mock.MatchedBy(func(cfg domain.ScoringConfiguration) bool {
				return cfg.UserID == "alice" && cfg.BioRelevanceWeight == tt.payload["bioRelevanceWeight"]
			})
			if tt.serviceErr != nil {
				m.configs.On("Update", mock.Anything, "alice", matches).Return(nil, tt.serviceErr)
			} else {
				saved := domain.DefaultScoringConfiguration("alice")
				m.configs.On("Update", mock.Anything, "alice", matches).Return(&saved, nil)
			}

			rec := do(t, h, http.MethodPut, "/api/ownai?userId=alice", tt.payload)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorBody(t, rec))
			} else {
				assert.JSONEq(t, `{"message":"AI configuration updated successfully"}`, rec.Body.String())
			}
		})
	}
}

func TestServer_UpdateConfigurationMalformedBody(t *testing.T) {
	h, _ := setupServer(t)

	req := httptest.NewRequest(http.MethodPut, "/api/ownai", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ResetConfiguration(t *testing.T) {
	h, m := setupServer(t)
	cfg := domain.DefaultScoringConfiguration("default")
	m.configs.On("Reset", mock.Anything, "default").Return(&cfg, nil)

	rec := do(t, h, http.MethodPost, "/api/ownai/reset", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Configuration reset to defaults"}`, rec.Body.String())
}

func TestServer_VerifyRating(t *testing.T) {
	id := int64(1)
	current, recalculated, diff := 9.5, 9.56, 0.06

	tests := []struct {
		name           string
		result         domain.RatingVerificationResult
		err            error
		expectedStatus int
	}{
		{
			name: "Valid",
			result: domain.RatingVerificationResult{
				IsValid: true, CurrentRating: &current, RecalculatedRating: &recalculated,
				Difference: &diff, VulnerabilityID: &id, Message: "Rating verified: 9.5 (recalculated: 9.6)",
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not Found",
			result:         domain.RatingVerificationResult{Error: domain.VerificationErrNotFound},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Store Fault",
			err:            errors.New("database is locked"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := setupServer(t)
			m.verification.On("Verify", mock.Anything, int64(1), "default").Return(tt.result, tt.err)

			rec := do(t, h, http.MethodPost, "/api/airatingverification/verify/1", nil)
			assert.Equal(t, tt.expectedStatus, rec.Code)

			switch tt.expectedStatus {
			case http.StatusOK:
				var got domain.RatingVerificationResult
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.True(t, got.IsValid)
				assert.NotContains(t, rec.Body.String(), `"error"`)
			case http.StatusBadRequest:
				assert.Equal(t, domain.VerificationErrNotFound, errorBody(t, rec))
			}
		})
	}
}

func TestServer_VerifyRatingInvalidID(t *testing.T) {
	h, _ := setupServer(t)

	rec := do(t, h, http.MethodPost, "/api/airatingverification/verify/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_VerifyAll(t *testing.T) {
	h, m := setupServer(t)
	summary := domain.Summarize([]domain.RatingVerificationResult{
		{IsValid: true},
		{IsValid: false, Error: domain.VerificationErrMissingData},
	})
	m.verification.On("VerifyAll", mock.Anything, "bob").Return(summary, nil)

	rec := do(t, h, http.MethodPost, "/api/airatingverification/verify-all?userId=bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.EqualValues(t, 2, got["total"])
	assert.EqualValues(t, 1, got["valid"])
	assert.EqualValues(t, 1, got["discrepancies"])
	assert.Len(t, got["results"], 2)
}

func TestServer_Report(t *testing.T) {
	report := &domain.VerificationReport{
		ID:          "0f8c2e4a-aaaa-bbbb-cccc-ddddeeeeffff",
		GeneratedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		UserID:      "default",
		Summary:     domain.Summarize(nil),
	}

	tests := []struct {
		format      string
		contentType string
		prefix      string
	}{
		{"", "application/json", "{"},
		{"csv", "text/csv", "VulnerabilityID,CVE,Title"},
		{"pdf", "application/pdf", "%PDF-"},
	}

	for _, tt := range tests {
		t.Run("format="+tt.format, func(t *testing.T) {
			h, m := setupServer(t)
			m.reports.On("Generate", mock.Anything, "default").Return(report, nil)

			rec := do(t, h, http.MethodGet, "/api/airatingverification/report?format="+tt.format, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Header().Get("Content-Disposition"), "biowatch_verification_0f8c2e4a")
			assert.True(t, strings.HasPrefix(rec.Body.String(), tt.prefix))
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		h, _ := setupServer(t)
		rec := do(t, h, http.MethodGet, "/api/airatingverification/report?format=xml", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_Vulnerabilities(t *testing.T) {
	h, m := setupServer(t)
	list := []domain.VulnerabilityRecord{{ID: 2, CVEID: "CVE-2024-1235", Title: "Remote Code Execution in DNA Analysis Tools"}}

	m.vulns.On("List", mock.Anything, mock.MatchedBy(func(v *float64) bool { return v != nil && *v == 0.9 })).Return(list, nil)
	m.vulns.On("ListForUser", mock.Anything, "alice").Return(list, nil)
	m.vulns.On("List", mock.Anything, (*float64)(nil)).Return(list, nil)
	m.vulns.On("Get", mock.Anything, int64(2)).Return(&list[0], nil)
	m.vulns.On("Get", mock.Anything, int64(99)).Return(nil, nil)
	m.vulns.On("Stats", mock.Anything, "default").Return(domain.VulnerabilityStats{TotalVulnerabilities: 5}, nil)

	for _, target := range []string{"/api/vulnerabilities?minBioRelevance=0.9", "/api/vulnerabilities?userId=alice", "/api/vulnerabilities"} {
		rec := do(t, h, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "CVE-2024-1235", target)
	}

	rec := do(t, h, http.MethodGet, "/api/vulnerabilities?minBioRelevance=high", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/vulnerabilities/2", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/vulnerabilities/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Vulnerability not found", errorBody(t, rec))

	rec = do(t, h, http.MethodGet, "/api/vulnerabilities/stats", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalVulnerabilities":5`)
}

func TestServer_CreateComment(t *testing.T) {
	vulnID := int64(42)

	tests := []struct {
		name           string
		payload        map[string]interface{}
		serviceErr     error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Created",
			payload:        map[string]interface{}{"content": "Patched in lab 3", "author": "analyst"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing Content",
			payload:        map[string]interface{}{"content": "", "author": "analyst"},
			serviceErr:     domain.ErrContentRequired,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Content is required",
		},
		{
			name:           "Unknown Vulnerability",
			payload:        map[string]interface{}{"content": "hi", "author": "analyst", "vulnerabilityId": vulnID},
			serviceErr:     &domain.UnknownVulnerabilityError{ID: vulnID},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Vulnerability with ID 42 does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := setupServer(t)
			if tt.serviceErr != nil {
				m.audit.On("Record", mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			} else {
				m.audit.On("Record", mock.Anything, mock.MatchedBy(func(c domain.Comment) bool {
					return c.Content == "Patched in lab 3" && c.Author == "analyst"
				})).Return(&domain.Comment{ID: 9, Content: "Patched in lab 3", Author: "analyst", CommentType: domain.CommentGeneral}, nil)
			}

			rec := do(t, h, http.MethodPost, "/api/comments", tt.payload)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorBody(t, rec))
			} else {
				assert.Equal(t, "/api/comments/9", rec.Header().Get("Location"))
			}
		})
	}
}

func TestServer_CommentsListAndFeed(t *testing.T) {
	h, m := setupServer(t)
	vulnID := int64(3)

	m.audit.On("ListComments", mock.Anything, domain.CommentFilter{VulnerabilityID: &vulnID, CommentType: domain.CommentAction}).
		Return([]domain.Comment{{ID: 1, Content: "AI Rating Verification: drift"}}, nil)
	m.audit.On("Feed", mock.Anything, 50).Return([]domain.Activity{}, nil)
	m.audit.On("Feed", mock.Anything, 5).Return([]domain.Activity{}, nil)

	rec := do(t, h, http.MethodGet, "/api/comments?vulnerabilityId=3&commentType=action", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AI Rating Verification")

	rec = do(t, h, http.MethodGet, "/api/comments/activity", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/comments/activity?limit=5", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/comments/activity?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_DeleteComment(t *testing.T) {
	h, m := setupServer(t)
	m.audit.On("DeleteComment", mock.Anything, uint(5)).Return(nil)
	m.audit.On("DeleteComment", mock.Anything, uint(6)).Return(domain.ErrCommentNotFound)

	rec := do(t, h, http.MethodDelete, "/api/comments/5", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/comments/6", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Comment not found", errorBody(t, rec))
}

func TestServer_ReviewWorkflow(t *testing.T) {
	h, m := setupServer(t)
	m.review.On("List", mock.Anything, true).Return([]domain.VulnerabilityRecord{}, nil)
	m.review.On("SetRating", mock.Anything, int64(1), 8.5, "").Return(nil)
	m.review.On("SetRating", mock.Anything, int64(99), 8.5, "").Return(domain.ErrVulnerabilityNotFound)
	m.review.On("SetRating", mock.Anything, int64(1), 11.0, "").Return(domain.ErrInvalidRating)
	m.review.On("MarkReviewed", mock.Anything, int64(2), false, "").Return(nil)
	m.review.On("MarkReviewed", mock.Anything, int64(3), true, "dr.chen").Return(nil)
	m.review.On("Stats", mock.Anything).Return(domain.ReviewStats{Total: 5, Reviewed: 2, ReviewPercentage: 40}, nil)

	rec := do(t, h, http.MethodGet, "/api/pasttrends?reviewedOnly=true", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/pasttrends/1/rating", map[string]float64{"rating": 8.5})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/pasttrends/99/rating", map[string]float64{"rating": 8.5})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/pasttrends/1/rating", map[string]float64{"rating": 11})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/pasttrends/1/rating", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPut, "/api/pasttrends/2/review", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	rec = do(t, h, http.MethodPut, "/api/pasttrends/3/review", map[string]interface{}{"keepCurrentRating": true, "author": "dr.chen"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/pasttrends/stats", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reviewPercentage":40`)
}

func TestServer_Catalog(t *testing.T) {
	h, _ := setupServer(t)

	rec := do(t, h, http.MethodGet, "/api/datasources", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "EU-CERT")

	rec = do(t, h, http.MethodGet, "/api/datasources/2/validation", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sourceId":2`)

	rec = do(t, h, http.MethodGet, "/api/support/tickets", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "BIO-2024-001")

	rec = do(t, h, http.MethodPost, "/api/support/tickets", map[string]string{
		"issueType": "Question", "description": "urgent: sequencer offline", "submittedBy": "lab",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"priority":"Critical"`)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	h, _ := setupServer(t)

	rec := do(t, h, http.MethodDelete, "/api/ownai", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	h, _ := setupServer(t)

	rec := do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_RateLimit(t *testing.T) {
	m := new(web.MockConfigurationService)
	m.On("Reset", mock.Anything, "default").Return(&domain.ScoringConfiguration{}, nil)

	srv := server.NewServer(server.Options{RateLimitRPS: 0.001, RateLimitBurst: 2}, server.Services{Configs: m}, nil)
	h := srv.Handler()

	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, do(t, h, http.MethodPost, "/api/ownai/reset", nil).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
