package domain

import (
	"errors"
	"strings"
	"time"
)

// CommentType classifies an activity entry.
type CommentType string

// Activity entry types
const (
	CommentGeneral       CommentType = "general"
	CommentVulnerability CommentType = "vulnerability"
	CommentAction        CommentType = "action"
	CommentUpdate        CommentType = "update"
)

// Well-known actions recorded by the system itself.
const (
	ActionVerified      = "verified"
	ActionReviewed      = "reviewed"
	ActionRatingChanged = "rating-changed"
)

// SystemVerifierAuthor attributes entries written by rating verification.
const SystemVerifierAuthor = "AI Verification System"

// SystemReviewAuthor attributes entries written by the review workflow.
const SystemReviewAuthor = "Review Workflow"

var ErrInvalidCommentType = errors.New("invalid comment type")

// Comment is an append-only activity/audit entry, optionally attached to a
// vulnerability.
type Comment struct {
	ID              uint        `json:"id"`
	Content         string      `json:"content"`
	Author          string      `json:"author"`
	VulnerabilityID *int64      `json:"vulnerabilityId"`
	CommentType     CommentType `json:"commentType"`
	Action          string      `json:"action"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// Activity is a comment joined with the vulnerability it refers to.
type Activity struct {
	Comment
	CVEID              *string `json:"cveId"`
	VulnerabilityTitle *string `json:"vulnerabilityTitle"`
}

// CommentFilter narrows comment listings.
type CommentFilter struct {
	VulnerabilityID *int64
	CommentType     CommentType
	Limit           int
}

// NewComment is the designated factory for comments.
// Content and author are required; an empty type defaults to general and a
// non-positive vulnerability id is treated as a general comment.
func NewComment(content, author string, vulnerabilityID *int64, commentType CommentType, action string) (*Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrContentRequired
	}
	if strings.TrimSpace(author) == "" {
		return nil, ErrAuthorRequired
	}

	if commentType == "" {
		commentType = CommentGeneral
	}
	if !isValidCommentType(commentType) {
		return nil, ErrInvalidCommentType
	}

	if vulnerabilityID != nil && *vulnerabilityID <= 0 {
		vulnerabilityID = nil
	}

	return &Comment{
		Content:         content,
		Author:          author,
		VulnerabilityID: vulnerabilityID,
		CommentType:     commentType,
		Action:          action,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// NewVerificationComment builds the audit entry for a rating discrepancy.
func NewVerificationComment(result RatingVerificationResult) *Comment {
	return &Comment{
		Content:         "AI Rating Verification: " + result.Message,
		Author:          SystemVerifierAuthor,
		VulnerabilityID: result.VulnerabilityID,
		CommentType:     CommentAction,
		Action:          ActionVerified,
		CreatedAt:       time.Now().UTC(),
	}
}

func isValidCommentType(t CommentType) bool {
	switch t {
	case CommentGeneral, CommentVulnerability, CommentAction, CommentUpdate:
		return true
	}
	return false
}
