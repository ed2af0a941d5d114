package storage

import (
	"context"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
)

func (a *SQLiteAdapter) SaveComment(ctx context.Context, c *domain.Comment) error {
	m := commentToModel(*c)
	if err := a.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	c.ID = m.ID
	c.CreatedAt = m.CreatedAt
	return nil
}

// ListComments returns comments newest first.
func (a *SQLiteAdapter) ListComments(ctx context.Context, filter domain.CommentFilter) ([]domain.Comment, error) {
	q := a.db.WithContext(ctx).Model(&CommentModel{})
	if filter.VulnerabilityID != nil {
		q = q.Where("vulnerability_id = ?", *filter.VulnerabilityID)
	}
	if filter.CommentType != "" {
		q = q.Where("comment_type = ?", string(filter.CommentType))
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var models []CommentModel
	if err := q.Order("created_at desc").Order("id desc").Find(&models).Error; err != nil {
		return nil, err
	}

	comments := make([]domain.Comment, 0, len(models))
	for _, m := range models {
		comments = append(comments, commentToDomain(m))
	}
	return comments, nil
}

func (a *SQLiteAdapter) DeleteComment(ctx context.Context, id uint) error {
	res := a.db.WithContext(ctx).Delete(&CommentModel{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}
