package portal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Spok95/college-portal/internal/access"
	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/db"
	"github.com/Spok95/college-portal/internal/models"
)

type NewCircular struct {
	Title          string          `json:"title" validate:"notblank,max=200"`
	Content        string          `json:"content" validate:"notblank"`
	Category       string          `json:"category" validate:"omitempty,max=64"`
	Priority       models.Priority `json:"priority" validate:"omitempty,oneof=normal high urgent"`
	ExpiresAt      *time.Time      `json:"expires_at"`
	TargetAudience []string        `json:"target_audience" validate:"dive,oneof=all admin faculty student"`
	AttachmentURL  *string         `json:"attachment_url" validate:"omitempty,url"`
}

func (s *Service) PublishCircular(ctx context.Context, sess models.Session, in NewCircular) (*models.Circular, error) {
	const op = "portal.PublishCircular"
	if err := access.Require(sess, access.ManageCirculars); err != nil {
		return nil, err
	}
	if err := check(op, in); err != nil {
		return nil, err
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()) {
		return nil, apperr.Validation(op, "expires_at must be in the future")
	}
	c := models.Circular{
		Title:          in.Title,
		Content:        in.Content,
		Category:       in.Category,
		Priority:       in.Priority,
		ExpiresAt:      in.ExpiresAt,
		TargetAudience: pq.StringArray(in.TargetAudience),
		AttachmentURL:  in.AttachmentURL,
	}
	// админ из ADMIN_IDS может не иметь профиля
	if sess.ProfileID != uuid.Nil {
		c.PublishedBy = uuid.NullUUID{UUID: sess.ProfileID, Valid: true}
	}
	return s.store.CreateCircular(ctx, c)
}

// Circulars: активные для роли сессии, новые сверху.
func (s *Service) Circulars(ctx context.Context, sess models.Session, limit int) ([]models.Circular, error) {
	if err := access.Require(sess, access.ViewCirculars); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.opts.RowLimit {
		limit = s.opts.RowLimit
	}
	return s.store.ActiveCirculars(ctx, access.Audience(sess.Role), limit)
}

// CircularUpdate: переданные поля заменяются, остальные остаются как были.
type CircularUpdate struct {
	Title          *string          `json:"title" validate:"omitempty,notblank,max=200"`
	Content        *string          `json:"content" validate:"omitempty,notblank"`
	Category       *string          `json:"category" validate:"omitempty,max=64"`
	Priority       *models.Priority `json:"priority" validate:"omitempty,oneof=normal high urgent"`
	IsActive       *bool            `json:"is_active"`
	ExpiresAt      *time.Time       `json:"expires_at"`
	TargetAudience []string         `json:"target_audience" validate:"omitempty,min=1,dive,oneof=all admin faculty student"`
}

func (s *Service) UpdateCircular(ctx context.Context, sess models.Session, id uuid.UUID, in CircularUpdate) (*models.Circular, error) {
	const op = "portal.UpdateCircular"
	if err := access.Require(sess, access.ManageCirculars); err != nil {
		return nil, err
	}
	if err := check(op, in); err != nil {
		return nil, err
	}
	p := db.CircularPatch{
		Title:          in.Title,
		Content:        in.Content,
		Category:       in.Category,
		Priority:       in.Priority,
		IsActive:       in.IsActive,
		TargetAudience: in.TargetAudience,
	}
	if in.ExpiresAt != nil {
		if !in.ExpiresAt.After(s.now()) {
			return nil, apperr.Validation(op, "expires_at must be in the future")
		}
		p.ExpiresAt = &in.ExpiresAt
	}
	return s.store.UpdateCircular(ctx, id, p)
}
