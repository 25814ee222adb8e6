package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Spok95/college-portal/internal/models"
)

type CircularPatch struct {
	Title          *string
	Content        *string
	Category       *string
	Priority       *models.Priority
	IsActive       *bool
	ExpiresAt      **time.Time
	TargetAudience []string
}

func (s *Store) CreateCircular(ctx context.Context, c models.Circular) (*models.Circular, error) {
	audience := c.TargetAudience
	if len(audience) == 0 {
		audience = pq.StringArray{models.AudienceAll}
	}
	priority := c.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	category := c.Category
	if category == "" {
		category = "general"
	}
	return returning[models.Circular](ctx, s, "db.CreateCircular", `
		INSERT INTO circulars (title, content, category, priority, expires_at, target_audience,
		                       attachment_url, published_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING *`,
		c.Title, c.Content, category, string(priority), c.ExpiresAt, audience,
		c.AttachmentURL, c.PublishedBy)
}

func (s *Store) GetCircular(ctx context.Context, id uuid.UUID) (*models.Circular, error) {
	return getOne[models.Circular](ctx, s, "db.GetCircular", `SELECT * FROM circulars WHERE id = $1`, id)
}

func (s *Store) UpdateCircular(ctx context.Context, id uuid.UUID, p CircularPatch) (*models.Circular, error) {
	var b setBuilder
	if p.Title != nil {
		b.add("title", *p.Title)
	}
	if p.Content != nil {
		b.add("content", *p.Content)
	}
	if p.Category != nil {
		b.add("category", *p.Category)
	}
	if p.Priority != nil {
		b.add("priority", string(*p.Priority))
	}
	if p.IsActive != nil {
		b.add("is_active", *p.IsActive)
	}
	if p.ExpiresAt != nil {
		b.add("expires_at", *p.ExpiresAt)
	}
	if p.TargetAudience != nil {
		b.add("target_audience", pq.StringArray(p.TargetAudience))
	}
	if b.empty() {
		c, err := s.GetCircular(ctx, id)
		return ensureFound(c, err, "db.UpdateCircular", "circular", id)
	}
	q, args := b.query("circulars", id)
	return returning[models.Circular](ctx, s, "db.UpdateCircular", q, args...)
}

// ExpireCirculars снимает с публикации циркуляры с истёкшим expires_at.
func (s *Store) ExpireCirculars(ctx context.Context, now time.Time) (int64, error) {
	return s.exec(ctx, "db.ExpireCirculars", `
		UPDATE circulars SET is_active = FALSE, updated_at = now()
		WHERE is_active AND expires_at IS NOT NULL AND expires_at < $1`, now)
}

// ActiveCirculars: активные для аудитории (или 'all'), новые сверху.
// Пустая audience: без фильтра (админ).
func (s *Store) ActiveCirculars(ctx context.Context, audience string, limit int) ([]models.Circular, error) {
	const op = "db.ActiveCirculars"
	if audience == "" {
		return selectAll[models.Circular](ctx, s, op, `
			SELECT * FROM circulars WHERE is_active
			ORDER BY published_at DESC LIMIT $1`, limit)
	}
	return selectAll[models.Circular](ctx, s, op, `
		SELECT * FROM circulars
		WHERE is_active AND ($1 = ANY(target_audience) OR 'all' = ANY(target_audience))
		ORDER BY published_at DESC LIMIT $2`, audience, limit)
}
