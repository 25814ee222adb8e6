package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// AudienceAll: циркуляр для всех ролей.
const AudienceAll = "all"

type Circular struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	Title          string         `db:"title" json:"title"`
	Content        string         `db:"content" json:"content"`
	Category       string         `db:"category" json:"category"`
	Priority       Priority       `db:"priority" json:"priority"`
	IsActive       bool           `db:"is_active" json:"is_active"`
	PublishedAt    time.Time      `db:"published_at" json:"published_at"`
	ExpiresAt      *time.Time     `db:"expires_at" json:"expires_at,omitempty"`
	TargetAudience pq.StringArray `db:"target_audience" json:"target_audience"`
	AttachmentURL  *string        `db:"attachment_url" json:"attachment_url,omitempty"`
	PublishedBy    uuid.NullUUID  `db:"published_by" json:"published_by"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}
