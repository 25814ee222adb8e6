package jobs

import (
	"context"
	"fmt"
	"time"
)

const (
	JobMarkOverdue     = "mark_overdue_invoices"
	JobExpireCirculars = "expire_circulars"
)

type Maintainer interface {
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
	ExpireCirculars(ctx context.Context, now time.Time) (int64, error)
}

// Notify: сообщение администраторам (бот). Может быть nil.
type Notify func(ctx context.Context, text string)

type Maintenance struct {
	Store  Maintainer
	Now    func() time.Time
	Loc    *time.Location
	Notify Notify
}

// MarkOverdue переводит просроченные pending-счета в overdue; дата «сегодня»: по локальной зоне колледжа.
func (m Maintenance) MarkOverdue(ctx context.Context) error {
	now := m.now().In(m.loc())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	n, err := m.Store.MarkOverdue(ctx, today)
	if err != nil {
		return err
	}
	jobAffected.WithLabelValues(JobMarkOverdue).Add(float64(n))
	if n > 0 && m.Notify != nil {
		m.Notify(ctx, fmt.Sprintf("💳 %d fee invoice(s) became overdue on %s.", n, today.Format(time.DateOnly)))
	}
	return nil
}

func (m Maintenance) ExpireCirculars(ctx context.Context) error {
	n, err := m.Store.ExpireCirculars(ctx, m.now())
	if err != nil {
		return err
	}
	jobAffected.WithLabelValues(JobExpireCirculars).Add(float64(n))
	return nil
}

// Schedule регистрирует обе задачи в runner.
func (m Maintenance) Schedule(r *Runner, interval time.Duration) {
	r.Every(interval, JobMarkOverdue, m.MarkOverdue)
	r.Every(interval, JobExpireCirculars, m.ExpireCirculars)
}

func (m Maintenance) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m Maintenance) loc() *time.Location {
	if m.Loc != nil {
		return m.Loc
	}
	return time.UTC
}
