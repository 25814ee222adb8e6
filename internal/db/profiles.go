package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/Spok95/college-portal/internal/apperr"
	"github.com/Spok95/college-portal/internal/models"
)

// CreateProfile: профиль + назначение роли. Пароль хранится отдельно (SetCredentials).
func (s *Store) CreateProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	const op = "db.CreateProfile"
	out, err := returning[models.Profile](ctx, s, op, `
		INSERT INTO profiles (full_name, email, phone, address, role, telegram_id)
		VALUES ($1, LOWER($2), $3, $4, $5, $6)
		RETURNING *`,
		p.FullName, p.Email, p.Phone, p.Address, string(p.Role), p.TelegramID)
	if err != nil {
		return nil, err
	}
	if err := s.AssignRole(ctx, out.ID, out.Role); err != nil {
		return nil, err
	}
	return out, nil
}

// AssignRole: идемпотентно.
func (s *Store) AssignRole(ctx context.Context, profileID uuid.UUID, role models.Role) error {
	const op = "db.AssignRole"
	_, err := s.exec(ctx, op, `
		INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO NOTHING`, profileID, string(role))
	return err
}

func (s *Store) SetCredentials(ctx context.Context, profileID uuid.UUID, passwordHash string) error {
	const op = "db.SetCredentials"
	_, err := s.exec(ctx, op, `
		INSERT INTO credentials (profile_id, password_hash) VALUES ($1, $2)
		ON CONFLICT (profile_id) DO UPDATE SET password_hash = excluded.password_hash`,
		profileID, passwordHash)
	return err
}

func (s *Store) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return getOne[models.Profile](ctx, s, "db.GetProfile", `SELECT * FROM profiles WHERE id = $1`, id)
}

func (s *Store) GetProfileByTelegramID(ctx context.Context, telegramID int64) (*models.Profile, error) {
	return getOne[models.Profile](ctx, s, "db.GetProfileByTelegramID",
		`SELECT * FROM profiles WHERE telegram_id = $1`, telegramID)
}

// LinkTelegram привязывает чат к профилю.
func (s *Store) LinkTelegram(ctx context.Context, profileID uuid.UUID, telegramID int64) error {
	return s.execOne(ctx, "db.LinkTelegram",
		`UPDATE profiles SET telegram_id = $1, updated_at = now() WHERE id = $2`, telegramID, profileID)
}

func (s *Store) ProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error) {
	return selectByIDs[models.Profile](ctx, s, "db.ProfilesByIDs",
		`SELECT * FROM profiles WHERE id = ANY($1::uuid[])`, ids)
}

// ensureFound для корневых выборок: nil без ошибки → NotFound.
func ensureFound[T any](v *T, err error, op, what string, id uuid.UUID) (*T, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperr.NotFound(op, "%s %s not found", what, id)
	}
	return v, nil
}
