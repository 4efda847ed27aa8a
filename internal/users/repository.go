package users

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
	RefreshContact(ctx context.Context, id uuid.UUID, fullName, phone string) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var profile Profile
	err := r.db.GetContext(ctx, &profile, "SELECT * FROM profiles WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &profile, err
}

func (r *postgresRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE profiles SET is_verified = true, updated_at = NOW() WHERE id = $1", id)
	return err
}

func (r *postgresRepository) RefreshContact(ctx context.Context, id uuid.UUID, fullName, phone string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE profiles SET full_name = $2, phone = $3, updated_at = NOW() WHERE id = $1",
		id, fullName, phone)
	return err
}
