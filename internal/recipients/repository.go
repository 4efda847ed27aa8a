package recipients

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, rec *Recipient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Recipient, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Recipient, error)
	Update(ctx context.Context, rec *Recipient) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, rec *Recipient) error {
	query := `
		INSERT INTO recipients (id, owner_id, full_name, country, bank_name, account_number, document_id, created_at, updated_at)
		VALUES (:id, :owner_id, :full_name, :country, :bank_name, :account_number, :document_id, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, rec)
	return err
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Recipient, error) {
	var rec Recipient
	err := r.db.GetContext(ctx, &rec, "SELECT * FROM recipients WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &rec, err
}

func (r *postgresRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Recipient, error) {
	recs := []Recipient{}
	err := r.db.SelectContext(ctx, &recs,
		"SELECT * FROM recipients WHERE owner_id = $1 ORDER BY created_at DESC", ownerID)
	return recs, err
}

func (r *postgresRepository) Update(ctx context.Context, rec *Recipient) error {
	query := `
		UPDATE recipients
		SET full_name = :full_name, country = :country, bank_name = :bank_name,
		    account_number = :account_number, document_id = :document_id, updated_at = :updated_at
		WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, rec)
	return err
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM recipients WHERE id = $1", id)
	return err
}
