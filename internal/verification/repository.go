package verification

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, req *VerificationRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*VerificationRequest, error)
	GetLatestByUser(ctx context.Context, userID uuid.UUID) (*VerificationRequest, error)
	UpdateReview(ctx context.Context, req *VerificationRequest) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	ListPendingReviewOlderThan(ctx context.Context, cutoff time.Time) ([]VerificationRequest, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, req *VerificationRequest) error {
	query := `
		INSERT INTO verification_requests (
			id, user_id, full_name, country, document_id, address, phone,
			identity_doc_id, address_proof_id, selfie_id, status, ai_validation,
			confidence, requires_manual_review, auto_approved
		) VALUES (
			:id, :user_id, :full_name, :country, :document_id, :address, :phone,
			:identity_doc_id, :address_proof_id, :selfie_id, :status, :ai_validation,
			:confidence, :requires_manual_review, :auto_approved
		)`
	_, err := r.db.NamedExecContext(ctx, query, req)
	return err
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*VerificationRequest, error) {
	var req VerificationRequest
	err := r.db.GetContext(ctx, &req, "SELECT * FROM verification_requests WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &req, err
}

func (r *postgresRepository) GetLatestByUser(ctx context.Context, userID uuid.UUID) (*VerificationRequest, error) {
	var req VerificationRequest
	err := r.db.GetContext(ctx, &req,
		"SELECT * FROM verification_requests WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1", userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &req, err
}

// UpdateReview writes the full review outcome including the optional
// metadata columns. Deployments that have not run the latest migration lack
// those columns; callers fall back to UpdateStatus when this fails.
func (r *postgresRepository) UpdateReview(ctx context.Context, req *VerificationRequest) error {
	query := `
		UPDATE verification_requests SET
			status = :status,
			rejection_reason = :rejection_reason,
			admin_notes = :admin_notes,
			reviewed_by = :reviewed_by,
			reviewed_at = :reviewed_at
		WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, req)
	return err
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE verification_requests SET status = $2 WHERE id = $1", id, status)
	return err
}

func (r *postgresRepository) ListPendingReviewOlderThan(ctx context.Context, cutoff time.Time) ([]VerificationRequest, error) {
	var reqs []VerificationRequest
	err := r.db.SelectContext(ctx, &reqs, `
		SELECT * FROM verification_requests
		WHERE status = $1 AND requires_manual_review = true AND created_at < $2
		ORDER BY created_at ASC`, StatusPending, cutoff)
	return reqs, err
}
