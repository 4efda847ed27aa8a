package documents

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateAsset(ctx context.Context, asset *DocumentAsset) error
	GetAssetByID(ctx context.Context, id uuid.UUID) (*DocumentAsset, error)
	ListAssetsByOwner(ctx context.Context, ownerID uuid.UUID) ([]DocumentAsset, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateAsset(ctx context.Context, asset *DocumentAsset) error {
	query := `
		INSERT INTO document_assets (
			id, owner_id, asset_type, s3_key, s3_bucket, mime_type, file_size
		) VALUES (
			:id, :owner_id, :asset_type, :s3_key, :s3_bucket, :mime_type, :file_size
		)`
	_, err := r.db.NamedExecContext(ctx, query, asset)
	return err
}

func (r *postgresRepository) GetAssetByID(ctx context.Context, id uuid.UUID) (*DocumentAsset, error) {
	var asset DocumentAsset
	err := r.db.GetContext(ctx, &asset, "SELECT * FROM document_assets WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &asset, err
}

func (r *postgresRepository) ListAssetsByOwner(ctx context.Context, ownerID uuid.UUID) ([]DocumentAsset, error) {
	var assets []DocumentAsset
	err := r.db.SelectContext(ctx, &assets, "SELECT * FROM document_assets WHERE owner_id = $1 ORDER BY uploaded_at DESC", ownerID)
	return assets, err
}
