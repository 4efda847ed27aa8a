package documents

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"swiftremit/kyc-portal-backend/pkg/storage"
)

type Service interface {
	UploadAsset(ctx context.Context, req UploadRequest) (*DocumentAsset, error)
	GetAsset(ctx context.Context, id uuid.UUID) (*DocumentAsset, error)
	FetchContent(ctx context.Context, id uuid.UUID) (*Content, error)
	PresignedURL(ctx context.Context, id uuid.UUID, expiration time.Duration) (string, error)
}

type UploadRequest struct {
	OwnerID     uuid.UUID
	AssetType   AssetType
	MimeType    string
	FileSize    int64
	FileContent io.Reader
}

type documentService struct {
	repo   Repository
	s3     storage.S3Client
	bucket string
}

func NewService(repo Repository, s3 storage.S3Client, bucket string) Service {
	return &documentService{
		repo:   repo,
		s3:     s3,
		bucket: bucket,
	}
}

func (s *documentService) UploadAsset(ctx context.Context, req UploadRequest) (*DocumentAsset, error) {
	if !ValidAssetType(req.AssetType) {
		return nil, fmt.Errorf("unknown asset type %q", req.AssetType)
	}

	assetID := uuid.New()
	s3Key := s.generateKey(req.OwnerID, req.AssetType, assetID)

	if err := s.s3.Upload(ctx, s.bucket, s3Key, req.FileContent, req.MimeType); err != nil {
		return nil, err
	}

	asset := &DocumentAsset{
		ID:         assetID,
		OwnerID:    req.OwnerID,
		AssetType:  req.AssetType,
		S3Key:      s3Key,
		S3Bucket:   s.bucket,
		MimeType:   req.MimeType,
		FileSize:   req.FileSize,
		UploadedAt: time.Now(),
	}

	if err := s.repo.CreateAsset(ctx, asset); err != nil {
		return nil, err
	}

	return asset, nil
}

func (s *documentService) GetAsset(ctx context.Context, id uuid.UUID) (*DocumentAsset, error) {
	return s.repo.GetAssetByID(ctx, id)
}

// FetchContent downloads the stored bytes along with their declared mime type.
func (s *documentService) FetchContent(ctx context.Context, id uuid.UUID) (*Content, error) {
	asset, err := s.repo.GetAssetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, nil
	}

	reader, contentType, err := s.s3.Download(ctx, asset.S3Bucket, asset.S3Key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read asset %s: %w", id, err)
	}

	if contentType == "" {
		contentType = asset.MimeType
	}
	return &Content{Bytes: data, MimeType: contentType}, nil
}

func (s *documentService) PresignedURL(ctx context.Context, id uuid.UUID, expiration time.Duration) (string, error) {
	asset, err := s.repo.GetAssetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if asset == nil {
		return "", fmt.Errorf("asset not found")
	}
	return s.s3.GetPresignedURL(ctx, asset.S3Bucket, asset.S3Key, expiration)
}

func (s *documentService) generateKey(ownerID uuid.UUID, assetType AssetType, assetID uuid.UUID) string {
	return fmt.Sprintf("kyc/%s/%s/%s", ownerID, assetType, assetID)
}
