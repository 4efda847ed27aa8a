package documents

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateAsset(ctx context.Context, asset *DocumentAsset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockRepository) GetAssetByID(ctx context.Context, id uuid.UUID) (*DocumentAsset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DocumentAsset), args.Error(1)
}

func (m *MockRepository) ListAssetsByOwner(ctx context.Context, ownerID uuid.UUID) ([]DocumentAsset, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]DocumentAsset), args.Error(1)
}

// MockS3Client is a mock implementation of storage.S3Client
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	args := m.Called(ctx, bucket, key, body, contentType)
	return args.Error(0)
}

func (m *MockS3Client) Download(ctx context.Context, bucket, key string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.String(1), args.Error(2)
}

func (m *MockS3Client) Delete(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *MockS3Client) GetPresignedURL(ctx context.Context, bucket, key string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, expiration)
	return args.String(0), args.Error(1)
}

func TestUploadAsset(t *testing.T) {
	mockRepo := new(MockRepository)
	mockS3 := new(MockS3Client)
	service := NewService(mockRepo, mockS3, "swiftremit-kyc-docs")

	ctx := context.Background()
	ownerID := uuid.New()

	mockS3.On("Upload", ctx, "swiftremit-kyc-docs", mock.AnythingOfType("string"), mock.Anything, "image/jpeg").Return(nil)
	mockRepo.On("CreateAsset", ctx, mock.AnythingOfType("*documents.DocumentAsset")).Return(nil)

	asset, err := service.UploadAsset(ctx, UploadRequest{
		OwnerID:     ownerID,
		AssetType:   AssetSelfie,
		MimeType:    "image/jpeg",
		FileSize:    2048,
		FileContent: strings.NewReader("fake image bytes"),
	})

	require.NoError(t, err)
	assert.Equal(t, ownerID, asset.OwnerID)
	assert.Equal(t, AssetSelfie, asset.AssetType)
	assert.Contains(t, asset.S3Key, "kyc/"+ownerID.String()+"/selfie/")
	assert.Equal(t, "swiftremit-kyc-docs", asset.S3Bucket)

	mockRepo.AssertExpectations(t)
	mockS3.AssertExpectations(t)
}

func TestUploadAssetRejectsUnknownType(t *testing.T) {
	service := NewService(new(MockRepository), new(MockS3Client), "bucket")

	_, err := service.UploadAsset(context.Background(), UploadRequest{
		OwnerID:     uuid.New(),
		AssetType:   AssetType("passport_scan"),
		FileContent: strings.NewReader(""),
	})
	assert.Error(t, err)
}

func TestFetchContent(t *testing.T) {
	mockRepo := new(MockRepository)
	mockS3 := new(MockS3Client)
	service := NewService(mockRepo, mockS3, "bucket")

	ctx := context.Background()
	assetID := uuid.New()
	asset := &DocumentAsset{
		ID:       assetID,
		S3Key:    "kyc/x/selfie/y",
		S3Bucket: "bucket",
		MimeType: "image/jpeg",
	}

	mockRepo.On("GetAssetByID", ctx, assetID).Return(asset, nil)
	mockS3.On("Download", ctx, "bucket", "kyc/x/selfie/y").
		Return(io.NopCloser(strings.NewReader("image bytes")), "", nil)

	content, err := service.FetchContent(ctx, assetID)
	require.NoError(t, err)
	assert.Equal(t, []byte("image bytes"), content.Bytes)
	// Falls back to the stored mime type when S3 reports none.
	assert.Equal(t, "image/jpeg", content.MimeType)
}

func TestFetchContentMissingAsset(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, new(MockS3Client), "bucket")

	assetID := uuid.New()
	mockRepo.On("GetAssetByID", mock.Anything, assetID).Return(nil, nil)

	content, err := service.FetchContent(context.Background(), assetID)
	require.NoError(t, err)
	assert.Nil(t, content)
}
