package documents

import (
	"time"

	"github.com/google/uuid"
)

type AssetType string

const (
	AssetIdentityDocument AssetType = "identity_document"
	AssetProofOfAddress   AssetType = "proof_of_address"
	AssetSelfie           AssetType = "selfie"
)

// ValidAssetType reports whether t is one of the three KYC asset kinds.
func ValidAssetType(t AssetType) bool {
	switch t {
	case AssetIdentityDocument, AssetProofOfAddress, AssetSelfie:
		return true
	}
	return false
}

// DocumentAsset is one uploaded KYC document stored in S3.
type DocumentAsset struct {
	ID         uuid.UUID `json:"id" db:"id"`
	OwnerID    uuid.UUID `json:"owner_id" db:"owner_id"`
	AssetType  AssetType `json:"asset_type" db:"asset_type"`
	S3Key      string    `json:"s3_key" db:"s3_key"`
	S3Bucket   string    `json:"s3_bucket" db:"s3_bucket"`
	MimeType   string    `json:"mime_type" db:"mime_type"`
	FileSize   int64     `json:"file_size" db:"file_size"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// Content is a fetched asset ready for analysis.
type Content struct {
	Bytes    []byte
	MimeType string
}
