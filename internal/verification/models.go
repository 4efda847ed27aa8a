package verification

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// The seven validation names, in reporting order.
const (
	CheckAuthentic     = "is_authentic"
	CheckNotExpired    = "is_not_expired"
	CheckFromCountry   = "is_from_country"
	CheckIDMatches     = "id_matches"
	CheckAddressMatch  = "address_matches"
	CheckFacesMatch    = "faces_match"
	CheckParsedCleanly = "no_parsing_errors"
)

// AIValidation is the embedded scoring payload stored alongside each
// verification request.
type AIValidation struct {
	Timestamp    time.Time         `json:"timestamp"`
	Validations  map[string]bool   `json:"validations"`
	RawResponses map[string]string `json:"raw_responses"`
	Confidence   float64           `json:"confidence"`
	Threshold    float64           `json:"threshold"`
}

func (v AIValidation) Value() (driver.Value, error) {
	return json.Marshal(v)
}

func (v *AIValidation) Scan(src interface{}) error {
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	case nil:
		return nil
	}
	return fmt.Errorf("cannot scan %T into AIValidation", src)
}

// VerificationRequest is one KYC attempt. Created once per submission;
// mutated afterwards only by the administrative review transition.
type VerificationRequest struct {
	ID                   uuid.UUID    `json:"id" db:"id"`
	UserID               uuid.UUID    `json:"user_id" db:"user_id"`
	FullName             string       `json:"full_name" db:"full_name"`
	Country              string       `json:"country" db:"country"`
	DocumentID           string       `json:"document_id" db:"document_id"`
	Address              string       `json:"address" db:"address"`
	Phone                string       `json:"phone" db:"phone"`
	IdentityDocID        uuid.UUID    `json:"identity_doc_id" db:"identity_doc_id"`
	AddressProofID       uuid.UUID    `json:"address_proof_id" db:"address_proof_id"`
	SelfieID             uuid.UUID    `json:"selfie_id" db:"selfie_id"`
	Status               Status       `json:"status" db:"status"`
	AIValidation         AIValidation `json:"ai_validation" db:"ai_validation"`
	Confidence           float64      `json:"confidence" db:"confidence"`
	RequiresManualReview bool         `json:"requires_manual_review" db:"requires_manual_review"`
	AutoApproved         bool         `json:"auto_approved" db:"auto_approved"`
	RejectionReason      *string      `json:"rejection_reason,omitempty" db:"rejection_reason"`
	AdminNotes           *string      `json:"admin_notes,omitempty" db:"admin_notes"`
	ReviewedBy           *uuid.UUID   `json:"reviewed_by,omitempty" db:"reviewed_by"`
	CreatedAt            time.Time    `json:"created_at" db:"created_at"`
	ReviewedAt           *time.Time   `json:"reviewed_at,omitempty" db:"reviewed_at"`
}
