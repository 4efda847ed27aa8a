package recipients

import (
	"time"

	"github.com/google/uuid"
)

// Recipient is a saved transfer beneficiary. The sensitive fields (full name,
// bank name, account number and national document id) are stored encrypted;
// the repository only ever sees ciphertext tokens.
type Recipient struct {
	ID            uuid.UUID `json:"id" db:"id"`
	OwnerID       uuid.UUID `json:"ownerId" db:"owner_id"`
	FullName      string    `json:"fullName" db:"full_name"`
	Country       string    `json:"country" db:"country"`
	BankName      string    `json:"bankName" db:"bank_name"`
	AccountNumber string    `json:"accountNumber" db:"account_number"`
	DocumentID    string    `json:"documentId" db:"document_id"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}
