package recipients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"swiftremit/kyc-portal-backend/pkg/crypto"
)

var (
	ErrMissingFields = errors.New("full name, country, bank name and account number are required")
	ErrNotFound      = errors.New("recipient not found")
	ErrForbidden     = errors.New("recipient belongs to another user")
)

type SaveRequest struct {
	OwnerID       uuid.UUID
	FullName      string
	Country       string
	BankName      string
	AccountNumber string
	DocumentID    string
}

type Service interface {
	Create(ctx context.Context, req SaveRequest) (*Recipient, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*Recipient, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]Recipient, error)
	Update(ctx context.Context, id uuid.UUID, req SaveRequest) (*Recipient, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type recipientService struct {
	repo   Repository
	cipher *crypto.FieldCipher
	logger *zap.Logger
}

func NewService(repo Repository, cipher *crypto.FieldCipher, logger *zap.Logger) Service {
	return &recipientService{repo: repo, cipher: cipher, logger: logger}
}

func (s *recipientService) Create(ctx context.Context, req SaveRequest) (*Recipient, error) {
	if err := validateSave(req); err != nil {
		return nil, err
	}

	rec := &Recipient{
		ID:        uuid.New(),
		OwnerID:   req.OwnerID,
		Country:   req.Country,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.sealInto(rec, req); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist recipient: %w", err)
	}

	s.openInPlace(rec)
	return rec, nil
}

func (s *recipientService) Get(ctx context.Context, ownerID, id uuid.UUID) (*Recipient, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	if rec.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	s.openInPlace(rec)
	return rec, nil
}

func (s *recipientService) List(ctx context.Context, ownerID uuid.UUID) ([]Recipient, error) {
	recs, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		s.openInPlace(&recs[i])
	}
	return recs, nil
}

func (s *recipientService) Update(ctx context.Context, id uuid.UUID, req SaveRequest) (*Recipient, error) {
	if err := validateSave(req); err != nil {
		return nil, err
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	if rec.OwnerID != req.OwnerID {
		return nil, ErrForbidden
	}

	rec.Country = req.Country
	rec.UpdatedAt = time.Now()
	if err := s.sealInto(rec, req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update recipient: %w", err)
	}

	s.openInPlace(rec)
	return rec, nil
}

func (s *recipientService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNotFound
	}
	if rec.OwnerID != ownerID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

// sealInto encrypts the sensitive request fields onto rec. A misconfigured key
// fails the whole write; we never persist plaintext by accident.
func (s *recipientService) sealInto(rec *Recipient, req SaveRequest) error {
	var err error
	if rec.FullName, err = s.cipher.Encrypt(req.FullName); err != nil {
		return fmt.Errorf("encrypt recipient: %w", err)
	}
	if rec.BankName, err = s.cipher.Encrypt(req.BankName); err != nil {
		return fmt.Errorf("encrypt recipient: %w", err)
	}
	if rec.AccountNumber, err = s.cipher.Encrypt(req.AccountNumber); err != nil {
		return fmt.Errorf("encrypt recipient: %w", err)
	}
	if rec.DocumentID, err = s.cipher.Encrypt(req.DocumentID); err != nil {
		return fmt.Errorf("encrypt recipient: %w", err)
	}
	return nil
}

// openInPlace decrypts the stored tokens for the caller. Rows that fail to
// decrypt keep their ciphertext so a bad row degrades to garbage output
// instead of hiding the whole recipient.
func (s *recipientService) openInPlace(rec *Recipient) {
	if name, err := s.cipher.Decrypt(rec.FullName); err == nil {
		rec.FullName = name
	} else {
		s.logger.Error("failed to decrypt recipient field", zap.String("recipient_id", rec.ID.String()), zap.Error(err))
	}
	if bank, err := s.cipher.Decrypt(rec.BankName); err == nil {
		rec.BankName = bank
	} else {
		s.logger.Error("failed to decrypt recipient field", zap.String("recipient_id", rec.ID.String()), zap.Error(err))
	}
	if acct, err := s.cipher.Decrypt(rec.AccountNumber); err == nil {
		rec.AccountNumber = acct
	} else {
		s.logger.Error("failed to decrypt recipient field", zap.String("recipient_id", rec.ID.String()), zap.Error(err))
	}
	if doc, err := s.cipher.Decrypt(rec.DocumentID); err == nil {
		rec.DocumentID = doc
	} else {
		s.logger.Error("failed to decrypt recipient field", zap.String("recipient_id", rec.ID.String()), zap.Error(err))
	}
}

func validateSave(req SaveRequest) error {
	if req.OwnerID == uuid.Nil || req.FullName == "" || req.Country == "" ||
		req.BankName == "" || req.AccountNumber == "" {
		return ErrMissingFields
	}
	return nil
}
