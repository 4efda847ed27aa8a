package recipients

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"swiftremit/kyc-portal-backend/pkg/crypto"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, rec *Recipient) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Recipient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Recipient), args.Error(1)
}

func (m *MockRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Recipient, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]Recipient), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, rec *Recipient) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestService(repo Repository) Service {
	cipher := crypto.NewFieldCipher(testKey, zap.NewNop())
	return NewService(repo, cipher, zap.NewNop())
}

func validSave(ownerID uuid.UUID) SaveRequest {
	return SaveRequest{
		OwnerID:       ownerID,
		FullName:      "Amara Okafor",
		Country:       "NG",
		BankName:      "First Bank of Nigeria",
		AccountNumber: "3089012345",
		DocumentID:    "NG-A123456",
	}
}

func TestCreateEncryptsSensitiveFields(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo)
	ownerID := uuid.New()

	var stored *Recipient
	repo.On("Create", mock.Anything, mock.AnythingOfType("*recipients.Recipient")).
		Run(func(args mock.Arguments) {
			rec := args.Get(1).(*Recipient)
			copied := *rec
			stored = &copied
		}).Return(nil)

	rec, err := service.Create(context.Background(), validSave(ownerID))
	require.NoError(t, err)

	// The caller sees plaintext, the repository saw tokens.
	assert.Equal(t, "Amara Okafor", rec.FullName)
	assert.Equal(t, "3089012345", rec.AccountNumber)

	require.NotNil(t, stored)
	assert.NotEqual(t, "Amara Okafor", stored.FullName)
	assert.NotEqual(t, "3089012345", stored.AccountNumber)
	assert.Len(t, strings.Split(stored.FullName, ":"), 3)
	assert.Len(t, strings.Split(stored.BankName, ":"), 3)
	assert.Len(t, strings.Split(stored.AccountNumber, ":"), 3)

	// Country stays plain for querying.
	assert.Equal(t, "NG", stored.Country)
}

func TestCreateRejectsMissingFields(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo)

	req := validSave(uuid.New())
	req.AccountNumber = ""

	_, err := service.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrMissingFields)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateFailsWithoutKey(t *testing.T) {
	repo := new(MockRepository)
	cipher := crypto.NewFieldCipher("", zap.NewNop())
	service := NewService(repo, cipher, zap.NewNop())

	_, err := service.Create(context.Background(), validSave(uuid.New()))
	assert.ErrorIs(t, err, crypto.ErrKeyNotConfigured)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetDecryptsStoredTokens(t *testing.T) {
	repo := new(MockRepository)
	cipher := crypto.NewFieldCipher(testKey, zap.NewNop())
	service := NewService(repo, cipher, zap.NewNop())
	ownerID := uuid.New()
	id := uuid.New()

	name, err := cipher.Encrypt("Amara Okafor")
	require.NoError(t, err)
	acct, err := cipher.Encrypt("3089012345")
	require.NoError(t, err)

	repo.On("GetByID", mock.Anything, id).Return(&Recipient{
		ID: id, OwnerID: ownerID, FullName: name, AccountNumber: acct, Country: "NG",
	}, nil)

	rec, err := service.Get(context.Background(), ownerID, id)
	require.NoError(t, err)
	assert.Equal(t, "Amara Okafor", rec.FullName)
	assert.Equal(t, "3089012345", rec.AccountNumber)
}

func TestGetDecryptsLegacyBase64Rows(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo)
	ownerID := uuid.New()
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(&Recipient{
		ID:            id,
		OwnerID:       ownerID,
		FullName:      base64.StdEncoding.EncodeToString([]byte("Amara Okafor")),
		AccountNumber: base64.StdEncoding.EncodeToString([]byte("3089012345")),
	}, nil)

	rec, err := service.Get(context.Background(), ownerID, id)
	require.NoError(t, err)
	assert.Equal(t, "Amara Okafor", rec.FullName)
	assert.Equal(t, "3089012345", rec.AccountNumber)
}

func TestGetEnforcesOwnership(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo)
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(&Recipient{ID: id, OwnerID: uuid.New()}, nil)

	_, err := service.Get(context.Background(), uuid.New(), id)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetNotFound(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo)
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(nil, nil)

	_, err := service.Get(context.Background(), uuid.New(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteEnforcesOwnership(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo)
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(&Recipient{ID: id, OwnerID: uuid.New()}, nil)

	err := service.Delete(context.Background(), uuid.New(), id)
	assert.ErrorIs(t, err, ErrForbidden)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUpdateReencryptsFields(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo)
	ownerID := uuid.New()
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(&Recipient{ID: id, OwnerID: ownerID}, nil)

	var stored *Recipient
	repo.On("Update", mock.Anything, mock.AnythingOfType("*recipients.Recipient")).
		Run(func(args mock.Arguments) {
			rec := args.Get(1).(*Recipient)
			copied := *rec
			stored = &copied
		}).Return(nil)

	req := validSave(ownerID)
	req.AccountNumber = "9911223344"

	rec, err := service.Update(context.Background(), id, req)
	require.NoError(t, err)
	assert.Equal(t, "9911223344", rec.AccountNumber)

	require.NotNil(t, stored)
	assert.NotEqual(t, "9911223344", stored.AccountNumber)
	assert.Len(t, strings.Split(stored.AccountNumber, ":"), 3)
}
