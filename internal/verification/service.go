package verification

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"swiftremit/kyc-portal-backend/internal/ai"
	"swiftremit/kyc-portal-backend/internal/documents"
	"swiftremit/kyc-portal-backend/internal/notifications"
	"swiftremit/kyc-portal-backend/internal/users"
	"swiftremit/kyc-portal-backend/pkg/pdf"
)

var (
	ErrMissingFields = errors.New("all declared fields and document references are required")
	ErrAssetNotFound = errors.New("a referenced document could not be found")
	ErrNotFound      = errors.New("verification request not found")
	ErrNotApproved   = errors.New("verification request is not approved")
)

type SubmitRequest struct {
	UserID         uuid.UUID
	FullName       string
	Country        string
	DocumentID     string
	Address        string
	Phone          string
	IdentityDocID  uuid.UUID
	AddressProofID uuid.UUID
	SelfieID       uuid.UUID
}

type SubmitResult struct {
	Status               Status  `json:"status"`
	Confidence           float64 `json:"aiConfidence"`
	RequiresManualReview bool    `json:"requiresManualReview"`
	Message              string  `json:"message"`
}

type ReviewRequest struct {
	VerificationID uuid.UUID
	ReviewerID     uuid.UUID
	Approve        bool
	Reason         string
	Notes          string
}

// Notifier is the slice of the outbound dispatcher this service needs.
type Notifier interface {
	Enqueue(msg notifications.Message)
}

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error)
	Review(ctx context.Context, req ReviewRequest) (string, error)
	LatestStatus(ctx context.Context, userID uuid.UUID) (*VerificationRequest, error)
	Certificate(ctx context.Context, id uuid.UUID) ([]byte, error)
	SendReviewReminders(ctx context.Context) error
}

type verificationService struct {
	repo          Repository
	docs          documents.Service
	analyzer      ai.Analyzer
	profiles      users.Repository
	notifier      Notifier
	logger        *zap.Logger
	adminEmail    string
	reminderAfter time.Duration
}

func NewService(
	repo Repository,
	docs documents.Service,
	analyzer ai.Analyzer,
	profiles users.Repository,
	notifier Notifier,
	logger *zap.Logger,
	adminEmail string,
	reminderAfter time.Duration,
) Service {
	return &verificationService{
		repo:          repo,
		docs:          docs,
		analyzer:      analyzer,
		profiles:      profiles,
		notifier:      notifier,
		logger:        logger,
		adminEmail:    adminEmail,
		reminderAfter: reminderAfter,
	}
}

// Submit runs the full scoring workflow: fetch the three assets, fan out the
// AI calls, combine the seven checks and persist the decision.
func (s *verificationService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	idDoc, err := s.fetchAsset(ctx, req.IdentityDocID)
	if err != nil {
		return nil, err
	}
	addressProof, err := s.fetchAsset(ctx, req.AddressProofID)
	if err != nil {
		return nil, err
	}
	selfie, err := s.fetchAsset(ctx, req.SelfieID)
	if err != nil {
		return nil, err
	}

	// Best-effort downsizing to bound AI payloads; originals pass through on
	// any optimization failure.
	idDoc = documents.Optimize(idDoc)
	addressProof = documents.Optimize(addressProof)
	selfie = documents.Optimize(selfie)

	var (
		docRes  ai.DocumentResult
		addrRes ai.AddressResult
		faceRes ai.FaceResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docRes, err = s.analyzer.AnalyzeDocument(gctx, asAsset(idDoc), req.Country)
		return err
	})
	g.Go(func() error {
		var err error
		addrRes, err = s.analyzer.AnalyzeAddressProof(gctx, asAsset(addressProof), req.Address)
		return err
	})
	g.Go(func() error {
		var err error
		faceRes, err = s.analyzer.CompareFaces(gctx, asAsset(selfie), asAsset(idDoc))
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, ai.ErrUnreadableImage) {
			return nil, ai.ErrUnreadableImage
		}
		return nil, fmt.Errorf("document analysis failed: %w", err)
	}

	validations := buildValidations(docRes, addrRes, faceRes, req.DocumentID)
	payload, autoApproved := scoreOutcome(validations, map[string]string{
		"identity_document": docRes.Raw,
		"proof_of_address":  addrRes.Raw,
		"face_match":        faceRes.Raw,
	})

	status := StatusPending
	if autoApproved {
		status = StatusApproved
	}

	record := &VerificationRequest{
		ID:                   uuid.New(),
		UserID:               req.UserID,
		FullName:             req.FullName,
		Country:              req.Country,
		DocumentID:           req.DocumentID,
		Address:              req.Address,
		Phone:                req.Phone,
		IdentityDocID:        req.IdentityDocID,
		AddressProofID:       req.AddressProofID,
		SelfieID:             req.SelfieID,
		Status:               status,
		AIValidation:         payload,
		Confidence:           payload.Confidence,
		RequiresManualReview: !autoApproved,
		AutoApproved:         autoApproved,
		CreatedAt:            time.Now(),
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("persist verification: %w", err)
	}

	// Profile side effects are applied on a best-effort basis; the
	// verification row is already the source of truth.
	if autoApproved {
		if err := s.profiles.MarkVerified(ctx, req.UserID); err != nil {
			s.logger.Error("failed to mark profile verified", zap.String("user_id", req.UserID.String()), zap.Error(err))
		}
	}
	if err := s.profiles.RefreshContact(ctx, req.UserID, req.FullName, req.Phone); err != nil {
		s.logger.Error("failed to refresh profile contact", zap.String("user_id", req.UserID.String()), zap.Error(err))
	}

	s.notifyOutcome(ctx, record)

	message := "Your verification requires manual review. We'll email you within one business day."
	if autoApproved {
		message = "Your identity was verified automatically."
	}

	return &SubmitResult{
		Status:               status,
		Confidence:           payload.Confidence,
		RequiresManualReview: !autoApproved,
		Message:              message,
	}, nil
}

// Review applies the administrative approve/reject transition. When the full
// update fails (older deployments lack the review-metadata columns) it falls
// back to a status-only update and returns a non-fatal warning.
func (s *verificationService) Review(ctx context.Context, req ReviewRequest) (string, error) {
	record, err := s.repo.GetByID(ctx, req.VerificationID)
	if err != nil {
		return "", fmt.Errorf("load verification: %w", err)
	}
	if record == nil {
		return "", ErrNotFound
	}

	now := time.Now()
	if req.Approve {
		record.Status = StatusApproved
	} else {
		record.Status = StatusRejected
		if req.Reason != "" {
			record.RejectionReason = &req.Reason
		}
	}
	if req.Notes != "" {
		record.AdminNotes = &req.Notes
	}
	record.ReviewedBy = &req.ReviewerID
	record.ReviewedAt = &now

	warning := ""
	if err := s.repo.UpdateReview(ctx, record); err != nil {
		s.logger.Warn("full review update failed, retrying status only", zap.Error(err))
		if err := s.repo.UpdateStatus(ctx, record.ID, record.Status); err != nil {
			return "", fmt.Errorf("update verification status: %w", err)
		}
		warning = "review metadata was not persisted; status updated only"
	}

	if req.Approve {
		if err := s.profiles.MarkVerified(ctx, record.UserID); err != nil {
			s.logger.Error("failed to mark profile verified", zap.String("user_id", record.UserID.String()), zap.Error(err))
		}
	}

	s.notifyReview(ctx, record, req)

	return warning, nil
}

func (s *verificationService) LatestStatus(ctx context.Context, userID uuid.UUID) (*VerificationRequest, error) {
	return s.repo.GetLatestByUser(ctx, userID)
}

func (s *verificationService) Certificate(ctx context.Context, id uuid.UUID) ([]byte, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotFound
	}
	if record.Status != StatusApproved {
		return nil, ErrNotApproved
	}

	verifiedAt := record.CreatedAt
	if record.ReviewedAt != nil {
		verifiedAt = *record.ReviewedAt
	}

	return pdf.RenderCertificate(pdf.CertificateData{
		VerificationID: record.ID.String(),
		FullName:       record.FullName,
		Country:        record.Country,
		VerifiedAt:     verifiedAt,
	})
}

// SendReviewReminders nudges the compliance inbox about requests that have
// sat in manual review past the configured age.
func (s *verificationService) SendReviewReminders(ctx context.Context) error {
	if s.adminEmail == "" {
		return nil
	}

	cutoff := time.Now().Add(-s.reminderAfter)
	stale, err := s.repo.ListPendingReviewOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list stale verifications: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	s.notifier.Enqueue(notifications.Message{
		To:   s.adminEmail,
		Kind: notifications.KindReviewNudge,
		Data: map[string]string{
			"count": strconv.Itoa(len(stale)),
			"hours": strconv.Itoa(int(s.reminderAfter.Hours())),
		},
	})
	return nil
}

func (s *verificationService) fetchAsset(ctx context.Context, id uuid.UUID) (*documents.Content, error) {
	content, err := s.docs.FetchContent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch document %s: %w", id, err)
	}
	if content == nil {
		return nil, ErrAssetNotFound
	}
	return content, nil
}

func (s *verificationService) notifyOutcome(ctx context.Context, record *VerificationRequest) {
	profile, err := s.profiles.GetByID(ctx, record.UserID)
	if err != nil || profile == nil {
		s.logger.Warn("skipping outcome notification, profile unavailable",
			zap.String("user_id", record.UserID.String()), zap.Error(err))
		return
	}

	kind := notifications.KindManualReview
	if record.AutoApproved {
		kind = notifications.KindAutoApproved
	}
	s.notifier.Enqueue(notifications.Message{
		To:    profile.Email,
		Phone: record.Phone,
		Kind:  kind,
		Data:  map[string]string{"name": record.FullName},
	})
}

func (s *verificationService) notifyReview(ctx context.Context, record *VerificationRequest, req ReviewRequest) {
	profile, err := s.profiles.GetByID(ctx, record.UserID)
	if err != nil || profile == nil {
		s.logger.Warn("skipping review notification, profile unavailable",
			zap.String("user_id", record.UserID.String()), zap.Error(err))
		return
	}

	msg := notifications.Message{
		To:    profile.Email,
		Phone: record.Phone,
		Data:  map[string]string{"name": record.FullName},
	}
	if req.Approve {
		msg.Kind = notifications.KindApproved
	} else {
		msg.Kind = notifications.KindRejected
		msg.Data["reason"] = req.Reason
	}
	s.notifier.Enqueue(msg)
}

func validateSubmit(req SubmitRequest) error {
	if req.UserID == uuid.Nil ||
		req.FullName == "" || req.Country == "" || req.DocumentID == "" ||
		req.Address == "" || req.Phone == "" ||
		req.IdentityDocID == uuid.Nil || req.AddressProofID == uuid.Nil || req.SelfieID == uuid.Nil {
		return ErrMissingFields
	}
	return nil
}

func asAsset(c *documents.Content) ai.Asset {
	return ai.Asset{Bytes: c.Bytes, MimeType: c.MimeType}
}
