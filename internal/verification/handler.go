package verification

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"swiftremit/kyc-portal-backend/internal/ai"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the applicant routes on rg and the review route on
// adminRg, which is expected to carry the admin-role middleware.
func (h *Handler) RegisterRoutes(rg, adminRg *gin.RouterGroup) {
	v := rg.Group("/verifications")
	{
		v.POST("", h.Submit)
		v.GET("/status/:userId", h.Status)
		v.GET("/:id/certificate", h.Certificate)
	}

	admin := adminRg.Group("/verifications")
	{
		admin.POST("/:id/review", h.Review)
	}
}

type submitBody struct {
	FullName       string `json:"fullName"`
	Country        string `json:"country"`
	DocumentID     string `json:"documentId"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	IdentityDocID  string `json:"identityDocId"`
	AddressProofID string `json:"addressProofId"`
	SelfieID       string `json:"selfieId"`
}

func (h *Handler) Submit(c *gin.Context) {
	var body submitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user"})
		return
	}

	// Asset ids are parsed leniently; uuid.Nil falls through to the
	// missing-fields check in the service.
	identityDocID, _ := uuid.Parse(body.IdentityDocID)
	addressProofID, _ := uuid.Parse(body.AddressProofID)
	selfieID, _ := uuid.Parse(body.SelfieID)

	result, err := h.service.Submit(c.Request.Context(), SubmitRequest{
		UserID:         userID,
		FullName:       body.FullName,
		Country:        body.Country,
		DocumentID:     body.DocumentID,
		Address:        body.Address,
		Phone:          body.Phone,
		IdentityDocID:  identityDocID,
		AddressProofID: addressProofID,
		SelfieID:       selfieID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields), errors.Is(err, ErrAssetNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ai.ErrUnreadableImage):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "We couldn't read one of your documents. Please upload a clearer, well-lit photo.",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed, please try again"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

type reviewBody struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
	Notes    string `json:"notes"`
}

func (h *Handler) Review(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var body reviewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.Decision != string(StatusApproved) && body.Decision != string(StatusRejected) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision must be approved or rejected"})
		return
	}

	reviewerID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user"})
		return
	}

	warning, err := h.service.Review(c.Request.Context(), ReviewRequest{
		VerificationID: id,
		ReviewerID:     reviewerID,
		Approve:        body.Decision == string(StatusApproved),
		Reason:         body.Reason,
		Notes:          body.Notes,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "verification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"success": true}
	if warning != "" {
		resp["warning"] = warning
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Status(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	record, err := h.service.LatestStatus(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if record == nil {
		c.JSON(http.StatusOK, gin.H{"status": "not_started"})
		return
	}

	resp := gin.H{
		"status":               record.Status,
		"aiConfidence":         record.Confidence,
		"requiresManualReview": record.RequiresManualReview,
		"submittedAt":          record.CreatedAt,
	}
	if record.ReviewedAt != nil {
		resp["reviewedAt"] = record.ReviewedAt
	}
	if record.RejectionReason != nil {
		resp["rejectionReason"] = record.RejectionReason
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Certificate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	data, err := h.service.Certificate(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotApproved) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no certificate available"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=verification-certificate.pdf")
	c.Data(http.StatusOK, "application/pdf", data)
}
