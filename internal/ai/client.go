package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel   = "gemini-1.5-flash"
	maxRetries     = 3
	initialDelay   = time.Second
)

// ErrUnreadableImage signals that the provider could not process an input
// image. Callers surface this as a user-actionable condition (ask for a
// clearer photo) instead of a generic failure.
var ErrUnreadableImage = errors.New("ai: image could not be processed")

// Asset is one inline binary attachment for a vision call.
type Asset struct {
	Bytes    []byte
	MimeType string
}

// DocumentResult carries the identity-document checks. Absent fields from a
// degraded parse stay at their zero value and count as failed; IsExpired is a
// pointer because "not expired" must be an affirmative answer, not a missing
// one. Parsed reports whether the model produced usable JSON at all.
type DocumentResult struct {
	IsAuthentic   bool   `json:"is_authentic"`
	IsExpired     *bool  `json:"is_expired"`
	IsFromCountry bool   `json:"is_from_country"`
	DocumentID    string `json:"document_id"`
	Parsed        bool   `json:"-"`
	Raw           string `json:"-"`
}

// AddressResult carries the proof-of-address check.
type AddressResult struct {
	AddressMatches bool   `json:"address_matches"`
	Parsed         bool   `json:"-"`
	Raw            string `json:"-"`
}

// FaceResult carries the selfie-to-document face comparison.
type FaceResult struct {
	FacesMatch bool   `json:"faces_match"`
	Parsed     bool   `json:"-"`
	Raw        string `json:"-"`
}

// Analyzer is the vision capability the verification scorer depends on.
type Analyzer interface {
	AnalyzeDocument(ctx context.Context, doc Asset, country string) (DocumentResult, error)
	AnalyzeAddressProof(ctx context.Context, proof Asset, declaredAddress string) (AddressResult, error)
	CompareFaces(ctx context.Context, selfie, idDocument Asset) (FaceResult, error)
}

// GeminiClient calls the Gemini generateContent API with inline image parts.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewGeminiClient(apiKey, model string, logger *zap.Logger) *GeminiClient {
	if model == "" {
		model = defaultModel
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) AnalyzeDocument(ctx context.Context, doc Asset, country string) (DocumentResult, error) {
	prompt := fmt.Sprintf(`You are verifying an identity document for a remittance service.
The applicant declared citizenship of %q.
Reply with ONLY a JSON object:
{"is_authentic": bool, "is_expired": bool, "is_from_country": bool, "document_id": "the id printed on the document", "image_unreadable": bool}
Set image_unreadable to true only if the photo is too blurry or dark to read.`, country)

	text, err := c.generate(ctx, prompt, doc)
	if err != nil {
		return DocumentResult{}, err
	}

	var result DocumentResult
	result.Parsed = parseBestEffort(text, &result, c.logger)
	result.Raw = text
	if unreadable(text) {
		return result, ErrUnreadableImage
	}
	return result, nil
}

func (c *GeminiClient) AnalyzeAddressProof(ctx context.Context, proof Asset, declaredAddress string) (AddressResult, error) {
	prompt := fmt.Sprintf(`You are verifying a proof-of-address document (utility bill, bank statement or lease).
The applicant declared this address: %q.
Reply with ONLY a JSON object:
{"address_matches": bool, "image_unreadable": bool}
address_matches is true when the document shows substantially the same address.`, declaredAddress)

	text, err := c.generate(ctx, prompt, proof)
	if err != nil {
		return AddressResult{}, err
	}

	var result AddressResult
	result.Parsed = parseBestEffort(text, &result, c.logger)
	result.Raw = text
	if unreadable(text) {
		return result, ErrUnreadableImage
	}
	return result, nil
}

func (c *GeminiClient) CompareFaces(ctx context.Context, selfie, idDocument Asset) (FaceResult, error) {
	prompt := `The first image is a selfie, the second is the photo page of an identity document.
Reply with ONLY a JSON object:
{"faces_match": bool, "image_unreadable": bool}
faces_match is true when both images clearly show the same person.`

	text, err := c.generate(ctx, prompt, selfie, idDocument)
	if err != nil {
		return FaceResult{}, err
	}

	var result FaceResult
	result.Parsed = parseBestEffort(text, &result, c.logger)
	result.Raw = text
	if unreadable(text) {
		return result, ErrUnreadableImage
	}
	return result, nil
}

// generate posts prompt plus inline images and returns the model's text.
// Retries with exponential backoff on 429 and 5xx.
func (c *GeminiClient) generate(ctx context.Context, prompt string, assets ...Asset) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("ai: GEMINI_API_KEY not set")
	}

	parts := []geminiPart{{Text: prompt}}
	for _, a := range assets {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: a.MimeType,
			Data:     base64.StdEncoding.EncodeToString(a.Bytes),
		}})
	}

	body, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Parts: parts}}})
	if err != nil {
		return "", fmt.Errorf("ai: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := initialDelay << uint(attempt-1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("ai: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("ai: request failed: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("ai: read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			if providerRejectedImage(respBody) {
				return "", ErrUnreadableImage
			}
			lastErr = fmt.Errorf("ai: provider error (%d): %s", resp.StatusCode, truncate(string(respBody), 300))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return "", lastErr
		}

		var apiResp geminiResponse
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			return "", fmt.Errorf("ai: decode response: %w", err)
		}
		if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
			return "", fmt.Errorf("ai: empty response")
		}

		var sb strings.Builder
		for _, p := range apiResp.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
		return sb.String(), nil
	}

	return "", fmt.Errorf("ai: max retries exceeded: %w", lastErr)
}

// parseBestEffort extracts the first {...} span from free-form model text and
// unmarshals it into out. The provider enforces no schema, so any failure
// leaves out at its zero value and is logged, never raised. Returns whether
// the parse succeeded.
func parseBestEffort(text string, out interface{}, logger *zap.Logger) bool {
	span, ok := extractJSON(text)
	if !ok {
		logger.Warn("ai response contained no JSON object", zap.String("raw", truncate(text, 200)))
		return false
	}
	if err := json.Unmarshal([]byte(span), out); err != nil {
		logger.Warn("ai response JSON did not parse", zap.Error(err), zap.String("raw", truncate(span, 200)))
		return false
	}
	return true
}

// extractJSON returns the substring from the first '{' to the last '}'.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func unreadable(text string) bool {
	span, ok := extractJSON(text)
	if !ok {
		return false
	}
	var flag struct {
		ImageUnreadable bool `json:"image_unreadable"`
	}
	if err := json.Unmarshal([]byte(span), &flag); err != nil {
		return false
	}
	return flag.ImageUnreadable
}

func providerRejectedImage(body []byte) bool {
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "unable to process input image") ||
		strings.Contains(lower, "invalid image")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
