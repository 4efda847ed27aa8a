package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewGeminiClient("test-key", "test-model", zap.NewNop())
	c.baseURL = srv.URL
	return c
}

func modelReply(text string) []byte {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
	b, _ := json.Marshal(resp)
	return b
}

func TestAnalyzeDocumentParsesJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(modelReply(`Here is my analysis:
{"is_authentic": true, "is_expired": false, "is_from_country": true, "document_id": "AB123456"}`))
	})

	result, err := c.AnalyzeDocument(context.Background(), Asset{Bytes: []byte("img"), MimeType: "image/jpeg"}, "KE")
	require.NoError(t, err)
	assert.True(t, result.IsAuthentic)
	require.NotNil(t, result.IsExpired)
	assert.False(t, *result.IsExpired)
	assert.True(t, result.IsFromCountry)
	assert.Equal(t, "AB123456", result.DocumentID)
	assert.True(t, result.Parsed)
}

func TestMalformedResponseDegradesToZero(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(modelReply("I'm sorry, I cannot produce structured output today."))
	})

	result, err := c.AnalyzeDocument(context.Background(), Asset{Bytes: []byte("img"), MimeType: "image/jpeg"}, "KE")
	require.NoError(t, err)
	assert.False(t, result.IsAuthentic)
	assert.Nil(t, result.IsExpired)
	assert.False(t, result.IsFromCountry)
	assert.Empty(t, result.DocumentID)
	assert.False(t, result.Parsed)
}

func TestTruncatedJSONDegradesToZero(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(modelReply(`{"address_matches": tru`))
	})

	result, err := c.AnalyzeAddressProof(context.Background(), Asset{Bytes: []byte("img"), MimeType: "image/png"}, "12 Moi Ave")
	require.NoError(t, err)
	assert.False(t, result.AddressMatches)
	assert.False(t, result.Parsed)
}

func TestUnreadableImageFlag(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(modelReply(`{"faces_match": false, "image_unreadable": true}`))
	})

	_, err := c.CompareFaces(context.Background(),
		Asset{Bytes: []byte("a"), MimeType: "image/jpeg"},
		Asset{Bytes: []byte("b"), MimeType: "image/jpeg"})
	assert.ErrorIs(t, err, ErrUnreadableImage)
}

func TestProviderRejectedImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Unable to process input image"}}`))
	})

	_, err := c.AnalyzeDocument(context.Background(), Asset{Bytes: []byte("img"), MimeType: "image/jpeg"}, "KE")
	assert.ErrorIs(t, err, ErrUnreadableImage)
}

func TestRetriesOnServerError(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(modelReply(`{"address_matches": true}`))
	})

	result, err := c.AnalyzeAddressProof(context.Background(), Asset{Bytes: []byte("img"), MimeType: "image/jpeg"}, "addr")
	require.NoError(t, err)
	assert.True(t, result.AddressMatches)
	assert.Equal(t, 2, attempts)
}

func TestNoRetryOnClientError(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"message": "key revoked"}}`))
	})

	_, err := c.AnalyzeDocument(context.Background(), Asset{Bytes: []byte("img"), MimeType: "image/jpeg"}, "KE")
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestExtractJSON(t *testing.T) {
	span, ok := extractJSON("```json\n{\"a\": 1}\n```")
	assert.True(t, ok)
	assert.Equal(t, `{"a": 1}`, span)

	_, ok = extractJSON("no braces here")
	assert.False(t, ok)
}
