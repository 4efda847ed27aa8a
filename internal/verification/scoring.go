package verification

import (
	"strings"
	"time"

	"swiftremit/kyc-portal-backend/internal/ai"
)

// ScoreThreshold is the auto-approval cut-off. With seven 1/7-weight checks
// only a perfect result clears it; anything less goes to manual review.
const ScoreThreshold = 0.95

const totalChecks = 7

// buildValidations combines the three AI results and the user-declared
// document id into the seven named boolean checks.
func buildValidations(doc ai.DocumentResult, addr ai.AddressResult, face ai.FaceResult, declaredDocID string) map[string]bool {
	return map[string]bool{
		CheckAuthentic:     doc.IsAuthentic,
		CheckNotExpired:    doc.IsExpired != nil && !*doc.IsExpired,
		CheckFromCountry:   doc.IsFromCountry,
		CheckIDMatches:     documentIDsMatch(declaredDocID, doc.DocumentID),
		CheckAddressMatch:  addr.AddressMatches,
		CheckFacesMatch:    face.FacesMatch,
		CheckParsedCleanly: doc.Parsed && addr.Parsed && face.Parsed,
	}
}

// confidence is the fraction of passed checks, always a multiple of 1/7.
func confidence(validations map[string]bool) float64 {
	passed := 0
	for _, ok := range validations {
		if ok {
			passed++
		}
	}
	return float64(passed) / float64(totalChecks)
}

// documentIDsMatch compares the declared and AI-extracted document ids after
// normalization. Both must be non-empty once normalized.
func documentIDsMatch(declared, extracted string) bool {
	a := normalizeDocumentID(declared)
	b := normalizeDocumentID(extracted)
	return a != "" && b != "" && a == b
}

// normalizeDocumentID lowercases and strips every character outside
// [a-z0-9-]. Spaces are removed, not converted to dashes.
func normalizeDocumentID(id string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(id) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// scoreOutcome assembles the persisted payload and the decision flags.
func scoreOutcome(validations map[string]bool, raw map[string]string) (AIValidation, bool) {
	conf := confidence(validations)
	payload := AIValidation{
		Timestamp:    time.Now().UTC(),
		Validations:  validations,
		RawResponses: raw,
		Confidence:   conf,
		Threshold:    ScoreThreshold,
	}
	autoApproved := conf >= ScoreThreshold
	return payload, autoApproved
}
