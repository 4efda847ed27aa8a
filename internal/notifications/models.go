package notifications

import "fmt"

type Kind string

const (
	KindAutoApproved Kind = "kyc_auto_approved"
	KindManualReview Kind = "kyc_manual_review"
	KindApproved     Kind = "kyc_approved"
	KindRejected     Kind = "kyc_rejected"
	KindReviewNudge  Kind = "kyc_review_nudge"
)

// Message is one outbound notification. Email is required; Phone is optional
// and only used when the SMS channel is enabled.
type Message struct {
	To    string
	Phone string
	Kind  Kind
	Data  map[string]string
}

func (m Message) subject() string {
	switch m.Kind {
	case KindAutoApproved, KindApproved:
		return "Your identity has been verified"
	case KindManualReview:
		return "Your verification is under review"
	case KindRejected:
		return "Your identity verification was not approved"
	case KindReviewNudge:
		return fmt.Sprintf("%s verification requests awaiting review", m.Data["count"])
	}
	return "SwiftRemit notification"
}

func (m Message) htmlBody() string {
	name := m.Data["name"]
	switch m.Kind {
	case KindAutoApproved, KindApproved:
		return fmt.Sprintf(`
			<h2>You're verified, %s!</h2>
			<p>Your identity documents have been checked and approved. You can now send money without limits on your account tier.</p>
			<p>The SwiftRemit Team</p>`, name)
	case KindManualReview:
		return fmt.Sprintf(`
			<h2>Thanks for submitting your documents, %s</h2>
			<p>Your verification needs a quick manual check by our compliance team. This usually takes one business day; we'll email you as soon as it's done.</p>
			<p>The SwiftRemit Team</p>`, name)
	case KindRejected:
		body := fmt.Sprintf(`
			<h2>We couldn't verify your identity, %s</h2>
			<p>Unfortunately your verification was not approved.</p>`, name)
		if reason := m.Data["reason"]; reason != "" {
			body += fmt.Sprintf("<p>Reason: %s</p>", reason)
		}
		body += `<p>You can submit new documents at any time from the app.</p>
			<p>The SwiftRemit Team</p>`
		return body
	case KindReviewNudge:
		return fmt.Sprintf(`
			<h2>Pending KYC reviews</h2>
			<p>There are %s verification requests that have been waiting for manual review for more than %s hours.</p>`,
			m.Data["count"], m.Data["hours"])
	}
	return "<p>SwiftRemit notification</p>"
}

func (m Message) smsText() string {
	switch m.Kind {
	case KindAutoApproved, KindApproved:
		return "SwiftRemit: your identity has been verified. You're all set."
	case KindManualReview:
		return "SwiftRemit: your verification is under review. We'll text you when it's done."
	case KindRejected:
		return "SwiftRemit: your identity verification was not approved. Check your email for details."
	}
	return ""
}
