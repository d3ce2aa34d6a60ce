package services

import (
	"fmt"
	"strings"

	"slipgen/models"
)

// Outcome is the classified terminal state of one run.
type Outcome struct {
	Status  string
	Link    string
	Message string
}

// Everything below is coupled to wafid.com's current markup and
// routing. When the site changes, this file is the blast radius.
var paymentURLPatterns = []string{"/pay/", "/appointment/"}

const otpModalScript = `() => {
	const modal = document.querySelector('.email-otp-modal');
	return !!modal && (modal.style.display !== 'none' || modal.classList.contains('visible'));
}`

const errorTextScript = `() => {
	const el = document.querySelector('.ui.error.message, .error-message, [class*="error"]');
	return el ? el.innerText : '';
}`

// OutcomeClassifier inspects the page after submission and decides how
// the run ended. First match wins: payment/appointment URL, then OTP
// challenge, then a visible form error, then unknown.
type OutcomeClassifier struct{}

func NewOutcomeClassifier() *OutcomeClassifier {
	return &OutcomeClassifier{}
}

func (c *OutcomeClassifier) Classify(session BrowserSession) Outcome {
	currentURL := session.CurrentURL()

	for _, pattern := range paymentURLPatterns {
		if strings.Contains(currentURL, pattern) {
			return Outcome{Status: models.StatusSubmitted, Link: currentURL}
		}
	}

	if raw, err := session.Evaluate(otpModalScript); err == nil {
		if visible, ok := raw.(bool); ok && visible {
			return Outcome{
				Status:  models.StatusOtpRequired,
				Message: "OTP modal appeared. Manual OTP verification required on wafid.com",
			}
		}
	}

	if raw, err := session.Evaluate(errorTextScript); err == nil {
		if text, ok := raw.(string); ok && strings.TrimSpace(text) != "" {
			return Outcome{
				Status:  models.StatusError,
				Message: "Form error: " + strings.TrimSpace(text),
			}
		}
	}

	return Outcome{
		Status:  models.StatusError,
		Message: fmt.Sprintf("Could not determine submission outcome. Current URL: %s", currentURL),
	}
}
