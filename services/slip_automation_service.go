package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"slipgen/models"
)

// Timings observed against the wafid booking form. The WaitReady
// windows are upper bounds on dependent UI loading; the settle delays
// cover client-side scripts that react to state changes.
const (
	defaultRunTimeout  = 120 * time.Second
	navigationTimeout  = 60 * time.Second
	submitWaitTimeout  = 60 * time.Second
	dependentUITimeout = 5 * time.Second
	selectionSettle    = 800 * time.Millisecond
	sectionSettle      = 1 * time.Second
	recaptchaSettle    = 3 * time.Second
	postSubmitSettle   = 3 * time.Second
)

const submitScript = `() => {
	const btn = document.querySelector('button[type="submit"].submit');
	if (btn) btn.click();
}`

// RunResult is what the caller of GenerateLink gets back: the terminal
// status, the payment link when there is one, and the full audit log.
type RunResult struct {
	Status string            `json:"status"`
	URL    string            `json:"url,omitempty"`
	Logs   []models.LogEntry `json:"logs"`
}

// SlipAutomationService drives one browser session through the booking
// form for a slip: acquire, navigate, fill, submit, classify, persist.
type SlipAutomationService struct {
	store       RecordStore
	sessions    SessionFactory
	lease       *RunLease
	classifier  *OutcomeClassifier
	screenshots *ScreenshotService
	formURL     string
	runTimeout  time.Duration
}

func NewSlipAutomationService(store RecordStore, sessions SessionFactory, lease *RunLease,
	screenshots *ScreenshotService, formURL string, runTimeout time.Duration) *SlipAutomationService {

	if runTimeout <= 0 {
		runTimeout = defaultRunTimeout
	}

	return &SlipAutomationService{
		store:       store,
		sessions:    sessions,
		lease:       lease,
		classifier:  NewOutcomeClassifier(),
		screenshots: screenshots,
		formURL:     formURL,
		runTimeout:  runTimeout,
	}
}

// GenerateLink runs one bounded automation attempt for the slip.
//
// models.ErrSlipNotFound and ErrRunInProgress are returned before any
// run state changes. After that every failure lands in the result as a
// terminal error status with the log explaining it, never as a Go
// error. Re-running a slip with a terminal status is allowed; the log
// keeps growing and the classification is overwritten.
func (s *SlipAutomationService) GenerateLink(ctx context.Context, slipID string) (*RunResult, error) {
	slip, err := s.store.Fetch(slipID)
	if err != nil {
		return nil, err
	}

	release, err := s.lease.Acquire(ctx, slipID)
	if err != nil {
		return nil, err
	}
	defer release()

	runLog := NewRunLog(s.store, slipID, slip.LogEntries)

	if err := s.store.UpdateStatus(slipID, models.StatusProcessing); err != nil {
		log.Printf("Failed to mark slip %s as processing: %v", slipID, err)
	}
	runLog.Append(models.LogInfo, "Starting browser automation...")

	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	session, err := s.sessions.NewSession()
	if err != nil {
		outcome := Outcome{Status: models.StatusError, Message: "Failed to launch browser: " + err.Error()}
		return s.finish(slipID, runLog, outcome), nil
	}
	defer session.Close()

	done := make(chan Outcome, 1)
	go func() {
		done <- s.runAttempt(ctx, session, slip, runLog)
	}()

	var outcome Outcome
	select {
	case outcome = <-done:
	case <-ctx.Done():
		// Close unblocks whatever browser call the attempt is stuck in.
		session.Close()
		outcome = Outcome{
			Status:  models.StatusError,
			Message: fmt.Sprintf("Automation timed out after %s", s.runTimeout),
		}
	}

	if outcome.Status != models.StatusSubmitted && s.screenshots != nil {
		if location, err := s.screenshots.Capture(session, slipID); err == nil {
			runLog.Append(models.LogInfo, "Diagnostic screenshot saved: "+location)
		}
	}

	return s.finish(slipID, runLog, outcome), nil
}

// runAttempt is the Launching-through-Classifying portion of the run.
// It runs inside the outer deadline; navigation failures are fatal,
// field-level failures are warnings handled by the filler.
func (s *SlipAutomationService) runAttempt(ctx context.Context, session BrowserSession, slip *models.Slip, runLog *RunLog) Outcome {
	runLog.Append(models.LogInfo, "Navigating to wafid.com...")
	if err := session.Navigate(s.formURL, navigationTimeout); err != nil {
		return Outcome{Status: models.StatusError, Message: "Failed to load booking form: " + err.Error()}
	}
	runLog.Append(models.LogInfo, "Page loaded. Filling form fields...")

	filler := NewFieldFiller(session, runLog)

	// Appointment location. The city options load only after a country
	// is selected.
	filler.Select("country", slip.Country)
	runLog.Append(models.LogInfo, "Country selected: "+slip.Country)

	filler.WaitReady("city options", `select[name="city"] option:nth-of-type(2)`, dependentUITimeout)
	filler.Select("city", slip.City)
	runLog.Append(models.LogInfo, "City selected: "+slip.City)

	filler.Select("traveled_country", slip.TraveledCountry)
	runLog.Append(models.LogInfo, "Destination country: "+slip.TraveledCountry)

	// Appointment type. The radios appear once the location section is
	// complete, and each type reveals its own sub-form.
	appointmentType := slip.AppointmentType
	if appointmentType == "" {
		appointmentType = "standard"
	}

	radio := fmt.Sprintf(`input[name="appointment_type"][value="%s"]`, appointmentType)
	if filler.WaitReady("appointment type selector", radio, dependentUITimeout) {
		if err := session.Click(radio); err != nil {
			runLog.Append(models.LogWarning, fmt.Sprintf("Could not choose appointment type: %v", err))
		}
		sleepCtx(ctx, selectionSettle)
	}

	if appointmentType == "premium" {
		filler.WaitReady("premium sub-form", `select[name="premium_medical_center"]`, dependentUITimeout)
		filler.Select("premium_medical_center", slip.PremiumMedicalCenter)

		if slip.AppointmentDate != "" {
			filler.Assign("appointment_date", slip.AppointmentDate)
			runLog.Append(models.LogInfo, "Appointment date set: "+slip.AppointmentDate)
		}
	} else {
		sleepCtx(ctx, sectionSettle)
		if slip.MedicalCenter != "" {
			filler.Select("medical_center", slip.MedicalCenter)
		}
	}

	filler.FillCandidateFields(slip)
	runLog.Append(models.LogInfo, "All form fields filled. Handling reCAPTCHA...")

	// reCAPTCHA v3 scores in the background; give it time to attach
	// its token before submitting.
	sleepCtx(ctx, recaptchaSettle)

	filler.Check("confirm")

	runLog.Append(models.LogInfo, "Submitting form...")
	if _, err := session.Evaluate(submitScript); err != nil {
		return Outcome{Status: models.StatusError, Message: "Failed to submit form: " + err.Error()}
	}

	if err := session.WaitForNavigation(submitWaitTimeout); err != nil {
		// Same-page submission; classify whatever the form left behind.
		runLog.Append(models.LogWarning, "No navigation after submit; checking the current page")
	}
	sleepCtx(ctx, postSubmitSettle)

	runLog.Append(models.LogInfo, "Redirected to: "+session.CurrentURL())
	return s.classifier.Classify(session)
}

// finish appends the terminal log entry, persists status, link and log
// in one write, and shapes the caller's result.
func (s *SlipAutomationService) finish(slipID string, runLog *RunLog, outcome Outcome) *RunResult {
	switch outcome.Status {
	case models.StatusSubmitted:
		runLog.Append(models.LogSuccess, "Success! Payment link generated: "+outcome.Link)
	case models.StatusOtpRequired:
		runLog.Append(models.LogWarning, outcome.Message)
	default:
		runLog.Append(models.LogError, outcome.Message)
	}

	entries := runLog.Entries()
	if err := s.store.UpdateResult(slipID, outcome.Status, outcome.Link, entries); err != nil {
		log.Printf("Failed to persist result for slip %s: %v", slipID, err)
	}

	return &RunResult{Status: outcome.Status, URL: outcome.Link, Logs: entries}
}

// sleepCtx sleeps for d or until the run deadline, whichever comes
// first.
func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
