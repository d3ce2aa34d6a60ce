package services

import (
	"fmt"
	"time"

	"slipgen/models"
)

// FieldFiller fills individual form fields. Every failure is best
// effort: logged as a warning and skipped, so one missing or
// incompatible field never blocks submission of the rest of the form.
type FieldFiller struct {
	session BrowserSession
	log     *RunLog
}

func NewFieldFiller(session BrowserSession, runLog *RunLog) *FieldFiller {
	return &FieldFiller{session: session, log: runLog}
}

// Select sets a <select> to an exact option value. Empty values are a
// silent no-op.
func (f *FieldFiller) Select(name, value string) {
	if value == "" {
		return
	}

	selector := fmt.Sprintf(`select[name="%s"]`, name)
	if err := f.session.SelectOption(selector, value); err != nil {
		f.log.Append(models.LogWarning, fmt.Sprintf("Could not select %s: %v", name, err))
	}
}

// Type clears a text input and types the value into it.
func (f *FieldFiller) Type(name, value string) {
	if value == "" {
		f.log.Append(models.LogWarning, fmt.Sprintf("Skipping %s: no value on record", name))
		return
	}

	selector := fmt.Sprintf(`input[name="%s"], textarea[name="%s"]`, name, name)
	if err := f.session.TypeText(selector, value); err != nil {
		f.log.Append(models.LogWarning, fmt.Sprintf("Could not type into %s: %v", name, err))
	}
}

// Assign writes the value straight into the field and dispatches a
// change event. Used where keystroke simulation is unreliable, i.e. the
// scripted calendar widgets, which also arrive disabled.
func (f *FieldFiller) Assign(name, value string) {
	if value == "" {
		return
	}

	script := `([name, value]) => {
		const el = document.querySelector('input[name="' + name + '"]');
		if (el) {
			el.removeAttribute('disabled');
			el.value = value;
			el.dispatchEvent(new Event('change', { bubbles: true }));
		}
	}`
	if _, err := f.session.Evaluate(script, []string{name, value}); err != nil {
		f.log.Append(models.LogWarning, fmt.Sprintf("Could not assign %s: %v", name, err))
	}
}

// Check ticks a checkbox through its own click handler.
func (f *FieldFiller) Check(name string) {
	script := `name => {
		const cb = document.querySelector('input[name="' + name + '"]');
		if (cb && !cb.checked) cb.click();
	}`
	if _, err := f.session.Evaluate(script, name); err != nil {
		f.log.Append(models.LogWarning, fmt.Sprintf("Could not check %s: %v", name, err))
	}
}

// WaitReady waits until the selector is visible or the timeout elapses,
// then lets the caller proceed either way. A timeout only produces a
// warning; dependent selects are sometimes pre-populated and the
// expected loading never happens.
func (f *FieldFiller) WaitReady(description, selector string, timeout time.Duration) bool {
	if f.session.WaitForSelector(selector, timeout) {
		return true
	}

	f.log.Append(models.LogWarning, fmt.Sprintf("%s not ready after %s; continuing", description, timeout))
	return false
}

type fieldKind int

const (
	fieldSelect fieldKind = iota
	fieldText
	fieldScript
)

type fieldSpec struct {
	name  string
	kind  fieldKind
	value func(*models.Slip) string
}

// candidateFields lists the candidate-information fields in the order
// the booking form presents them. Date fields are scripted calendar
// widgets and take programmatic assignment.
var candidateFields = []fieldSpec{
	{"first_name", fieldText, func(s *models.Slip) string { return s.FirstName }},
	{"last_name", fieldText, func(s *models.Slip) string { return s.LastName }},
	{"dob", fieldScript, func(s *models.Slip) string { return s.DOB }},
	{"nationality", fieldSelect, func(s *models.Slip) string { return s.Nationality }},
	{"gender", fieldSelect, func(s *models.Slip) string { return s.Gender }},
	{"marital_status", fieldSelect, func(s *models.Slip) string { return s.MaritalStatus }},
	{"passport", fieldText, func(s *models.Slip) string { return s.Passport }},
	{"confirm_passport", fieldText, func(s *models.Slip) string { return s.ConfirmPassport }},
	{"passport_issue_date", fieldScript, func(s *models.Slip) string { return s.PassportIssueDate }},
	{"passport_issue_place", fieldText, func(s *models.Slip) string { return s.PassportIssuePlace }},
	{"passport_expiry_on", fieldScript, func(s *models.Slip) string { return s.PassportExpiryOn }},
	{"visa_type", fieldSelect, func(s *models.Slip) string { return s.VisaType }},
	{"email", fieldText, func(s *models.Slip) string { return s.Email }},
	{"phone", fieldText, func(s *models.Slip) string { return s.Phone }},
	{"national_id", fieldText, func(s *models.Slip) string { return s.NationalID }},
	{"applied_position", fieldSelect, func(s *models.Slip) string { return s.AppliedPosition }},
}

// FillCandidateFields walks the candidate field table. The free-text
// position field only exists when the position code means "other".
func (f *FieldFiller) FillCandidateFields(slip *models.Slip) {
	for _, field := range candidateFields {
		value := field.value(slip)
		switch field.kind {
		case fieldSelect:
			f.Select(field.name, value)
		case fieldText:
			f.Type(field.name, value)
		case fieldScript:
			f.Assign(field.name, value)
		}
	}

	if slip.AppliedPosition == models.PositionOther && slip.AppliedPositionOther != "" {
		f.Type("applied_position_other", slip.AppliedPositionOther)
	}
}
