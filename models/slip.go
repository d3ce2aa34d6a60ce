package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Slip statuses. A slip is created pending, flips to processing when an
// automation run picks it up, and lands on exactly one terminal status.
const (
	StatusPending     = "pending"
	StatusProcessing  = "processing"
	StatusSubmitted   = "submitted"
	StatusOtpRequired = "otp_required"
	StatusError       = "error"
)

// Log entry levels used in a slip's audit trail.
const (
	LogInfo    = "info"
	LogSuccess = "success"
	LogWarning = "warning"
	LogError   = "error"
)

// Applied position code that requires the free-text "other" field.
const PositionOther = "108"

var ErrSlipNotFound = errors.New("slip not found")

// LogEntry is one line of a slip's run audit trail. Entries are only
// ever appended, never edited or removed.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"type"`
	Message   string    `json:"message"`
}

type Slip struct {
	ID string `json:"id"`

	// Appointment location
	Country         string `json:"country"`
	City            string `json:"city"`
	TraveledCountry string `json:"traveled_country"`

	// Appointment type: standard or premium
	AppointmentType      string `json:"appointment_type"`
	MedicalCenter        string `json:"medical_center"`
	PremiumMedicalCenter string `json:"premium_medical_center"`
	AppointmentDate      string `json:"appointment_date"` // DD/MM/YYYY

	// Candidate information
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	DOB           string `json:"dob"`
	Nationality   string `json:"nationality"`
	Gender        string `json:"gender"`
	MaritalStatus string `json:"marital_status"`

	// Passport
	Passport           string `json:"passport"`
	ConfirmPassport    string `json:"confirm_passport"`
	PassportIssueDate  string `json:"passport_issue_date"`
	PassportIssuePlace string `json:"passport_issue_place"`
	PassportExpiryOn   string `json:"passport_expiry_on"`
	VisaType           string `json:"visa_type"`

	// Contact
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	NationalID string `json:"national_id"`

	// Position
	AppliedPosition      string `json:"applied_position"`
	AppliedPositionOther string `json:"applied_position_other"`

	// Run state
	Status        string     `json:"status"`
	GeneratedLink string     `json:"generated_link"`
	LogEntries    []LogEntry `json:"log_entries"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SlipModel struct {
	DB *sql.DB
}

func NewSlipModel(db *sql.DB) *SlipModel {
	return &SlipModel{DB: db}
}

const slipColumns = `id, country, city, traveled_country,
	appointment_type, medical_center, premium_medical_center, appointment_date,
	first_name, last_name, dob, nationality, gender, marital_status,
	passport, confirm_passport, passport_issue_date, passport_issue_place, passport_expiry_on, visa_type,
	email, phone, national_id, applied_position, applied_position_other,
	status, generated_link, log_entries, created_at, updated_at`

func scanSlip(row interface{ Scan(...interface{}) error }) (*Slip, error) {
	var s Slip
	var rawLogs []byte
	err := row.Scan(&s.ID, &s.Country, &s.City, &s.TraveledCountry,
		&s.AppointmentType, &s.MedicalCenter, &s.PremiumMedicalCenter, &s.AppointmentDate,
		&s.FirstName, &s.LastName, &s.DOB, &s.Nationality, &s.Gender, &s.MaritalStatus,
		&s.Passport, &s.ConfirmPassport, &s.PassportIssueDate, &s.PassportIssuePlace, &s.PassportExpiryOn, &s.VisaType,
		&s.Email, &s.Phone, &s.NationalID, &s.AppliedPosition, &s.AppliedPositionOther,
		&s.Status, &s.GeneratedLink, &rawLogs, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.LogEntries = []LogEntry{}
	if len(rawLogs) > 0 {
		if err := json.Unmarshal(rawLogs, &s.LogEntries); err != nil {
			return nil, fmt.Errorf("error decoding log entries: %v", err)
		}
	}

	return &s, nil
}

func (m *SlipModel) GetByID(id string) (*Slip, error) {
	query := `SELECT ` + slipColumns + ` FROM slips WHERE id = $1`

	slip, err := scanSlip(m.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrSlipNotFound
	}
	if err != nil {
		return nil, err
	}

	return slip, nil
}

func (m *SlipModel) List() ([]*Slip, error) {
	query := `SELECT ` + slipColumns + ` FROM slips ORDER BY created_at DESC`

	rows, err := m.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slips := []*Slip{}
	for rows.Next() {
		slip, err := scanSlip(rows)
		if err != nil {
			return nil, err
		}
		slips = append(slips, slip)
	}

	return slips, rows.Err()
}

// Create inserts a new slip. Status is forced to pending and the log
// starts empty regardless of what the caller passes in.
func (m *SlipModel) Create(s *Slip) (*Slip, error) {
	s.ID = uuid.New().String()
	s.Status = StatusPending
	s.GeneratedLink = ""
	s.LogEntries = []LogEntry{}

	query := `
		INSERT INTO slips (id, country, city, traveled_country,
			appointment_type, medical_center, premium_medical_center, appointment_date,
			first_name, last_name, dob, nationality, gender, marital_status,
			passport, confirm_passport, passport_issue_date, passport_issue_place, passport_expiry_on, visa_type,
			email, phone, national_id, applied_position, applied_position_other,
			status, generated_link, log_entries)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
		RETURNING created_at, updated_at`

	err := m.DB.QueryRow(query, s.ID, s.Country, s.City, s.TraveledCountry,
		s.AppointmentType, s.MedicalCenter, s.PremiumMedicalCenter, s.AppointmentDate,
		s.FirstName, s.LastName, s.DOB, s.Nationality, s.Gender, s.MaritalStatus,
		s.Passport, s.ConfirmPassport, s.PassportIssueDate, s.PassportIssuePlace, s.PassportExpiryOn, s.VisaType,
		s.Email, s.Phone, s.NationalID, s.AppliedPosition, s.AppliedPositionOther,
		s.Status, s.GeneratedLink, "[]").Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Update rewrites the applicant fields of an existing slip. Run state
// (status, link, log) is not touched here; that belongs to the
// automation run.
func (m *SlipModel) Update(id string, s *Slip) (*Slip, error) {
	query := `
		UPDATE slips SET country = $2, city = $3, traveled_country = $4,
			appointment_type = $5, medical_center = $6, premium_medical_center = $7, appointment_date = $8,
			first_name = $9, last_name = $10, dob = $11, nationality = $12, gender = $13, marital_status = $14,
			passport = $15, confirm_passport = $16, passport_issue_date = $17, passport_issue_place = $18,
			passport_expiry_on = $19, visa_type = $20,
			email = $21, phone = $22, national_id = $23, applied_position = $24, applied_position_other = $25,
			updated_at = NOW()
		WHERE id = $1`

	result, err := m.DB.Exec(query, id, s.Country, s.City, s.TraveledCountry,
		s.AppointmentType, s.MedicalCenter, s.PremiumMedicalCenter, s.AppointmentDate,
		s.FirstName, s.LastName, s.DOB, s.Nationality, s.Gender, s.MaritalStatus,
		s.Passport, s.ConfirmPassport, s.PassportIssueDate, s.PassportIssuePlace, s.PassportExpiryOn, s.VisaType,
		s.Email, s.Phone, s.NationalID, s.AppliedPosition, s.AppliedPositionOther)
	if err != nil {
		return nil, err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrSlipNotFound
	}

	return m.GetByID(id)
}

func (m *SlipModel) Delete(id string) error {
	result, err := m.DB.Exec(`DELETE FROM slips WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrSlipNotFound
	}

	return nil
}

// Fetch, UpdateStatus, UpdateLog and UpdateResult make SlipModel the
// record store consumed by the automation run.

func (m *SlipModel) Fetch(id string) (*Slip, error) {
	return m.GetByID(id)
}

func (m *SlipModel) UpdateStatus(id string, status string) error {
	_, err := m.DB.Exec(`UPDATE slips SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (m *SlipModel) UpdateLog(id string, entries []LogEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("error encoding log entries: %v", err)
	}

	_, err = m.DB.Exec(`UPDATE slips SET log_entries = $2, updated_at = NOW() WHERE id = $1`, id, raw)
	return err
}

// UpdateResult persists a run's terminal state in one write. The link
// is cleared unless the run actually produced one.
func (m *SlipModel) UpdateResult(id string, status string, generatedLink string, entries []LogEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("error encoding log entries: %v", err)
	}

	if status != StatusSubmitted {
		generatedLink = ""
	}

	_, err = m.DB.Exec(`UPDATE slips SET status = $2, generated_link = $3, log_entries = $4, updated_at = NOW() WHERE id = $1`,
		id, status, generatedLink, raw)
	return err
}
