package models

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slipTestColumns = []string{
	"id", "country", "city", "traveled_country",
	"appointment_type", "medical_center", "premium_medical_center", "appointment_date",
	"first_name", "last_name", "dob", "nationality", "gender", "marital_status",
	"passport", "confirm_passport", "passport_issue_date", "passport_issue_place", "passport_expiry_on", "visa_type",
	"email", "phone", "national_id", "applied_position", "applied_position_other",
	"status", "generated_link", "log_entries", "created_at", "updated_at",
}

func slipTestRow(id, status, link, logs string) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, "IN", "120", "SA",
		"standard", "", "", "",
		"Ayesha", "Khan", "12/03/1992", "IN", "2", "2",
		"N1234567", "N1234567", "", "", "", "1",
		"ayesha@example.com", "+911234567890", "4321", "103", "",
		status, link, []byte(logs), now, now,
	}
}

func TestSlipModel_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logs := `[{"timestamp":"2025-06-01T10:00:00Z","type":"info","message":"Starting browser automation..."}]`
	mock.ExpectQuery("SELECT (.+) FROM slips WHERE id").
		WithArgs("slip-1").
		WillReturnRows(sqlmock.NewRows(slipTestColumns).AddRow(slipTestRow("slip-1", StatusSubmitted, "https://wafid.com/pay/abc", logs)...))

	model := NewSlipModel(db)
	slip, err := model.GetByID("slip-1")

	require.NoError(t, err)
	assert.Equal(t, "slip-1", slip.ID)
	assert.Equal(t, StatusSubmitted, slip.Status)
	assert.Equal(t, "https://wafid.com/pay/abc", slip.GeneratedLink)
	require.Len(t, slip.LogEntries, 1)
	assert.Equal(t, LogInfo, slip.LogEntries[0].Level)
	assert.Equal(t, "Starting browser automation...", slip.LogEntries[0].Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlipModel_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM slips WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	model := NewSlipModel(db)
	_, err = model.GetByID("missing")

	assert.ErrorIs(t, err, ErrSlipNotFound)
}

func TestSlipModel_CreateForcesPendingState(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("INSERT INTO slips").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	model := NewSlipModel(db)
	created, err := model.Create(&Slip{
		FirstName:     "Ayesha",
		Status:        StatusSubmitted,
		GeneratedLink: "https://wafid.com/pay/stale",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, StatusPending, created.Status)
	assert.Empty(t, created.GeneratedLink)
	assert.Empty(t, created.LogEntries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlipModel_UpdateResult_ClearsLinkUnlessSubmitted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE slips SET status").
		WithArgs("slip-1", StatusError, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	model := NewSlipModel(db)
	err = model.UpdateResult("slip-1", StatusError, "https://wafid.com/pay/should-not-persist", nil)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlipModel_UpdateResult_KeepsLinkWhenSubmitted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE slips SET status").
		WithArgs("slip-1", StatusSubmitted, "https://wafid.com/pay/abc", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	model := NewSlipModel(db)
	err = model.UpdateResult("slip-1", StatusSubmitted, "https://wafid.com/pay/abc", []LogEntry{
		{Timestamp: time.Now(), Level: LogSuccess, Message: "done"},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlipModel_Delete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM slips").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	model := NewSlipModel(db)
	err = model.Delete("missing")

	assert.ErrorIs(t, err, ErrSlipNotFound)
}
