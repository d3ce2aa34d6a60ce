package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"slipgen/config"
)

func Connect(cfg config.DatabaseConfig) (*sql.DB, error) {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %v", err)
	}

	return db, nil
}

// EnsureSchema creates the slips table if it does not exist yet.
func EnsureSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS slips (
		id UUID PRIMARY KEY,
		country TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		traveled_country TEXT NOT NULL DEFAULT '',
		appointment_type TEXT NOT NULL DEFAULT 'standard',
		medical_center TEXT NOT NULL DEFAULT '',
		premium_medical_center TEXT NOT NULL DEFAULT '',
		appointment_date TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		dob TEXT NOT NULL DEFAULT '',
		nationality TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',
		marital_status TEXT NOT NULL DEFAULT '',
		passport TEXT NOT NULL DEFAULT '',
		confirm_passport TEXT NOT NULL DEFAULT '',
		passport_issue_date TEXT NOT NULL DEFAULT '',
		passport_issue_place TEXT NOT NULL DEFAULT '',
		passport_expiry_on TEXT NOT NULL DEFAULT '',
		visa_type TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		national_id TEXT NOT NULL DEFAULT '',
		applied_position TEXT NOT NULL DEFAULT '',
		applied_position_other TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		generated_link TEXT NOT NULL DEFAULT '',
		log_entries JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("error creating slips table: %v", err)
	}

	return nil
}
