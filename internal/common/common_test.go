package common

import (
	"errors"
	"strings"
	"testing"
)

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("order_reference", "", Required).
		Field("company", "A", MinLen(2)).
		Field("city", strings.Repeat("x", 5), MaxLen(4)).
		Field("currency", "eur", CurrencyCode).
		Field("ok", "EUR", Required, CurrencyCode)

	if got := len(v.Errors()); got != 4 {
		t.Fatalf("errors = %d, want 4: %s", got, v.ErrorMessage())
	}
	err := v.Error()
	if !IsValidationError(err) {
		t.Errorf("Error() = %v, want ErrValidation", err)
	}
	if !strings.Contains(err.Error(), "order_reference") {
		t.Errorf("message = %q", err.Error())
	}
	if NewValidator().Field("x", "fine", Required).Error() != nil {
		t.Error("valid input should not fail")
	}
}

func TestAppError(t *testing.T) {
	err := WrapError(NewAppError("ORDER_NOT_FOUND", "order 1 not found", ErrNotFound), "get")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("errors.Is failed for %v", err)
	}
	if CodeOf(err) != "ORDER_NOT_FOUND" {
		t.Errorf("CodeOf = %q", CodeOf(err))
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Error("plain error has no code")
	}
	if WrapError(nil, "x") != nil {
		t.Error("WrapError(nil) should be nil")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		db      DatabaseConfig
		workers int
		wantErr bool
	}{
		{"no persistence", DatabaseConfig{}, 1, false},
		{"sqlite", DatabaseConfig{Driver: DriverSQLite, DSN: "orders.db"}, 1, false},
		{"missing dsn", DatabaseConfig{Driver: DriverPostgres}, 1, true},
		{"unknown driver", DatabaseConfig{Driver: "oracle", DSN: "x"}, 1, true},
		{"no workers", DatabaseConfig{}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Database: tt.db, Ingest: IngestConfig{Workers: tt.workers}}
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_URL", "orders.db")
	t.Setenv("INGEST_WORKERS", "7")
	t.Setenv("INGEST_DEBOUNCE", "2s")
	t.Setenv("INGEST_INITIAL_SCAN", "false")

	c := LoadConfig()
	if c.Database.Driver != DriverSQLite || !c.PersistenceEnabled() {
		t.Errorf("driver = %q", c.Database.Driver)
	}
	if c.Ingest.Workers != 7 || c.Ingest.Debounce.String() != "2s" || c.Ingest.InitialScan {
		t.Errorf("ingest = %+v", c.Ingest)
	}
}
