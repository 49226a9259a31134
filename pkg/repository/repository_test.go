package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/agent-meet/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func TestMapError(t *testing.T) {
	other := errors.New("some other error")
	otherPg := &pgconn.PgError{Code: "12345"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: repository.CodeUniqueViolation}, errDuplicate},
		{"other pg error", otherPg, otherPg},
		{"other error", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, errDuplicate)
			if got != tt.want {
				t.Errorf("MapError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	fk := &pgconn.PgError{Code: repository.CodeForeignKeyViolation, ConstraintName: "meetings_agent_id_fkey"}

	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"any constraint", fk, "", true},
		{"matching constraint", fk, "meetings_agent_id_fkey", true},
		{"other constraint", fk, "other_fkey", false},
		{"wrapped", fmt.Errorf("insert: %w", fk), "", true},
		{"unique violation", &pgconn.PgError{Code: repository.CodeUniqueViolation}, "", false},
		{"plain error", errors.New("boom"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repository.IsForeignKeyViolation(tt.err, tt.constraint); got != tt.want {
				t.Errorf("IsForeignKeyViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsCheckViolation(t *testing.T) {
	check := &pgconn.PgError{Code: repository.CodeCheckViolation, ConstraintName: "meetings_status_check"}

	if !repository.IsCheckViolation(fmt.Errorf("update: %w", check)) {
		t.Error("IsCheckViolation() = false for wrapped check violation")
	}
	if repository.IsCheckViolation(&pgconn.PgError{Code: repository.CodeForeignKeyViolation}) {
		t.Error("IsCheckViolation() = true for foreign key violation")
	}
}
