package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{name: "nil error", err: nil, want: false},
		{
			name: "postgres duplicate key",
			err:  errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`),
			want: true,
		},
		{
			name:       "named constraint",
			err:        errors.New(`constraint idx_users_email violated`),
			constraint: "idx_users_email",
			want:       true,
		},
		{
			name: "sqlite unique",
			err:  errors.New("UNIQUE constraint failed: users.email"),
			want: true,
		},
		{name: "unrelated error", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		if got := IsUniqueViolation(tt.err, tt.constraint); got != tt.want {
			t.Fatalf("%s: IsUniqueViolation = %v, want %v", tt.name, got, tt.want)
		}
	}
}
