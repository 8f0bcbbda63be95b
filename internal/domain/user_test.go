package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	t.Parallel() // Enable parallel execution
	user, err := NewUser("Tester@Example.com", "averylongpassword")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	// Email is normalized to lowercase
	if user.Email != "tester@example.com" {
		t.Errorf("Expected normalized email, got %q", user.Email)
	}

	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}
}

func TestNewUserValidationFailures(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"empty email", "", "averylongpassword", ErrEmptyEmail},
		{"missing at sign", "not-an-email", "averylongpassword", ErrInvalidEmail},
		{"missing domain dot", "user@localhost", "averylongpassword", ErrInvalidEmail},
		{"short password", "user@example.com", "short", ErrPasswordTooShort},
		{
			"long password",
			"user@example.com",
			string(make([]byte, 80)),
			ErrPasswordTooLong,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewUser(tc.email, tc.password)
			if err != tc.wantErr {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestUserValidateLoadedFromStore(t *testing.T) {
	t.Parallel()
	// Users loaded from the database carry only a hash, no plaintext password.
	user := User{
		ID:             uuid.New(),
		Email:          "user@example.com",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
	}

	if err := user.Validate(); err != nil {
		t.Errorf("Expected no error for stored user, got %v", err)
	}

	user.HashedPassword = ""
	if err := user.Validate(); err != ErrEmptyPassword {
		t.Errorf("Expected error %v, got %v", ErrEmptyPassword, err)
	}
}
