package user

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" driver ")
	if err != nil {
		t.Fatalf("ParseRole: %v", err)
	}
	if r != RoleDriver {
		t.Fatalf("expected DRIVER, got %s", r)
	}

	if _, err := ParseRole("superuser"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestNewUser(t *testing.T) {
	u, err := NewUser("  Ada@Example.COM ", RoleCustomer, "hash", "Ada", "Lovelace", "+1-555-0100")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("email must be lowercased, got %q", u.Email)
	}
	if u.FullName() != "Ada Lovelace" {
		t.Fatalf("FullName: got %q", u.FullName())
	}

	if _, err := NewUser("not-an-email", RoleCustomer, "", "A", "B", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := NewUser("a@b.com", RoleCustomer, "", "", "B", ""); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := NewUser("a@b.com", Role("ROOT"), "", "A", "B", ""); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	// dispatcher-created customers carry no password hash
	guest, err := NewUser("guest@example.com", RoleCustomer, "", "Guest", "Customer", "")
	if err != nil {
		t.Fatalf("NewUser (password-less): %v", err)
	}
	if guest.PasswordHash != "" {
		t.Fatalf("expected empty password hash")
	}
}
