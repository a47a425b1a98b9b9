package store

import (
	"errors"
	"testing"

	"github.com/dukerupert/basket/internal/model"
)

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	return NewUserStore(setupTestDB(t))
}

func alice() model.User {
	return model.User{Email: "Alice@Example.com", Name: "Alice", Surname: "Smith", CellNumber: "0821234567"}
}

func TestUserCreate(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create(alice(), "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", u.Email, "alice@example.com")
	}
	if u.Name != "Alice" || u.Surname != "Smith" {
		t.Errorf("name = %q %q, want Alice Smith", u.Name, u.Surname)
	}
	if u.CellNumber != "0821234567" {
		t.Errorf("cell_number = %q", u.CellNumber)
	}
	if u.ID == "" {
		t.Error("expected non-empty ID")
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create(alice(), "hash"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	dup := alice()
	dup.Email = "alice@example.com"
	if _, err := us.Create(dup, "hash"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserGetByID(t *testing.T) {
	us := setupUserTestDB(t)

	created, _ := us.Create(alice(), "hash")
	u, err := us.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u == nil || u.Email != "alice@example.com" {
		t.Errorf("user = %+v", u)
	}
}

func TestUserGetByIDNotFound(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.GetByID("missing")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u != nil {
		t.Error("expected nil for nonexistent user")
	}
}

func TestUserGetByEmail(t *testing.T) {
	us := setupUserTestDB(t)
	us.Create(alice(), "hash")

	u, err := us.GetByEmail("  ALICE@example.com ")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u == nil {
		t.Fatal("expected user, got nil")
	}
}

func TestUserPasswordHash(t *testing.T) {
	us := setupUserTestDB(t)
	us.Create(alice(), "secret-hash")

	hash, err := us.PasswordHash("alice@example.com")
	if err != nil {
		t.Fatalf("password hash: %v", err)
	}
	if hash != "secret-hash" {
		t.Errorf("hash = %q, want %q", hash, "secret-hash")
	}

	hash, err = us.PasswordHash("nobody@example.com")
	if err != nil || hash != "" {
		t.Errorf("unknown email = %q, %v; want empty, nil", hash, err)
	}
}

func TestUserUpdateProfile(t *testing.T) {
	us := setupUserTestDB(t)
	created, _ := us.Create(alice(), "hash")

	u, err := us.UpdateProfile(created.ID, "Alicia", "Jones", "0830000000")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Name != "Alicia" || u.Surname != "Jones" || u.CellNumber != "0830000000" {
		t.Errorf("user = %+v", u)
	}
}
