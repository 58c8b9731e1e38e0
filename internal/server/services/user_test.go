package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/server/auth"
	"github.com/dmitrijs2005/conduit/internal/server/config"
)

func newUserService(t *testing.T, rm *fakeRepoManager) *UserService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })
	cfg := &config.Config{SecretKey: "k", TokenValidityDuration: time.Hour}
	return NewUserService(db, rm, cfg)
}

func TestRegister_Success(t *testing.T) {
	rm := newFakeRepoManager()
	s := newUserService(t, rm)

	view, err := s.Register(context.Background(), "Jake", "Jake@Jake.jake", "jakejake")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if view.Username != "jake" || view.Email != "jake@jake.jake" {
		t.Fatalf("expected normalized identity, got %+v", view)
	}
	if view.Token == "" {
		t.Fatal("expected a token")
	}

	claims, err := auth.ParseToken(view.Token, []byte("k"))
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.Username != "jake" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	stored := rm.userRepo.users[0]
	if stored.PasswordHash == "" || stored.PasswordHash == "jakejake" {
		t.Fatal("password must be stored hashed")
	}
	if !auth.VerifyPassword(stored, "jakejake") {
		t.Fatal("stored credentials must verify")
	}
}

func TestRegister_Validation(t *testing.T) {
	rm := newFakeRepoManager()
	s := newUserService(t, rm)

	_, err := s.Register(context.Background(), "", "", "")

	var ve *common.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	for _, field := range []string{"username", "email", "password"} {
		if len(ve.Fields[field]) == 0 {
			t.Fatalf("expected error for %q, got %+v", field, ve.Fields)
		}
	}
}

func TestRegister_InvalidEmail(t *testing.T) {
	rm := newFakeRepoManager()
	s := newUserService(t, rm)

	_, err := s.Register(context.Background(), "jake", "not-an-email", "pw")

	var ve *common.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if got := ve.Fields["email"]; len(got) != 1 || got[0] != "is invalid" {
		t.Fatalf("unexpected field errors: %+v", ve.Fields)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	rm := newFakeRepoManager()
	s := newUserService(t, rm)

	if _, err := s.Register(context.Background(), "jake", "jake@jake.jake", "pw"); err != nil {
		t.Fatalf("first Register error: %v", err)
	}

	_, err := s.Register(context.Background(), "jake", "other@jake.jake", "pw")

	var ve *common.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if got := ve.Fields["username"]; len(got) != 1 || got[0] != "is already taken" {
		t.Fatalf("unexpected field errors: %+v", ve.Fields)
	}
}

func TestLogin_Success(t *testing.T) {
	rm := newFakeRepoManager()
	s := newUserService(t, rm)

	if _, err := s.Register(context.Background(), "jake", "jake@jake.jake", "jakejake"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	view, err := s.Login(context.Background(), "JAKE@jake.jake", "jakejake")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if view.Username != "jake" || view.Token == "" {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	rm := newFakeRepoManager()
	s := newUserService(t, rm)

	if _, err := s.Register(context.Background(), "jake", "jake@jake.jake", "jakejake"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, err := s.Login(context.Background(), "jake@jake.jake", "wrong")
	if !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	rm := newFakeRepoManager()
	s := newUserService(t, rm)

	// Unknown email and wrong password produce the same error, so a caller
	// cannot probe which addresses are registered.
	_, err := s.Login(context.Background(), "ghost@jake.jake", "whatever")
	if !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestGetCurrent_NotFound(t *testing.T) {
	rm := newFakeRepoManager()
	s := newUserService(t, rm)

	_, err := s.GetCurrent(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestUpdate_PartialPatch(t *testing.T) {
	rm := newFakeRepoManager()
	s := newUserService(t, rm)

	if _, err := s.Register(context.Background(), "jake", "jake@jake.jake", "jakejake"); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	userID := rm.userRepo.users[0].ID

	bio := "I like to skateboard"
	view, err := s.Update(context.Background(), userID, UserPatch{Bio: &bio})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	if view.Bio != bio {
		t.Fatalf("bio not updated: %+v", view)
	}
	if view.Username != "jake" || view.Email != "jake@jake.jake" {
		t.Fatalf("omitted fields must keep their values: %+v", view)
	}
}

func TestUpdate_PasswordChange(t *testing.T) {
	rm := newFakeRepoManager()
	s := newUserService(t, rm)

	if _, err := s.Register(context.Background(), "jake", "jake@jake.jake", "oldpass"); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	userID := rm.userRepo.users[0].ID

	newPass := "newpass"
	if _, err := s.Update(context.Background(), userID, UserPatch{Password: &newPass}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	if _, err := s.Login(context.Background(), "jake@jake.jake", "oldpass"); !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := s.Login(context.Background(), "jake@jake.jake", "newpass"); err != nil {
		t.Fatalf("new password must work, got %v", err)
	}
}

func TestUpdate_InvalidEmail(t *testing.T) {
	rm := newFakeRepoManager()
	s := newUserService(t, rm)

	if _, err := s.Register(context.Background(), "jake", "jake@jake.jake", "pw"); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	userID := rm.userRepo.users[0].ID

	bad := "not-an-email"
	_, err := s.Update(context.Background(), userID, UserPatch{Email: &bad})

	var ve *common.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}
