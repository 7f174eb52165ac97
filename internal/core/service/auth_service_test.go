package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jinlabs/users-management/internal/core/domain"
	"github.com/jinlabs/users-management/internal/core/ports"
	"github.com/jinlabs/users-management/internal/infrastructure/security"
)

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	pub := &recordingPublisher{}
	svc, _ := newAuthService(t, repo, pub)

	res := svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "p", Role: "USER", Name: "Ann", City: "Seoul"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", res.StatusCode, res.Error)
	}
	if res.User == nil || res.User.ID <= 0 {
		t.Fatalf("expected user with positive id, got %+v", res.User)
	}
	if res.Message != "User Saved Successfully" {
		t.Fatalf("unexpected message: %q", res.Message)
	}

	stored := repo.users[res.User.ID]
	if stored.PasswordHash == "p" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("p")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if stored.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", stored.Role)
	}

	if len(pub.events) != 1 || pub.events[0].Type != domain.UserRegistered || pub.events[0].UserID != res.User.ID {
		t.Fatalf("expected one user.registered event, got %+v", pub.events)
	}
}

func TestAuthService_Register_ThenResolve(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthService(t, repo, &recordingPublisher{})

	if res := svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "p", Role: "USER"}); res.StatusCode != http.StatusOK {
		t.Fatalf("register failed: %+v", res)
	}

	user, err := NewIdentityResolver(repo).LoadByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.PasswordHash == "p" {
		t.Fatalf("stored value equals plaintext")
	}
	if err := newHasher().Compare(user.PasswordHash, "p"); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthService(t, repo, &recordingPublisher{})

	cases := []ports.RegisterInput{
		{Email: "", Password: "p", Role: "USER"},
		{Email: "a@x.com", Password: "", Role: "USER"},
		{Email: "a@x.com", Password: "p", Role: "user"},
		{Email: "a@x.com", Password: "p", Role: ""},
	}
	for _, in := range cases {
		if res := svc.Register(context.Background(), in); res.StatusCode != http.StatusBadRequest {
			t.Fatalf("%+v: expected 400, got %d", in, res.StatusCode)
		}
	}
	if repo.mutations != 0 {
		t.Fatalf("invalid registrations must not reach the store")
	}
}

func TestAuthService_Register_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.err = errors.New("connection refused")
	svc, _ := newAuthService(t, repo, &recordingPublisher{})

	res := svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "p", Role: "ADMIN"})
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.StatusCode)
	}
	if !strings.Contains(res.Error, "connection refused") {
		t.Fatalf("expected store error text, got %q", res.Error)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthService(t, repo, &recordingPublisher{})

	_ = svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "p", Role: "USER"})
	res := svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "q", Role: "USER"})
	if res.StatusCode != http.StatusInternalServerError || res.Error != domain.ErrUserExists.Error() {
		t.Fatalf("expected 500 user exists, got %+v", res)
	}
}

func TestAuthService_Register_NoIDAssigned(t *testing.T) {
	repo := newStubUserRepo()
	repo.skipID = true
	pub := &recordingPublisher{}
	svc, _ := newAuthService(t, repo, pub)

	res := svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "p", Role: "USER"})
	if res.StatusCode != http.StatusInternalServerError || res.Error != domain.ErrIDNotAssigned.Error() {
		t.Fatalf("expected 500 id not assigned, got %+v", res)
	}
	if len(pub.events) != 0 {
		t.Fatalf("no event expected on failure")
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, codec := newAuthService(t, repo, &recordingPublisher{})
	_ = svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "p", Role: "USER"})

	res := svc.Login(context.Background(), "a@x.com", "p")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", res.StatusCode, res.Error)
	}
	if res.Token == "" || res.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", res)
	}
	if res.ExpirationTime != "24Hrs" {
		t.Fatalf("unexpected expiration label %q", res.ExpirationTime)
	}
	for _, tok := range []string{res.Token, res.RefreshToken} {
		sub, err := codec.ExtractSubject(tok)
		if err != nil || sub != "a@x.com" {
			t.Fatalf("token subject = %q, %v", sub, err)
		}
	}
}

func TestAuthService_Login_FailuresCollapse(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthService(t, repo, &recordingPublisher{})
	_ = svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "p", Role: "USER"})

	wrong := svc.Login(context.Background(), "a@x.com", "bad")
	unknown := svc.Login(context.Background(), "ghost@x.com", "p")

	for _, res := range []ports.Result{wrong, unknown} {
		if res.StatusCode != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", res.StatusCode)
		}
		if res.Token != "" || res.RefreshToken != "" {
			t.Fatalf("no tokens expected on failure")
		}
	}
	if wrong.Error != unknown.Error {
		t.Fatalf("wrong password and unknown user must look the same: %q vs %q", wrong.Error, unknown.Error)
	}
}

func TestAuthService_Refresh_Valid(t *testing.T) {
	repo := newStubUserRepo()
	svc, codec := newAuthService(t, repo, &recordingPublisher{})
	_ = svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "p", Role: "USER"})

	login := svc.Login(context.Background(), "a@x.com", "p")
	res := svc.Refresh(context.Background(), login.RefreshToken)

	if res.StatusCode != http.StatusOK || res.Token == "" {
		t.Fatalf("expected 200 with token, got %+v", res)
	}
	if res.RefreshToken != login.RefreshToken {
		t.Fatalf("refresh token must be echoed unchanged")
	}
	if res.ExpirationTime != "24Hr" {
		t.Fatalf("unexpected expiration label %q", res.ExpirationTime)
	}
	if sub, _ := codec.ExtractSubject(res.Token); sub != "a@x.com" {
		t.Fatalf("new token subject = %q", sub)
	}
}

func TestAuthService_Refresh_ExpiredReturnsOKWithoutToken(t *testing.T) {
	repo := newStubUserRepo()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc, _ := newAuthService(t, repo, &recordingPublisher{}, security.WithClock(clock.Now))
	_ = svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "p", Role: "USER"})

	login := svc.Login(context.Background(), "a@x.com", "p")
	clock.t = clock.t.Add(25 * time.Hour)

	res := svc.Refresh(context.Background(), login.RefreshToken)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if res.Token != "" || res.RefreshToken != "" {
		t.Fatalf("expected no token for an expired refresh token, got %+v", res)
	}
}

func TestAuthService_Refresh_Failures(t *testing.T) {
	repo := newStubUserRepo()
	svc, codec := newAuthService(t, repo, &recordingPublisher{})

	if res := svc.Refresh(context.Background(), "not-a-token"); res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("garbage token: expected 500, got %d", res.StatusCode)
	}

	orphan, err := codec.Issue("ghost@x.com", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if res := svc.Refresh(context.Background(), orphan); res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unknown subject: expected 500, got %d", res.StatusCode)
	}
}
