package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jinlabs/users-management/internal/core/domain"
	"github.com/jinlabs/users-management/internal/infrastructure/security"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     map[int64]*domain.User
	nextID    int64
	err       error // if set, every call returns this error
	skipID    bool  // if set, Create leaves ID unassigned
	mutations int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User), nextID: 1}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) seed(u *domain.User) {
	r.users[u.ID] = cloneUser(u)
	if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.mutations++
	created := cloneUser(user)
	if r.skipID {
		return created, nil
	}
	created.ID = r.nextID
	r.nextID++
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	r.mutations++
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	r.mutations++
	delete(r.users, id)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.UserEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.UserEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func newCodec(t *testing.T, opts ...security.Option) *security.JWTCodec {
	t.Helper()
	c, err := security.NewJWTCodec([]byte("service-test-key-0123456789abcdef01"), opts...)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return c
}

func newHasher() *security.BcryptHasher {
	return security.NewBcryptHasher(bcrypt.MinCost)
}

func newAuthService(t *testing.T, repo *stubUserRepo, pub *recordingPublisher, opts ...security.Option) (*AuthService, *security.JWTCodec) {
	t.Helper()
	codec := newCodec(t, opts...)
	svc := NewAuthService(AuthDependencies{
		Users:  repo,
		Hasher: newHasher(),
		Tokens: codec,
		Events: pub,
		Logger: zerolog.Nop(),
	})
	return svc, codec
}
