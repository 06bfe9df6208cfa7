package user

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/onlyarts/service-core-go/internal/status"
	"github.com/ovaphlow/onlyarts/service-core-go/internal/user/entity"
)

type memRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
	err   error
}

func newMemRepo() *memRepo { return &memRepo{users: map[string]*entity.User{}} }

func (m *memRepo) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memRepo) UpdatePassword(_ context.Context, id, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return false, nil
	}
	u.PasswordHash = hash
	return true, nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id string, s status.Flags) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return false, nil
	}
	u.Status = s
	return true, nil
}

func newTestService(t *testing.T) (*UserService, *memRepo) {
	t.Helper()
	r := newMemRepo()
	return NewUserService(r, BcryptHasher{Cost: bcrypt.MinCost}, nil), r
}

func register(t *testing.T, s *UserService, email, pw string) *entity.User {
	t.Helper()
	u, err := s.Register(context.Background(), RegisterInput{Email: email, Password: pw, FirstName: "Ann"})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	s, r := newTestService(t)
	u := register(t, s, "  Ann@Example.com ", "pw1")

	assert.Len(t, u.ID, userIDLength)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.NotEqual(t, "pw1", u.PasswordHash)
	assert.Equal(t, status.Flags(0), u.Status)

	stored := r.users[u.ID]
	require.NotNil(t, stored)
	assert.True(t, s.hasher.Verify(stored.PasswordHash, "pw1"))

	_, err := s.Register(context.Background(), RegisterInput{Email: "ann@example.com", Password: "x"})
	assert.True(t, errors.Is(err, ErrEmailTaken))

	_, err = s.Register(context.Background(), RegisterInput{Email: "", Password: "x"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestAuthenticate(t *testing.T) {
	s, r := newTestService(t)
	u := register(t, s, "ann@example.com", "pw1")

	got, err := s.Authenticate(context.Background(), "ANN@example.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Authenticate(context.Background(), "ann@example.com", "nope")
	assert.True(t, errors.Is(err, ErrBadCredentials))

	_, err = s.Authenticate(context.Background(), "ghost@example.com", "pw1")
	assert.True(t, errors.Is(err, ErrBadCredentials))

	r.users[u.ID].Status = 0b010
	_, err = s.Authenticate(context.Background(), "ann@example.com", "pw1")
	assert.True(t, errors.Is(err, ErrRemoved))

	r.users[u.ID].Status = 0b100
	_, err = s.Authenticate(context.Background(), "ann@example.com", "pw1")
	assert.True(t, errors.Is(err, ErrBanned))
}

func TestAuthenticateHidesStateWithoutPassword(t *testing.T) {
	s, r := newTestService(t)
	u := register(t, s, "ann@example.com", "pw1")

	for _, st := range []status.Flags{0b010, 0b100, 0b110} {
		r.users[u.ID].Status = st
		_, err := s.Authenticate(context.Background(), "ann@example.com", "wrong")
		assert.True(t, errors.Is(err, ErrBadCredentials), "status %#b", st)
	}
}

func TestLongPasswordRoundTrip(t *testing.T) {
	s, _ := newTestService(t)
	long := strings.Repeat("x", 100)
	u := register(t, s, "ann@example.com", long)

	_, err := s.Authenticate(context.Background(), "ann@example.com", long)
	require.NoError(t, err)

	longer := strings.Repeat("y", 200)
	require.NoError(t, s.ChangePassword(context.Background(), u.ID, long, longer))
	require.NoError(t, s.ResetPassword(context.Background(), u.ID, long+"z"))
	_, err = s.Authenticate(context.Background(), "ann@example.com", long+"z")
	require.NoError(t, err)
}

func TestAuthenticateRehashes(t *testing.T) {
	r := newMemRepo()
	weak := NewUserService(r, BcryptHasher{Cost: bcrypt.MinCost}, nil)
	u := register(t, weak, "ann@example.com", "pw1")
	before := r.users[u.ID].PasswordHash

	strong := NewUserService(r, BcryptHasher{Cost: bcrypt.MinCost + 1}, nil)
	_, err := strong.Authenticate(context.Background(), "ann@example.com", "pw1")
	require.NoError(t, err)

	after := r.users[u.ID].PasswordHash
	assert.NotEqual(t, before, after)
	c, err := bcrypt.Cost([]byte(after))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, c)
}

func TestChangePasswordWrongOld(t *testing.T) {
	s, r := newTestService(t)
	u := register(t, s, "ann@example.com", "original")
	before := r.users[u.ID].PasswordHash

	err := s.ChangePassword(context.Background(), u.ID, "wrong", "next")
	assert.True(t, errors.Is(err, ErrCredentialMismatch))

	after := r.users[u.ID].PasswordHash
	assert.Equal(t, before, after)
	assert.True(t, s.hasher.Verify(after, "original"))
}

func TestChangePassword(t *testing.T) {
	s, r := newTestService(t)
	u := register(t, s, "ann@example.com", "original")

	require.NoError(t, s.ChangePassword(context.Background(), u.ID, "original", "next"))
	assert.True(t, s.hasher.Verify(r.users[u.ID].PasswordHash, "next"))
	assert.False(t, s.hasher.Verify(r.users[u.ID].PasswordHash, "original"))

	err := s.ChangePassword(context.Background(), "missing", "a", "b")
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestResetPassword(t *testing.T) {
	s, r := newTestService(t)
	u := register(t, s, "ann@example.com", "original")

	require.NoError(t, s.ResetPassword(context.Background(), u.ID, "fresh"))
	assert.True(t, s.hasher.Verify(r.users[u.ID].PasswordHash, "fresh"))

	assert.True(t, errors.Is(s.ResetPassword(context.Background(), u.ID, ""), ErrInvalidInput))
	assert.True(t, errors.Is(s.ResetPassword(context.Background(), "missing", "x"), ErrUserNotFound))
}

func TestSetOnlinePreservesOtherBits(t *testing.T) {
	s, r := newTestService(t)
	u := register(t, s, "ann@example.com", "pw")
	r.users[u.ID].Status = 0b100

	require.NoError(t, s.SetOnline(context.Background(), u.ID, true))
	assert.Equal(t, status.Flags(0b101), r.users[u.ID].Status)

	require.NoError(t, s.SetOnline(context.Background(), u.ID, true))
	assert.Equal(t, status.Flags(0b101), r.users[u.ID].Status)

	require.NoError(t, s.SetOnline(context.Background(), u.ID, false))
	assert.Equal(t, status.Flags(0b100), r.users[u.ID].Status)
}

func TestRepositoryErrorPropagates(t *testing.T) {
	s, r := newTestService(t)
	r.err = errors.New("db down")
	_, err := s.GetByID(context.Background(), "x")
	assert.EqualError(t, err, "db down")
	_, err = s.Authenticate(context.Background(), "a@b.c", "pw")
	assert.EqualError(t, err, "db down")
}
