package service

import (
	"sync"
	"testing"
	"time"

	"github.com/202201638/security-project/internal/auth/store"
	"github.com/202201638/security-project/internal/auth/store/drivers/sqlite"
	"github.com/202201638/security-project/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret-with-enough-entropy-0123456789"
	testIssuer = "security-project-test"
)

// fakeClock is a settable clock shared by the token service and the tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Now().UTC().Truncate(time.Second)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// cheapHasher keeps argon2id but with parameters small enough for tests.
func cheapHasher() cryptox.Hasher {
	return &cryptox.Argon2Hasher{
		Params: cryptox.Argon2Params{Memory: 64, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16},
		Pepper: "test-pepper",
	}
}

type testEnv struct {
	store    store.Store
	clock    *fakeClock
	tokens   *TokenService
	sessions *SessionService
	users    *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	clock := newFakeClock()
	tokens, err := NewTokenService([]byte(testSecret), testIssuer, time.Hour, 7*24*time.Hour, clock.Now)
	require.NoError(t, err)

	hasher := cheapHasher()
	return &testEnv{
		store:    st,
		clock:    clock,
		tokens:   tokens,
		sessions: &SessionService{Store: st, Hasher: hasher, Tokens: tokens},
		users:    &UserService{Store: st, Hasher: hasher},
	}
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "error: %v", err)
}
