package service

import (
	"context"
	"testing"
	"time"

	"github.com/202201638/security-project/internal/auth/metrics"
	"github.com/202201638/security-project/pkg/cryptox"
	"github.com/202201638/security-project/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestHousekeeping_Sweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	register(t, env, "alice", "")

	stale, err := env.sessions.Login(ctx, "alice", "Passw0rd!")
	require.NoError(t, err)

	env.clock.Advance(6 * 24 * time.Hour)
	fresh, err := env.sessions.Login(ctx, "alice", "Passw0rd!")
	require.NoError(t, err)

	m := metrics.New()
	hk := NewHousekeepingService(env.store, slogx.Discard(), m, time.Hour)
	hk.Now = func() time.Time { return env.clock.Now().Add(2 * 24 * time.Hour) }

	n, err := hk.Sweep(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = env.store.RefreshTokens().FindRefreshToken(ctx, cryptox.FingerprintToken(stale.RefreshToken))
	require.Error(t, err)
	_, err = env.store.RefreshTokens().FindRefreshToken(ctx, cryptox.FingerprintToken(fresh.RefreshToken))
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(m.Registry(), "auth_refresh_tokens_swept_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestHousekeeping_StartStop(t *testing.T) {
	env := newTestEnv(t)

	hk := NewHousekeepingService(env.store, slogx.Discard(), nil, 10*time.Millisecond)
	hk.Start()
	time.Sleep(30 * time.Millisecond)
	hk.Stop()
	hk.Stop()
}
