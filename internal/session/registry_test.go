package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/lnbitsd/internal/config"
	"github.com/fyrsmithlabs/lnbitsd/internal/runtimeconfig"
)

func baseConfig() config.LNbitsConfig {
	return config.LNbitsConfig{
		URL:                "https://demo.lnbits.com",
		AuthMethod:         "api_key_header",
		Timeout:            30,
		MaxRetries:         3,
		RateLimitPerMinute: 60,
	}
}

func newTestRegistry(timeout time.Duration) *Registry {
	return NewRegistry(baseConfig(), config.SessionConfig{
		Timeout:       config.Duration(timeout),
		SweepInterval: config.Duration(time.Minute),
	}, nil)
}

func strPtr(s string) *string { return &s }

func TestCreateAndGet(t *testing.T) {
	r := newTestRegistry(time.Hour)

	sess := r.Create()
	assert.NotEmpty(t, sess.ID)
	assert.NotNil(t, sess.Config)
	assert.Equal(t, 1, r.Len())

	got, ok := r.Get(sess.ID)
	require.True(t, ok)
	assert.Equal(t, sess.ID, got.ID)
	assert.Same(t, sess.Config, got.Config)

	_, ok = r.Get("unknown")
	assert.False(t, ok)
}

func TestSessionsAreIsolated(t *testing.T) {
	r := newTestRegistry(time.Hour)
	a := r.Create()
	b := r.Create()

	_, err := a.Config.Update(runtimeconfig.UpdateRequest{APIKey: strPtr("key-a")})
	require.NoError(t, err)

	assert.True(t, a.Config.IsConfigured())
	assert.False(t, b.Config.IsConfigured())
	assert.Equal(t, "key-a", a.Config.Config().APIKey.Value())
	assert.False(t, b.Config.Config().APIKey.IsSet())
}

func TestGetOrCreate(t *testing.T) {
	r := newTestRegistry(time.Hour)

	implicit := r.GetOrCreate("")
	assert.NotEmpty(t, implicit.ID)

	same := r.GetOrCreate(implicit.ID)
	assert.Equal(t, implicit.ID, same.ID)

	replaced := r.GetOrCreate("never-issued")
	assert.NotEqual(t, "never-issued", replaced.ID)
	assert.Equal(t, 3, r.Len())
}

func TestRemove(t *testing.T) {
	r := newTestRegistry(time.Hour)
	sess := r.Create()

	assert.True(t, r.Remove(sess.ID))
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Remove(sess.ID))
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	r := newTestRegistry(50 * time.Millisecond)
	idle := r.Create()
	active := r.Create()

	time.Sleep(80 * time.Millisecond)

	// touching keeps the session alive past the cutoff
	_, ok := r.Get(active.ID)
	require.True(t, ok)

	r.Sweep()

	_, ok = r.Get(idle.ID)
	assert.False(t, ok)
	_, ok = r.Get(active.ID)
	assert.True(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestStartStop(t *testing.T) {
	r := NewRegistry(baseConfig(), config.SessionConfig{
		Timeout:       config.Duration(10 * time.Millisecond),
		SweepInterval: config.Duration(5 * time.Millisecond),
	}, nil)

	r.Create()
	r.Start()
	r.Start() // second Start is a no-op

	assert.Eventually(t, func() bool {
		return r.Len() == 0
	}, time.Second, 10*time.Millisecond)

	r.Stop()
	r.Stop() // second Stop is a no-op

	// registry still usable after Stop
	sess := r.Create()
	_, ok := r.Get(sess.ID)
	assert.True(t, ok)
}

func TestStopTearsDownSessions(t *testing.T) {
	r := newTestRegistry(time.Hour)
	r.Create()
	r.Create()
	r.Start()

	r.Stop()
	assert.Equal(t, 0, r.Len())
}
