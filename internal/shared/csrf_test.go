package shared

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFTokenRoundTrip(t *testing.T) {
	sm := newTestManager(t)
	mgr := NewCSRFManager("csrf-secret")
	sess := sm.newSession()

	token, err := mgr.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// EnsureToken is idempotent for a session.
	again, err := mgr.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	require.NoError(t, mgr.VerifyToken(context.Background(), sess, token))
}

func TestCSRFTokenMismatch(t *testing.T) {
	sm := newTestManager(t)
	mgr := NewCSRFManager("csrf-secret")
	sess := sm.newSession()

	token, err := mgr.EnsureToken(context.Background(), sess)
	require.NoError(t, err)

	err = mgr.VerifyToken(context.Background(), sess, token+"x")
	assert.True(t, errors.Is(err, ErrCSRFTokenMismatch))
}

func TestCSRFTokenMissing(t *testing.T) {
	sm := newTestManager(t)
	mgr := NewCSRFManager("csrf-secret")

	err := mgr.VerifyToken(context.Background(), sm.newSession(), "")
	assert.True(t, errors.Is(err, ErrCSRFTokenMissing))

	err = mgr.VerifyToken(context.Background(), nil, "anything")
	assert.True(t, errors.Is(err, ErrCSRFTokenMissing))

	// No token was ever issued for this session.
	err = mgr.VerifyToken(context.Background(), sm.newSession(), "forged")
	assert.True(t, errors.Is(err, ErrCSRFTokenMissing))
}
