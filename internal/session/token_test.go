package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/ident"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/session"
	"github.com/nhle/taskflow/tests/testutil"
)

func TestJWTIssuerRoundTrip(t *testing.T) {
	issuer := session.NewJWTIssuer(session.JWTConfig{Secret: "k", TTL: time.Hour, Issuer: "taskflow"}, testutil.NewClock())
	user := model.User{ID: "2", Email: "sarah@taskflow.com", Role: model.RoleManager}

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "2", claims.UserID)
	assert.Equal(t, "2", claims.Subject)
	assert.Equal(t, "sarah@taskflow.com", claims.Email)
	assert.Equal(t, model.RoleManager, claims.Role)
	assert.Equal(t, "taskflow", claims.Issuer)
}

func TestJWTIssuerExpiredToken(t *testing.T) {
	clock := ident.NewStepClock(testutil.Epoch, time.Minute)
	issuer := session.NewJWTIssuer(session.JWTConfig{Secret: "k", TTL: 30 * time.Second}, clock)

	token, err := issuer.Issue(model.User{ID: "1"})
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, session.ErrExpiredToken)
}

func TestJWTIssuerRejectsGarbage(t *testing.T) {
	issuer := session.NewJWTIssuer(session.JWTConfig{Secret: "k"}, nil)

	_, err := issuer.Parse("not.a.token")
	assert.ErrorIs(t, err, session.ErrInvalidToken)
}

func TestJWTIssuerRejectsOtherIssuer(t *testing.T) {
	clock := testutil.NewClock()
	a := session.NewJWTIssuer(session.JWTConfig{Secret: "k", Issuer: "a"}, clock)
	b := session.NewJWTIssuer(session.JWTConfig{Secret: "k", Issuer: "b"}, clock)

	token, err := a.Issue(model.User{ID: "1"})
	require.NoError(t, err)

	_, err = b.Parse(token)
	assert.ErrorIs(t, err, session.ErrInvalidToken)
}
