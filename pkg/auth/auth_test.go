package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewVerifier("secret", "taskforge")
	actor := Actor{UserID: "u1", Role: RoleProjectManager, OrganizationID: "o1"}

	token, err := v.Sign(actor, time.Hour)
	require.NoError(t, err)

	got, err := v.Verify(token)
	require.NoError(t, err)
	require.Equal(t, actor, got)
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier("secret", "taskforge")

	other, err := NewVerifier("other", "taskforge").Sign(Actor{UserID: "u1", Role: RoleEmployee}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(other)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired, err := v.Sign(Actor{UserID: "u1", Role: RoleEmployee}, -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	require.ErrorIs(t, err, ErrInvalidToken)

	badRole, err := v.Sign(Actor{UserID: "u1", Role: "ROOT"}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(badRole)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewVerifier("", "").Verify("anything")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestActorContext(t *testing.T) {
	_, ok := ActorFromContext(context.Background())
	require.False(t, ok)

	ctx := WithActor(context.Background(), Actor{UserID: "u1", Role: RoleOrgAdmin})
	a, ok := ActorFromContext(ctx)
	require.True(t, ok)
	require.True(t, a.HasRole(RoleOrgAdmin, RoleProjectManager))
	require.False(t, a.HasRole(RoleEmployee))
}
