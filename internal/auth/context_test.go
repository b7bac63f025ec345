package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"social-blog/internal/session"
	"social-blog/internal/user"
)

func TestFromSessionAnonymous(t *testing.T) {
	tests := []struct {
		name string
		sess *session.Session
	}{
		{"nil session", nil},
		{"empty session", &session.Session{}},
		{"session without user", &session.Session{SessionID: "sid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := FromSession(tt.sess)

			assert.Equal(t, uuid.Nil, ctx.VisitorID)
			assert.Nil(t, ctx.User)
			assert.False(t, ctx.Authenticated())
		})
	}
}

func TestFromSessionAuthenticated(t *testing.T) {
	id := uuid.New()
	sess := &session.Session{
		SessionID: "sid",
		User: &user.Summary{
			ID:        id,
			Username:  "alice",
			AvatarURL: "https://gravatar.com/avatar/abc?s=128",
		},
	}

	ctx := FromSession(sess)

	assert.Equal(t, id, ctx.VisitorID)
	assert.True(t, ctx.Authenticated())
	assert.Equal(t, "alice", ctx.User.Username)
}
