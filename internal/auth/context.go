package auth

import (
	"github.com/google/uuid"

	"social-blog/internal/session"
	"social-blog/internal/user"
)

// Context is the effective identity of one request or one realtime
// connection. VisitorID is uuid.Nil for anonymous visitors.
type Context struct {
	VisitorID uuid.UUID
	User      *user.Summary
}

// FromSession derives the authorization context from a resolved session.
// The HTTP pipeline and the realtime bridge both go through this one
// derivation, so the two transports can never disagree about identity.
func FromSession(s *session.Session) Context {
	if s == nil || s.User == nil {
		return Context{}
	}
	return Context{
		VisitorID: s.User.ID,
		User:      s.User,
	}
}

func (c Context) Authenticated() bool {
	return c.User != nil
}
