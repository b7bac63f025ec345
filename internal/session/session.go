package session

import (
	"time"

	"social-blog/internal/user"
)

// TTL is the session lifetime. Every write pushes expiry out by this much.
const TTL = 24 * time.Hour

// Flash holds one-shot feedback messages queued for the next render cycle.
type Flash struct {
	Errors  []string `json:"errors,omitempty"`
	Success []string `json:"success,omitempty"`
}

// Empty reports whether no messages are queued.
func (f Flash) Empty() bool {
	return len(f.Errors) == 0 && len(f.Success) == 0
}

// Session is the server-side state behind one session cookie. The same
// payload backs HTTP requests and realtime connections.
type Session struct {
	SessionID string        `json:"session_id"`
	User      *user.Summary `json:"user,omitempty"`
	Flash     Flash         `json:"flash"`
	CSRFToken string        `json:"csrf_token,omitempty"`
	ExpiresAt time.Time     `json:"expires_at"`
}

func (s *Session) AddError(msg string) {
	s.Flash.Errors = append(s.Flash.Errors, msg)
}

func (s *Session) AddSuccess(msg string) {
	s.Flash.Success = append(s.Flash.Success, msg)
}

// PopFlash returns all queued messages and clears the queue. The cleared
// state still has to be persisted by the caller for read-once semantics to
// hold across requests.
func (s *Session) PopFlash() Flash {
	f := s.Flash
	s.Flash = Flash{}
	return f
}

func (s *Session) clone() *Session {
	c := *s
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	c.Flash.Errors = append([]string(nil), s.Flash.Errors...)
	c.Flash.Success = append([]string(nil), s.Flash.Success...)
	return &c
}
