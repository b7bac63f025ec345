package post

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID        uuid.UUID
	Title     string
	Body      string
	CreatedAt time.Time
	AuthorID  uuid.UUID
}

// Author is the slice of the author record a rendered post exposes. The
// author's id stays server-side.
type Author struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar"`
}

// View is a post joined with its author, shaped for templates and the API.
type View struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"createdDate"`
	Author         Author    `json:"author"`
	IsVisitorOwner bool      `json:"isVisitorOwner"`
}
