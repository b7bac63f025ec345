package user

import (
	"crypto/md5"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Summary is the identity projection written into sessions and embedded in
// post views. It is always derived from a full user record, never stored on
// its own.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar"`
}

func (u *User) Summary() *Summary {
	return &Summary{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: AvatarURL(u.Email),
	}
}

// AvatarURL derives the gravatar address for an email.
func AvatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://gravatar.com/avatar/%x?s=128", sum)
}
