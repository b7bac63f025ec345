package follow

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"social-blog/internal/db"
	"social-blog/internal/user"
	"social-blog/internal/validate"
)

type Service struct {
	db *db.DB
}

func NewService(db *db.DB) *Service {
	return &Service{db: db}
}

func (s *Service) resolveUsername(ctx context.Context, username string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM users WHERE username = $1
	`, strings.ToLower(strings.TrimSpace(username))).Scan(&id)

	if err == sql.ErrNoRows {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("follow: user lookup failed: %w", err)
	}
	return id, nil
}

func (s *Service) exists(ctx context.Context, followedID, followerID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follows
			WHERE followed_id = $1 AND follower_id = $2
		)
	`, followedID, followerID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("follow: lookup failed: %w", err)
	}
	return exists, nil
}

// Create records that the visitor follows the named account. Follows are
// stored by id so a later username change does not break them.
func (s *Service) Create(ctx context.Context, followedUsername string, visitorID uuid.UUID) error {
	followedID, err := s.resolveUsername(ctx, followedUsername)
	if err != nil {
		return err
	}

	var verrs validate.Errors
	if followedID == uuid.Nil {
		return append(verrs, "You cannot follow a user that does not exist.")
	}
	if followedID == visitorID {
		verrs = append(verrs, "You cannot follow yourself.")
	}

	already, err := s.exists(ctx, followedID, visitorID)
	if err != nil {
		return err
	}
	if already {
		verrs = append(verrs, "You are already following this user.")
	}

	if len(verrs) > 0 {
		return verrs
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO follows (followed_id, follower_id)
		VALUES ($1, $2)
	`, followedID, visitorID)

	if err != nil {
		return fmt.Errorf("follow: failed to insert: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, followedUsername string, visitorID uuid.UUID) error {
	followedID, err := s.resolveUsername(ctx, followedUsername)
	if err != nil {
		return err
	}

	var verrs validate.Errors
	if followedID == uuid.Nil {
		return append(verrs, "You cannot follow a user that does not exist.")
	}

	existing, err := s.exists(ctx, followedID, visitorID)
	if err != nil {
		return err
	}
	if !existing {
		return append(verrs, "Cannot delete follow that doesn't exist.")
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM follows
		WHERE followed_id = $1 AND follower_id = $2
	`, followedID, visitorID)

	if err != nil {
		return fmt.Errorf("follow: failed to delete: %w", err)
	}
	return nil
}

func (s *Service) IsVisitorFollowing(ctx context.Context, followedID, visitorID uuid.UUID) (bool, error) {
	if visitorID == uuid.Nil {
		return false, nil
	}
	return s.exists(ctx, followedID, visitorID)
}

func (s *Service) listRelated(ctx context.Context, clause string, id uuid.UUID) ([]user.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.email
		FROM follows f
		JOIN users u `+clause+`
	`, id)
	if err != nil {
		return nil, fmt.Errorf("follow: query failed: %w", err)
	}
	defer rows.Close()

	summaries := []user.Summary{}
	for rows.Next() {
		var (
			sum   user.Summary
			email string
		)
		if err := rows.Scan(&sum.ID, &sum.Username, &email); err != nil {
			return nil, fmt.Errorf("follow: scan failed: %w", err)
		}
		sum.AvatarURL = user.AvatarURL(email)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("follow: query failed: %w", err)
	}

	return summaries, nil
}

// Followers lists the accounts following userID.
func (s *Service) Followers(ctx context.Context, userID uuid.UUID) ([]user.Summary, error) {
	return s.listRelated(ctx, `ON u.id = f.follower_id WHERE f.followed_id = $1`, userID)
}

// Following lists the accounts userID follows.
func (s *Service) Following(ctx context.Context, userID uuid.UUID) ([]user.Summary, error) {
	return s.listRelated(ctx, `ON u.id = f.followed_id WHERE f.follower_id = $1`, userID)
}

func (s *Service) CountFollowers(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.count(ctx, `followed_id`, userID)
}

func (s *Service) CountFollowing(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.count(ctx, `follower_id`, userID)
}

func (s *Service) count(ctx context.Context, column string, id uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM follows WHERE `+column+` = $1
	`, id).Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("follow: count failed: %w", err)
	}
	return count, nil
}
