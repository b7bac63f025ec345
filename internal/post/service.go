package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"social-blog/internal/db"
	"social-blog/internal/sanitize"
	"social-blog/internal/user"
	"social-blog/internal/validate"
)

var (
	ErrNotFound     = errors.New("post not found")
	ErrUnauthorized = errors.New("not the post owner")
)

type Service struct {
	db *db.DB
}

func NewService(db *db.DB) *Service {
	return &Service{db: db}
}

// cleanUp strips markup from user-supplied fields before anything touches
// storage. Rendering applies the rich policy later, at read time.
func cleanUp(title, body string) (string, string) {
	return sanitize.Plain(strings.TrimSpace(title)),
		sanitize.Plain(strings.TrimSpace(body))
}

func validatePost(title, body string) validate.Errors {
	var verrs validate.Errors
	if title == "" {
		verrs = append(verrs, "You need to provide a title.")
	}
	if body == "" {
		verrs = append(verrs, "You must provide post content.")
	}
	return verrs
}

func (s *Service) Create(
	ctx context.Context,
	title string,
	body string,
	authorID uuid.UUID,
) (uuid.UUID, error) {

	title, body = cleanUp(title, body)
	if verrs := validatePost(title, body); len(verrs) > 0 {
		return uuid.Nil, verrs
	}

	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, body, author_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`, title, body, authorID).Scan(&id)

	if err != nil {
		return uuid.Nil, fmt.Errorf("post: failed to insert: %w", err)
	}

	return id, nil
}

// Update edits a post after confirming the visitor owns it. The owner check
// happens before validation so a non-owner learns nothing about the content
// rules.
func (s *Service) Update(
	ctx context.Context,
	id string,
	title string,
	body string,
	visitorID uuid.UUID,
) error {

	existing, err := s.FindSingleByID(ctx, id, visitorID)
	if err != nil {
		return err
	}
	if !existing.IsVisitorOwner {
		return ErrUnauthorized
	}

	title, body = cleanUp(title, body)
	if verrs := validatePost(title, body); len(verrs) > 0 {
		return verrs
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE posts
		SET title = $1, body = $2
		WHERE id = $3
	`, title, body, existing.ID)

	if err != nil {
		return fmt.Errorf("post: failed to update: %w", err)
	}

	return nil
}

func (s *Service) Delete(ctx context.Context, id string, visitorID uuid.UUID) error {
	existing, err := s.FindSingleByID(ctx, id, visitorID)
	if err != nil {
		return err
	}
	if !existing.IsVisitorOwner {
		return ErrUnauthorized
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM posts WHERE id = $1
	`, existing.ID)

	if err != nil {
		return fmt.Errorf("post: failed to delete: %w", err)
	}

	return nil
}

// viewQuery is the shared author-join projection behind every read path.
const viewQuery = `
	SELECT p.id, p.title, p.body, p.created_at, p.author_id, u.username, u.email
	FROM posts p
	JOIN users u ON u.id = p.author_id
`

func (s *Service) queryViews(
	ctx context.Context,
	visitorID uuid.UUID,
	clause string,
	args ...any,
) ([]View, error) {

	rows, err := s.db.QueryContext(ctx, viewQuery+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("post: query failed: %w", err)
	}
	defer rows.Close()

	views := []View{}
	for rows.Next() {
		var (
			v        View
			authorID uuid.UUID
			email    string
		)
		err := rows.Scan(
			&v.ID, &v.Title, &v.Body, &v.CreatedAt,
			&authorID, &v.Author.Username, &email,
		)
		if err != nil {
			return nil, fmt.Errorf("post: scan failed: %w", err)
		}
		v.Author.AvatarURL = user.AvatarURL(email)
		v.IsVisitorOwner = visitorID != uuid.Nil && authorID == visitorID
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("post: query failed: %w", err)
	}

	return views, nil
}

// FindSingleByID loads one post with its author. A malformed id is treated
// the same as a missing one.
func (s *Service) FindSingleByID(
	ctx context.Context,
	id string,
	visitorID uuid.UUID,
) (*View, error) {

	postID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	views, err := s.queryViews(ctx, visitorID, `WHERE p.id = $1`, postID)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrNotFound
	}

	return &views[0], nil
}

func (s *Service) FindByAuthorID(ctx context.Context, authorID uuid.UUID) ([]View, error) {
	return s.queryViews(ctx, uuid.Nil, `
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC
	`, authorID)
}

// Search runs a full-text query over titles and bodies, most relevant first.
func (s *Service) Search(ctx context.Context, term string) ([]View, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []View{}, nil
	}

	return s.queryViews(ctx, uuid.Nil, `
		WHERE to_tsvector('english', p.title || ' ' || p.body)
		      @@ plainto_tsquery('english', $1)
		ORDER BY ts_rank(
			to_tsvector('english', p.title || ' ' || p.body),
			plainto_tsquery('english', $1)
		) DESC
	`, term)
}

func (s *Service) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM posts WHERE author_id = $1
	`, authorID).Scan(&count)

	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("post: count failed: %w", err)
	}
	return count, nil
}

// Feed returns the newest posts from every author the visitor follows.
func (s *Service) Feed(ctx context.Context, visitorID uuid.UUID) ([]View, error) {
	return s.queryViews(ctx, visitorID, `
		WHERE p.author_id IN (
			SELECT followed_id FROM follows WHERE follower_id = $1
		)
		ORDER BY p.created_at DESC
	`, visitorID)
}
