package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"murmur/models"
	"murmur/repositories"
)

// MaxContentLength is the murmur length limit in characters (runes).
const MaxContentLength = 280

type Author struct {
	ID          models.ID
	Username    string
	DisplayName string
}

type MurmurView struct {
	ID        models.ID
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
	LikeCount int64
	LikedByMe bool
	Author    Author
}

// Murmurs implements create, edit, delete and like operations on murmurs.
type Murmurs struct {
	repo repositories.MurmurRepository
	now  func() time.Time
}

func NewMurmurs(repo repositories.MurmurRepository) *Murmurs {
	return &Murmurs{repo: repo, now: time.Now}
}

// ValidateContent trims content and checks it is 1..MaxContentLength runes.
func ValidateContent(content string) (string, error) {
	c := strings.TrimSpace(content)
	if c == "" {
		return "", Conflict("Content cannot be empty")
	}
	if utf8.RuneCountInString(c) > MaxContentLength {
		return "", Conflict(fmt.Sprintf("Content must be %d characters or less", MaxContentLength))
	}
	return c, nil
}

func (s *Murmurs) Create(ctx context.Context, authorID models.ID, content string) (*MurmurView, error) {
	c, err := ValidateContent(content)
	if err != nil {
		return nil, err
	}

	now := s.now()
	m := &models.Murmur{UserID: authorID, Content: c, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.Create(ctx, m); err != nil {
		if errors.Is(err, repositories.ErrMissingReference) {
			return nil, NotFound("User not found")
		}
		return nil, fmt.Errorf("create murmur: %w", err)
	}
	return s.GetByID(ctx, m.ID, authorID)
}

// GetByID returns the murmur with its like state for viewerID. A zero
// viewerID means an anonymous viewer, for whom LikedByMe is always false.
func (s *Murmurs) GetByID(ctx context.Context, id, viewerID models.ID) (*MurmurView, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := annotate(ctx, s.repo, []models.Murmur{*m}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Murmurs) Update(ctx context.Context, requesterID, id models.ID, content string) (*MurmurView, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanMutate(requesterID, m) {
		return nil, Forbidden("You can only edit your own murmurs")
	}
	c, err := ValidateContent(content)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateContent(ctx, id, c, s.now()); err != nil {
		return nil, fmt.Errorf("update murmur %d: %w", id, err)
	}
	return s.GetByID(ctx, id, requesterID)
}

func (s *Murmurs) Delete(ctx context.Context, requesterID, id models.ID) error {
	m, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !CanMutate(requesterID, m) {
		return Forbidden("You can only delete your own murmurs")
	}

	err = s.repo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFound("Murmur not found")
	}
	if err != nil {
		return fmt.Errorf("delete murmur %d: %w", id, err)
	}
	return nil
}

func (s *Murmurs) Like(ctx context.Context, userID, id models.ID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	err := s.repo.Like(ctx, userID, id)
	switch {
	case errors.Is(err, repositories.ErrDuplicate):
		return Conflict("You have already liked this murmur")
	case errors.Is(err, repositories.ErrMissingReference):
		return NotFound("Murmur not found")
	case err != nil:
		return fmt.Errorf("like murmur %d: %w", id, err)
	}
	return nil
}

func (s *Murmurs) Unlike(ctx context.Context, userID, id models.ID) error {
	err := s.repo.Unlike(ctx, userID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFound("Like not found")
	}
	if err != nil {
		return fmt.Errorf("unlike murmur %d: %w", id, err)
	}
	return nil
}

func (s *Murmurs) find(ctx context.Context, id models.ID) (*models.Murmur, error) {
	m, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NotFound("Murmur not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find murmur %d: %w", id, err)
	}
	return m, nil
}

// annotate attaches like counts and the viewer's like state, using one
// query for each regardless of len(murmurs).
func annotate(ctx context.Context, repo repositories.MurmurRepository, murmurs []models.Murmur, viewerID models.ID) ([]MurmurView, error) {
	views := make([]MurmurView, 0, len(murmurs))
	if len(murmurs) == 0 {
		return views, nil
	}

	ids := make([]models.ID, len(murmurs))
	for i, m := range murmurs {
		ids[i] = m.ID
	}

	counts, err := repo.LikeCounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	liked := map[models.ID]bool{}
	if viewerID != 0 {
		if liked, err = repo.LikedBy(ctx, viewerID, ids); err != nil {
			return nil, fmt.Errorf("load likes: %w", err)
		}
	}

	for _, m := range murmurs {
		views = append(views, MurmurView{
			ID:        m.ID,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
			LikeCount: counts[m.ID],
			LikedByMe: liked[m.ID],
			Author: Author{
				ID:          m.User.ID,
				Username:    m.User.Username,
				DisplayName: m.User.DisplayName,
			},
		})
	}
	return views, nil
}
