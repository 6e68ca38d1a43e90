package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/txdao/internal/domain"
)

// photoRepository is the subset of store.PhotoStore that PhotoService requires.
type photoRepository interface {
	Save(ctx context.Context, p *domain.Photo) error
	FindByID(ctx context.Context, id int64) (*domain.Photo, error)
	FindByIDFetchComments(ctx context.Context, id int64) (*domain.Photo, error)
	FindAll(ctx context.Context) ([]*domain.Photo, error)
	Remove(ctx context.Context, p *domain.Photo) error
	AddComment(ctx context.Context, photoID int64, text string) (*domain.PhotoComment, error)
	RemoveComment(ctx context.Context, photoID, commentID int64) error
}

type PhotoService struct {
	photos photoRepository
	logger *slog.Logger
}

func NewPhotoService(photos photoRepository, logger *slog.Logger) *PhotoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PhotoService{photos: photos, logger: logger}
}

// Publish stores a new photo and its initial comments in one unit of work.
func (s *PhotoService) Publish(ctx context.Context, url, description string, comments ...string) (*domain.Photo, error) {
	p := domain.NewPhoto(url, description)
	for _, text := range comments {
		p.AddComment(domain.NewPhotoComment(text))
	}
	if err := s.photos.Save(ctx, p); err != nil {
		s.logger.Error("publish photo failed", "url", url, "error", err)
		return nil, fmt.Errorf("failed to publish photo: %w", err)
	}
	s.logger.Info("photo published", "photo_id", p.ID, "comments", len(comments))
	return p, nil
}

// Get returns the photo with its comments.
func (s *PhotoService) Get(ctx context.Context, id int64) (*domain.Photo, error) {
	return s.photos.FindByIDFetchComments(ctx, id)
}

func (s *PhotoService) List(ctx context.Context) ([]*domain.Photo, error) {
	return s.photos.FindAll(ctx)
}

func (s *PhotoService) Comment(ctx context.Context, photoID int64, text string) (*domain.PhotoComment, error) {
	c, err := s.photos.AddComment(ctx, photoID, text)
	if err != nil {
		s.logger.Error("add comment failed", "photo_id", photoID, "error", err)
		return nil, err
	}
	s.logger.Info("comment added", "photo_id", photoID, "comment_id", c.ID)
	return c, nil
}

// Moderate deletes one comment from a photo.
func (s *PhotoService) Moderate(ctx context.Context, photoID, commentID int64) error {
	if err := s.photos.RemoveComment(ctx, photoID, commentID); err != nil {
		s.logger.Error("moderate comment failed", "photo_id", photoID, "comment_id", commentID, "error", err)
		return err
	}
	s.logger.Info("comment removed", "photo_id", photoID, "comment_id", commentID)
	return nil
}

// Delete removes the photo and every comment on it.
func (s *PhotoService) Delete(ctx context.Context, id int64) error {
	p, err := s.photos.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get photo: %w", err)
	}
	if p == nil {
		return fmt.Errorf("photo %d: %w", id, domain.ErrNotFound)
	}
	if err := s.photos.Remove(ctx, p); err != nil {
		s.logger.Error("delete photo failed", "photo_id", id, "error", err)
		return err
	}
	s.logger.Info("photo deleted", "photo_id", id)
	return nil
}
