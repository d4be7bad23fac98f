package services

import (
	"context"
	"errors"

	"imagegallery/apperror"
	"imagegallery/database"
	"imagegallery/models"

	"github.com/sirupsen/logrus"
)

const msgImageNotFound = "Image not found"

type GalleryService struct {
	images          ImageStore
	defaultPageSize int
	maxPageSize     int
	log             logrus.FieldLogger
}

func NewGalleryService(images ImageStore, defaultPageSize, maxPageSize int, log logrus.FieldLogger) *GalleryService {
	return &GalleryService{
		images:          images,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		log:             log,
	}
}

// ListImages returns one page of the catalog, newest first. Pages are
// 1-based; out of range sizes fall back to the default or the maximum.
func (s *GalleryService) ListImages(ctx context.Context, page, pageSize int) (*models.ImagePage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}

	total, err := s.images.Count(ctx)
	if err != nil {
		return nil, apperror.Internal("Error fetching images", err)
	}
	// Pages past the end never reach List, so skip cannot overflow.
	if int64(page-1) >= (total+int64(pageSize)-1)/int64(pageSize) {
		return &models.ImagePage{Images: []models.Image{}, HasMore: false, Total: total}, nil
	}
	skip := int64(page-1) * int64(pageSize)

	images, err := s.images.List(ctx, skip, int64(pageSize))
	if err != nil {
		return nil, apperror.Internal("Error fetching images", err)
	}
	if images == nil {
		images = []models.Image{}
	}

	return &models.ImagePage{
		Images:  images,
		HasMore: skip+int64(len(images)) < total,
		Total:   total,
	}, nil
}

// LikeStatus reports liked=false for anonymous callers.
func (s *GalleryService) LikeStatus(ctx context.Context, externalID, userID string) (*models.LikeStatus, error) {
	image, err := s.images.FindByExternalID(ctx, externalID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperror.NotFound(msgImageNotFound)
	}
	if err != nil {
		return nil, apperror.Internal("Error fetching image like count", err)
	}
	return &models.LikeStatus{
		Likes: len(image.Likes),
		Liked: image.LikedBy(userID),
	}, nil
}

func (s *GalleryService) ToggleLike(ctx context.Context, externalID, userID string) (*models.LikeStatus, error) {
	if userID == "" {
		return nil, apperror.Auth(msgUnauthorized)
	}
	image, liked, err := s.images.ToggleLike(ctx, externalID, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperror.NotFound(msgImageNotFound)
	}
	if err != nil {
		return nil, apperror.Internal("Error handling like", err)
	}
	s.log.WithFields(logrus.Fields{"image": externalID, "user": userID, "liked": liked}).Debug("like toggled")
	return &models.LikeStatus{Likes: len(image.Likes), Liked: liked}, nil
}
