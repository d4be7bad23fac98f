package services

import (
	"context"

	"imagegallery/models"
)

// UserStore is the credential store. Missing users are reported as
// database.ErrNotFound and unique-index violations as
// database.ErrDuplicateUser.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

type ImageStore interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, skip, limit int64) ([]models.Image, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.Image, error)
	ToggleLike(ctx context.Context, externalID, userID string) (*models.Image, bool, error)
}
