// Package storetest provides in-memory implementations of the user and
// image stores with the same semantics as the Mongo repositories.
package storetest

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"

	"imagegallery/database"
	"imagegallery/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Users struct {
	mu    sync.Mutex
	users []models.User
	// Err, when set, is returned by every call.
	Err error
}

func NewUsers() *Users {
	return &Users{}
}

func (u *Users) Create(_ context.Context, user *models.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return u.Err
	}
	for _, existing := range u.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return database.ErrDuplicateUser
		}
	}
	user.ID = bson.NewObjectID()
	u.users = append(u.users, *user)
	return nil
}

func (u *Users) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return false, u.Err
	}
	for _, existing := range u.users {
		if existing.Username == username || existing.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (u *Users) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return u.find(func(user models.User) bool { return user.Username == username })
}

func (u *Users) FindByID(_ context.Context, id string) (*models.User, error) {
	return u.find(func(user models.User) bool { return user.ID.Hex() == id })
}

// Delete removes a user, for tests covering sessions of deleted accounts.
func (u *Users) Delete(id string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.users = slices.DeleteFunc(u.users, func(user models.User) bool { return user.ID.Hex() == id })
}

func (u *Users) find(match func(models.User) bool) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	for _, user := range u.users {
		if match(user) {
			found := user
			return &found, nil
		}
	}
	return nil, database.ErrNotFound
}

type Images struct {
	mu     sync.Mutex
	images []models.Image
	// Err, when set, is returned by every call.
	Err error
}

func NewImages() *Images {
	return &Images{}
}

// Add inserts images as-is, in order, for test setup.
func (i *Images) Add(images ...models.Image) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, image := range images {
		if image.ID.IsZero() {
			image.ID = bson.NewObjectID()
		}
		if image.Likes == nil {
			image.Likes = []string{}
		}
		i.images = append(i.images, image)
	}
}

func (i *Images) Count(_ context.Context) (int64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.Err != nil {
		return 0, i.Err
	}
	return int64(len(i.images)), nil
}

// List sorts by createdAt descending, later insertions first on ties.
func (i *Images) List(_ context.Context, skip, limit int64) ([]models.Image, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.Err != nil {
		return nil, i.Err
	}
	type indexed struct {
		pos   int
		image models.Image
	}
	all := make([]indexed, len(i.images))
	for pos, image := range i.images {
		all[pos] = indexed{pos: pos, image: cloneImage(image)}
	}
	sort.SliceStable(all, func(a, b int) bool {
		ta, tb := all[a].image.CreatedAt, all[b].image.CreatedAt
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return all[a].pos > all[b].pos
	})

	out := []models.Image{}
	for idx := skip; idx < int64(len(all)) && int64(len(out)) < limit; idx++ {
		out = append(out, all[idx].image)
	}
	return out, nil
}

func (i *Images) FindByExternalID(_ context.Context, externalID string) (*models.Image, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.Err != nil {
		return nil, i.Err
	}
	idx := i.indexOf(externalID)
	if idx < 0 {
		return nil, database.ErrNotFound
	}
	image := cloneImage(i.images[idx])
	return &image, nil
}

func (i *Images) InsertIfAbsent(_ context.Context, image *models.Image) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.Err != nil {
		return false, i.Err
	}
	if i.indexOf(image.ExternalID) >= 0 {
		return false, nil
	}
	stored := cloneImage(*image)
	stored.ID = bson.NewObjectID()
	if stored.Likes == nil {
		stored.Likes = []string{}
	}
	i.images = append(i.images, stored)
	return true, nil
}

func (i *Images) ToggleLike(_ context.Context, externalID, userID string) (*models.Image, bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.Err != nil {
		return nil, false, i.Err
	}
	idx := i.indexOf(externalID)
	if idx < 0 {
		return nil, false, database.ErrNotFound
	}
	image := &i.images[idx]
	liked := !slices.Contains(image.Likes, userID)
	if liked {
		image.Likes = append(image.Likes, userID)
	} else {
		image.Likes = slices.DeleteFunc(image.Likes, func(id string) bool { return id == userID })
	}
	out := cloneImage(*image)
	return &out, liked, nil
}

func (i *Images) indexOf(externalID string) int {
	return slices.IndexFunc(i.images, func(image models.Image) bool { return image.ExternalID == externalID })
}

func cloneImage(image models.Image) models.Image {
	image.Likes = slices.Clone(image.Likes)
	if image.Likes == nil {
		image.Likes = []string{}
	}
	return image
}

// ErrUnavailable is a convenience error for failure-injection tests.
var ErrUnavailable = errors.New("store unavailable")
