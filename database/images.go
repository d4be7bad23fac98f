package database

import (
	"context"
	"errors"
	"fmt"

	"imagegallery/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// toggleAttempts bounds the pull/add loop when concurrent toggles by the
// same user keep flipping membership between the two steps.
const toggleAttempts = 5

var ErrToggleContention = errors.New("like toggle did not settle")

type ImageRepository struct {
	collection *mongo.Collection
}

func NewImageRepository(db *mongo.Database) *ImageRepository {
	return &ImageRepository{collection: db.Collection(ImagesCollection)}
}

func (r *ImageRepository) Count(ctx context.Context) (int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count images: %w", err)
	}
	return total, nil
}

// List returns images newest first; _id breaks createdAt ties so pages
// stay disjoint when many images share a timestamp.
func (r *ImageRepository) List(ctx context.Context, skip, limit int64) ([]models.Image, error) {
	findOptions := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find images: %w", err)
	}
	defer cursor.Close(ctx)

	images := make([]models.Image, 0, limit)
	if err := cursor.All(ctx, &images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	return images, nil
}

func (r *ImageRepository) FindByExternalID(ctx context.Context, externalID string) (*models.Image, error) {
	image := &models.Image{}
	if err := r.collection.FindOne(ctx, bson.M{"id": externalID}).Decode(image); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find image: %w", err)
	}
	return image, nil
}

// InsertIfAbsent upserts on the external id and never touches an existing
// document. It reports whether a new document was created.
func (r *ImageRepository) InsertIfAbsent(ctx context.Context, image *models.Image) (bool, error) {
	if image.Likes == nil {
		image.Likes = []string{}
	}
	doc := bson.M{
		"id":           image.ExternalID,
		"author":       image.Author,
		"width":        image.Width,
		"height":       image.Height,
		"url":          image.URL,
		"download_url": image.DownloadURL,
		"likes":        image.Likes,
		"createdAt":    image.CreatedAt,
	}
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"id": image.ExternalID},
		bson.M{"$setOnInsert": doc},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("upsert image %s: %w", image.ExternalID, err)
	}
	return result.UpsertedCount > 0, nil
}

// ToggleLike flips userID's membership in the image's likes with single
// document updates: $pull when present, $addToSet when absent. It returns
// the updated image and whether userID now likes it.
func (r *ImageRepository) ToggleLike(ctx context.Context, externalID, userID string) (*models.Image, bool, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	for range toggleAttempts {
		image := &models.Image{}
		err := r.collection.FindOneAndUpdate(ctx,
			bson.M{"id": externalID, "likes": userID},
			bson.M{"$pull": bson.M{"likes": userID}},
			after,
		).Decode(image)
		if err == nil {
			return image, false, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, fmt.Errorf("unlike image %s: %w", externalID, err)
		}

		err = r.collection.FindOneAndUpdate(ctx,
			bson.M{"id": externalID, "likes": bson.M{"$ne": userID}},
			bson.M{"$addToSet": bson.M{"likes": userID}},
			after,
		).Decode(image)
		if err == nil {
			return image, true, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, fmt.Errorf("like image %s: %w", externalID, err)
		}

		// Neither filter matched: the image is gone, or the same user
		// toggled in between. Only the first case is final.
		if _, err := r.FindByExternalID(ctx, externalID); err != nil {
			return nil, false, err
		}
	}
	return nil, false, ErrToggleContention
}
