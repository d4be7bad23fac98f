package models

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Image is a catalog entry imported from the external photo listing.
// ExternalID is the listing's id, not the Mongo _id.
type Image struct {
	ID          bson.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	ExternalID  string        `json:"id" bson:"id"`
	Author      string        `json:"author" bson:"author"`
	Width       int           `json:"width" bson:"width"`
	Height      int           `json:"height" bson:"height"`
	URL         string        `json:"url" bson:"url"`
	DownloadURL string        `json:"download_url" bson:"download_url"`
	Likes       []string      `json:"likes" bson:"likes"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
}

func (i *Image) LikedBy(userID string) bool {
	return userID != "" && slices.Contains(i.Likes, userID)
}

type ImagePage struct {
	Images  []Image `json:"images"`
	HasMore bool    `json:"hasMore"`
	Total   int64   `json:"total"`
}

type LikeStatus struct {
	Likes int  `json:"likes"`
	Liked bool `json:"liked"`
}
