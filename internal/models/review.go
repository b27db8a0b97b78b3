package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reply is an admin-authored response on a review.
type Reply struct {
	ID        string             `bson:"id" json:"id"`
	AdminID   primitive.ObjectID `bson:"adminId" json:"adminId"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Review is unique per (user, product) pair; see EnsureReviewIndexes.
type Review struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID   `bson:"userId" json:"userId"`
	ProductID primitive.ObjectID   `bson:"productId" json:"productId"`
	Rating    int                  `bson:"rating" json:"rating"`
	Title     string               `bson:"title" json:"title"`
	Comment   string               `bson:"comment" json:"comment"`
	Images    []string             `bson:"images" json:"images"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Replies   []Reply              `bson:"replies" json:"replies"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// RatingAverage returns the mean of the given ratings rounded to one decimal,
// zero for an empty slice.
func RatingAverage(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := float64(sum) / float64(len(ratings))
	return math.Round(mean*10) / 10
}
