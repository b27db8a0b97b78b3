package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorites holds a user's saved products, one document per user.
type Favorites struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID   `bson:"userId" json:"userId"`
	Products  []primitive.ObjectID `bson:"products" json:"products"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}
