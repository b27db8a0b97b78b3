package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Categories is the fixed product category enumeration.
var Categories = []string{
	"Skincare",
	"Haircare",
	"Beard Care",
	"Shaving",
	"Fragrance",
	"Body Care",
}

// IsValidCategory reports whether name is one of the fixed categories.
func IsValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// ProductSize is a purchasable variant with its own price and stock.
type ProductSize struct {
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
	Stock int     `bson:"stock" json:"stock"`
	SKU   string  `bson:"sku,omitempty" json:"sku,omitempty"`
}

// Ratings is the denormalized review aggregate, recomputed on review writes.
type Ratings struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Price         float64            `bson:"price" json:"price"`
	Category      string             `bson:"category" json:"category"`
	Images        []string           `bson:"images" json:"images"`
	Sizes         []ProductSize      `bson:"sizes" json:"sizes"`
	StockQuantity int                `bson:"stockQuantity" json:"stockQuantity"`
	InStock       bool               `bson:"inStock" json:"inStock"`
	Ratings       Ratings            `bson:"ratings" json:"ratings"`
	ModelURL      string             `bson:"modelUrl,omitempty" json:"modelUrl,omitempty"`
	ThumbnailURL  string             `bson:"thumbnailUrl,omitempty" json:"thumbnailUrl,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
