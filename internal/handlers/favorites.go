package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/r3lativee/AURA-sub001/internal/middleware"
	"github.com/r3lativee/AURA-sub001/internal/models"
)

// GetFavorites returns the user's favorites document, empty when none exists.
func GetFavorites(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/favorites"
		defer handlePanic(c, route)

		userID := middleware.CurrentUserID(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var favorites models.Favorites
		err := db.Collection("favorites").FindOne(ctx, bson.M{"userId": userID}).Decode(&favorites)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusOK, models.Favorites{UserID: userID, Products: []primitive.ObjectID{}})
			return
		}
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, favorites)
	}
}

// AddFavorite upserts the product into the user's favorites set.
func AddFavorite(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/favorites/:productId"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		userID := middleware.CurrentUserID(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("products").CountDocuments(ctx, bson.M{"_id": productID})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if count == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		_, err = db.Collection("favorites").UpdateOne(ctx,
			bson.M{"userId": userID},
			bson.M{
				"$addToSet":    bson.M{"products": productID},
				"$set":         bson.M{"updatedAt": time.Now()},
				"$setOnInsert": bson.M{"userId": userID},
			},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "added to favorites"})
	}
}

// RemoveFavorite pulls the product from the user's favorites set.
func RemoveFavorite(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/favorites/:productId"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		userID := middleware.CurrentUserID(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		_, err = db.Collection("favorites").UpdateOne(ctx,
			bson.M{"userId": userID},
			bson.M{
				"$pull": bson.M{"products": productID},
				"$set":  bson.M{"updatedAt": time.Now()},
			},
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "removed from favorites"})
	}
}
