package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/r3lativee/AURA-sub001/internal/middleware"
	"github.com/r3lativee/AURA-sub001/internal/models"
)

type createReviewRequest struct {
	ProductID string   `json:"productId" binding:"required"`
	Rating    int      `json:"rating" binding:"required,min=1,max=5"`
	Title     string   `json:"title" binding:"required"`
	Comment   string   `json:"comment" binding:"required"`
	Images    []string `json:"images"`
}

type updateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Title   *string `json:"title"`
	Comment *string `json:"comment"`
}

// recomputeProductRating runs the full-scan aggregate update after every
// write that touches a rating value. Kept as an explicit call so the control
// flow stays visible.
func recomputeProductRating(ctx context.Context, db *mongo.Database, productID primitive.ObjectID) error {
	cursor, err := db.Collection("reviews").Find(ctx, bson.M{"productId": productID})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return err
	}

	ratings := make([]int, 0, len(reviews))
	for _, r := range reviews {
		ratings = append(ratings, r.Rating)
	}

	_, err = db.Collection("products").UpdateByID(ctx, productID, bson.M{"$set": bson.M{
		"ratings.average": models.RatingAverage(ratings),
		"ratings.count":   len(ratings),
	}})
	return err
}

// GetProductReviews lists reviews for one product, newest first.
func GetProductReviews(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/reviews/product/:productId"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("reviews").Find(ctx, bson.M{"productId": productID}, opts)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		reviews := make([]models.Review, 0)
		if err := cursor.All(ctx, &reviews); err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, reviews)
	}
}

// CreateReview inserts a review; the unique (user, product) index turns
// duplicates into a 400.
func CreateReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/reviews"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)

		var req createReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

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

		now := time.Now()
		review := models.Review{
			UserID:    user.ID,
			ProductID: productID,
			Rating:    req.Rating,
			Title:     strings.TrimSpace(req.Title),
			Comment:   strings.TrimSpace(req.Comment),
			Images:    req.Images,
			Likes:     []primitive.ObjectID{},
			Replies:   []models.Reply{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if review.Images == nil {
			review.Images = []string{}
		}

		res, err := db.Collection("reviews").InsertOne(ctx, review)
		if err != nil {
			if respondDuplicateKey(c, err, "review") {
				return
			}
			respondInternalError(c, route, err)
			return
		}
		review.ID = res.InsertedID.(primitive.ObjectID)

		if err := recomputeProductRating(ctx, db, productID); err != nil {
			log.Println("[REVIEW] [ERROR] rating recompute failed:", err)
		}

		log.Println("[REVIEW] [INFO] created:", review.ID.Hex())
		c.JSON(http.StatusCreated, review)
	}
}

// UpdateReview edits the author's own review (admins may edit any) and
// recomputes the product rating.
func UpdateReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/reviews/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		user := middleware.CurrentUser(c)

		var req updateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var review models.Review
		if err := db.Collection("reviews").FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "review not found")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		if review.UserID != user.ID && !user.IsAdmin {
			respondWithError(c, http.StatusForbidden, route, "not your review")
			return
		}

		updateSet := bson.M{"updatedAt": time.Now()}
		if req.Rating != nil {
			if *req.Rating < 1 || *req.Rating > 5 {
				respondWithError(c, http.StatusBadRequest, route, "rating must be between 1 and 5")
				return
			}
			updateSet["rating"] = *req.Rating
		}
		if req.Title != nil {
			updateSet["title"] = strings.TrimSpace(*req.Title)
		}
		if req.Comment != nil {
			updateSet["comment"] = strings.TrimSpace(*req.Comment)
		}

		if _, err := db.Collection("reviews").UpdateByID(ctx, id, bson.M{"$set": updateSet}); err != nil {
			respondInternalError(c, route, err)
			return
		}

		if err := recomputeProductRating(ctx, db, review.ProductID); err != nil {
			log.Println("[REVIEW] [ERROR] rating recompute failed:", err)
		}

		c.JSON(http.StatusOK, gin.H{"message": "review updated"})
	}
}

// DeleteReview removes the author's own review (admins may delete any) and
// recomputes the product rating.
func DeleteReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/reviews/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		user := middleware.CurrentUser(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var review models.Review
		if err := db.Collection("reviews").FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "review not found")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		if review.UserID != user.ID && !user.IsAdmin {
			respondWithError(c, http.StatusForbidden, route, "not your review")
			return
		}

		if _, err := db.Collection("reviews").DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			respondInternalError(c, route, err)
			return
		}

		if err := recomputeProductRating(ctx, db, review.ProductID); err != nil {
			log.Println("[REVIEW] [ERROR] rating recompute failed:", err)
		}

		c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
	}
}

// ToggleReviewLike flips the requesting user's membership in the likes set.
// toggleLike flips the caller's membership in a review's like set, returning
// the update to apply plus the resulting liked state and count.
func toggleLike(likes []primitive.ObjectID, userID primitive.ObjectID) (bson.M, bool, int) {
	for _, id := range likes {
		if id == userID {
			return bson.M{"$pull": bson.M{"likes": userID}}, false, len(likes) - 1
		}
	}
	return bson.M{"$addToSet": bson.M{"likes": userID}}, true, len(likes) + 1
}

func ToggleReviewLike(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/reviews/:id/like"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		userID := middleware.CurrentUserID(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var review models.Review
		if err := db.Collection("reviews").FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "review not found")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		update, liked, likeCount := toggleLike(review.Likes, userID)

		if _, err := db.Collection("reviews").UpdateByID(ctx, id, update); err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"liked": liked, "likes": likeCount})
	}
}

// AddReviewReply appends an admin reply.
func AddReviewReply(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/reviews/:id/reply"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		admin := middleware.CurrentUser(c)

		var req struct {
			Comment string `json:"comment" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		reply := models.Reply{
			ID:        uuid.NewString(),
			AdminID:   admin.ID,
			Comment:   strings.TrimSpace(req.Comment),
			CreatedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("reviews").UpdateByID(ctx, id, bson.M{"$push": bson.M{"replies": reply}})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "review not found")
			return
		}

		c.JSON(http.StatusCreated, reply)
	}
}

// DeleteReviewReply removes one reply by its id.
func DeleteReviewReply(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/reviews/:id/reply/:replyId"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}
		replyID := c.Param("replyId")

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("reviews").UpdateByID(ctx, id, bson.M{
			"$pull": bson.M{"replies": bson.M{"id": replyID}},
		})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "review not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "reply deleted"})
	}
}
