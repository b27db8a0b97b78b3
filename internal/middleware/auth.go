package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/r3lativee/AURA-sub001/internal/models"
)

// Context keys set by Auth.
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "userId"
)

// authenticate validates the bearer JWT, loads the referenced user document
// and injects it into the context. It aborts with 401 and returns false on
// failure and never advances the handler chain itself, so wrappers can run
// further checks before yielding.
func authenticate(c *gin.Context, db *mongo.Database, secret string, requireVerified bool) bool {
	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	if raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return false
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return false
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		log.Println("[AUTH] [ERROR] token validation failed:", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}

	userIDValue, ok := claims["userId"].(string)
	if !ok || strings.TrimSpace(userIDValue) == "" {
		log.Println("[AUTH] [ERROR] userId claim missing")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}

	userID, err := primitive.ObjectIDFromHex(userIDValue)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		log.Println("[AUTH] [ERROR] token user not found:", userID.Hex())
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}

	if requireVerified && !user.IsVerified {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "email not verified"})
		return false
	}

	c.Set(ContextUserKey, user)
	c.Set(ContextUserIDKey, user.ID)
	return true
}

// Auth validates a bearer JWT, loads the referenced user document and injects
// it into the context. When requireVerified is set, unverified accounts are
// rejected too.
func Auth(db *mongo.Database, secret string, requireVerified bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, db, secret, requireVerified) {
			return
		}
		c.Next()
	}
}

// AdminAuth is Auth plus an isAdmin assertion, checked before the protected
// handler runs.
func AdminAuth(db *mongo.Database, secret string, requireVerified bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, db, secret, requireVerified) {
			return
		}
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user injected by Auth, nil when absent.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(models.User)
	if !ok {
		return nil
	}
	return &user
}

// CurrentUserID returns the authenticated user's id, zero when absent.
func CurrentUserID(c *gin.Context) primitive.ObjectID {
	value, ok := c.Get(ContextUserIDKey)
	if !ok {
		return primitive.NilObjectID
	}
	id, ok := value.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID
	}
	return id
}
