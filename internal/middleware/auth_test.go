package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, userID primitive.ObjectID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID.Hex(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func userDoc(userID primitive.ObjectID, isAdmin bool) bson.D {
	return bson.D{
		{Key: "_id", Value: userID},
		{Key: "email", Value: "user@example.com"},
		{Key: "isAdmin", Value: isAdmin},
		{Key: "isVerified", Value: true},
	}
}

func TestAdminAuth_NonAdminNeverReachesHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("non-admin gets 403", func(mt *mtest.T) {
		userID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, mt.DB.Name()+".users", mtest.FirstBatch,
			userDoc(userID, false)))

		handlerRan := false
		r := gin.New()
		r.GET("/admin/stats", AdminAuth(mt.DB, testSecret, false), func(c *gin.Context) {
			handlerRan = true
			c.JSON(http.StatusOK, gin.H{"stats": "sensitive"})
		})

		req := httptest.NewRequest("GET", "/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(mt.T, userID))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if handlerRan {
			mt.Fatal("protected handler ran for a non-admin user")
		}
		if w.Code != http.StatusForbidden {
			mt.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
		}
	})

	mt.Run("admin passes through", func(mt *mtest.T) {
		userID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, mt.DB.Name()+".users", mtest.FirstBatch,
			userDoc(userID, true)))

		handlerRan := false
		r := gin.New()
		r.GET("/admin/stats", AdminAuth(mt.DB, testSecret, false), func(c *gin.Context) {
			handlerRan = true
			c.JSON(http.StatusOK, gin.H{"stats": "sensitive"})
		})

		req := httptest.NewRequest("GET", "/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(mt.T, userID))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if !handlerRan {
			mt.Fatal("handler did not run for an admin user")
		}
		if w.Code != http.StatusOK {
			mt.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})
}

func TestAdminAuth_MissingTokenRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing token", func(mt *mtest.T) {
		handlerRan := false
		r := gin.New()
		r.GET("/admin/stats", AdminAuth(mt.DB, testSecret, false), func(c *gin.Context) {
			handlerRan = true
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/admin/stats", nil))

		if handlerRan {
			mt.Fatal("protected handler ran without a token")
		}
		if w.Code != http.StatusUnauthorized {
			mt.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}
