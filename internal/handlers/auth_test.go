package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/r3lativee/AURA-sub001/internal/mailer"
)

func TestRegisterRequest_DuplicateEmailRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".users", mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(1)}}))

		r := gin.New()
		r.POST("/api/auth/register-request", RegisterRequest(mt.DB, mailer.New(mailer.Config{})))

		body := `{"name":"A User","email":"user@example.com","password":"secret1"}`
		req := httptest.NewRequest("POST", "/api/auth/register-request", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			mt.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
		if !strings.Contains(w.Body.String(), "email already registered") {
			mt.Fatalf("body = %s, want duplicate-email error", w.Body.String())
		}
	})
}
