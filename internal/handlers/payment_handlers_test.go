package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/r3lativee/AURA-sub001/internal/config"
	"github.com/r3lativee/AURA-sub001/internal/payment"
)

func verifyRequestBody(secret, orderID, paymentID string) string {
	signature := payment.SignPayment(secret, orderID, paymentID)
	return fmt.Sprintf(`{"razorpayOrderId":%q,"razorpayPaymentId":%q,"razorpaySignature":%q}`,
		orderID, paymentID, signature)
}

func TestVerifyRazorpayPayment_UnknownOrderIs404(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no matching order", func(mt *mtest.T) {
		config.AppEnv.RazorpayKeySecret = "gateway-secret"
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		r := gin.New()
		r.POST("/api/orders/razorpay/verify", VerifyRazorpayPayment(mt.DB))

		body := verifyRequestBody("gateway-secret", "order_missing", "pay_123")
		req := httptest.NewRequest("POST", "/api/orders/razorpay/verify", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			mt.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	mt.Run("matching order verifies", func(mt *mtest.T) {
		config.AppEnv.RazorpayKeySecret = "gateway-secret"
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		r := gin.New()
		r.POST("/api/orders/razorpay/verify", VerifyRazorpayPayment(mt.DB))

		body := verifyRequestBody("gateway-secret", "order_known", "pay_456")
		req := httptest.NewRequest("POST", "/api/orders/razorpay/verify", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			mt.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if !strings.Contains(w.Body.String(), `"verified":true`) {
			mt.Fatalf("body = %s, want verified:true", w.Body.String())
		}
	})
}

func TestVerifyRazorpayPayment_BadSignatureRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("tampered signature", func(mt *mtest.T) {
		config.AppEnv.RazorpayKeySecret = "gateway-secret"

		r := gin.New()
		r.POST("/api/orders/razorpay/verify", VerifyRazorpayPayment(mt.DB))

		body := `{"razorpayOrderId":"order_1","razorpayPaymentId":"pay_1","razorpaySignature":"forged"}`
		req := httptest.NewRequest("POST", "/api/orders/razorpay/verify", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			mt.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}
