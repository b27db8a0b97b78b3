package handlers

import (
	"context"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/r3lativee/AURA-sub001/internal/config"
	"github.com/r3lativee/AURA-sub001/internal/models"
	"github.com/r3lativee/AURA-sub001/internal/payment"
)

type razorpayOrderRequest struct {
	Amount   float64 `json:"amount" binding:"required"`
	Currency string  `json:"currency"`
}

type razorpayVerifyRequest struct {
	RazorpayOrderID   string `json:"razorpayOrderId" binding:"required"`
	RazorpayPaymentID string `json:"razorpayPaymentId" binding:"required"`
	RazorpaySignature string `json:"razorpaySignature" binding:"required"`
}

// CreateRazorpayOrder registers a payment intent with the gateway. Amount is
// in rupees and converted to paise.
func CreateRazorpayOrder(gateway *payment.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders/razorpay"
		defer handlePanic(c, route)

		var req razorpayOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Amount <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "amount must be positive")
			return
		}

		currency := req.Currency
		if currency == "" {
			currency = "INR"
		}
		receipt := "rcpt_" + uuid.NewString()[:13]

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		order, err := gateway.CreateOrder(ctx, int64(math.Round(req.Amount*100)), currency, receipt)
		if err != nil {
			log.Println("[PAYMENT] [ERROR] gateway order failed:", err)
			respondWithError(c, http.StatusBadGateway, route, "payment gateway error")
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":       order.ID,
			"amount":   order.Amount,
			"currency": order.Currency,
			"receipt":  order.Receipt,
			"keyId":    config.AppEnv.RazorpayKeyID,
		})
	}
}

// VerifyRazorpayPayment recomputes the callback signature and, on match,
// marks the matching order paid. Mismatch is terminal.
func VerifyRazorpayPayment(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders/razorpay/verify"
		defer handlePanic(c, route)

		var req razorpayVerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if !payment.VerifySignature(
			config.AppEnv.RazorpayKeySecret,
			req.RazorpayOrderID,
			req.RazorpayPaymentID,
			req.RazorpaySignature,
		) {
			log.Println("[PAYMENT] [ERROR] signature mismatch for:", req.RazorpayOrderID)
			respondWithError(c, http.StatusBadRequest, route, "payment verification failed")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		res, err := db.Collection("orders").UpdateOne(ctx,
			bson.M{"paymentDetails.razorpayOrderId": req.RazorpayOrderID},
			bson.M{"$set": bson.M{
				"paymentStatus":                    models.PaymentStatusPaid,
				"isPaid":                           true,
				"paidAt":                           now,
				"paymentDetails.razorpayPaymentId": req.RazorpayPaymentID,
				"paymentDetails.razorpaySignature": req.RazorpaySignature,
				"updatedAt":                        now,
			}},
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			log.Println("[PAYMENT] [ERROR] no order references gateway order:", req.RazorpayOrderID)
			respondWithError(c, http.StatusNotFound, route, "order not found for this payment")
			return
		}

		log.Println("[PAYMENT] [INFO] payment verified:", req.RazorpayPaymentID)
		c.JSON(http.StatusOK, gin.H{"verified": true})
	}
}
