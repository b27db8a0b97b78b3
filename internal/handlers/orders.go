package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/r3lativee/AURA-sub001/internal/mailer"
	"github.com/r3lativee/AURA-sub001/internal/middleware"
	"github.com/r3lativee/AURA-sub001/internal/models"
)

type createOrderItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Price     float64 `json:"price" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
}

type createOrderRequest struct {
	Items           []createOrderItemRequest `json:"items" binding:"required"`
	ShippingAddress models.ShippingAddress   `json:"shippingAddress" binding:"required"`
	TotalAmount     float64                  `json:"totalAmount" binding:"required"`
	PaymentDetails  models.PaymentDetails    `json:"paymentDetails" binding:"required"`
}

// CreateOrder validates and persists an order. On the razorpay path the order
// is marked paid when a gateway payment id is already present; the system does
// not independently confirm payment here. Confirmation mail is best-effort.
//
// Stock decrement happens after the insert and is not atomic with it; a crash
// in between can oversell.
func CreateOrder(db *mongo.Database, mail *mailer.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if len(req.Items) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "order must contain at least one item")
			return
		}
		if req.TotalAmount <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "totalAmount must be positive")
			return
		}
		if strings.TrimSpace(req.ShippingAddress.Street) == "" || strings.TrimSpace(req.ShippingAddress.City) == "" {
			respondWithError(c, http.StatusBadRequest, route, "shipping address required")
			return
		}
		if !models.IsValidPaymentMethod(req.PaymentDetails.Method) {
			respondWithError(c, http.StatusBadRequest, route, "unrecognized payment method")
			return
		}

		items := make([]models.OrderItem, 0, len(req.Items))
		for _, item := range req.Items {
			productID, err := primitive.ObjectIDFromHex(item.ProductID)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid productId: "+item.ProductID)
				return
			}
			items = append(items, models.OrderItem{
				ProductID: productID,
				Name:      item.Name,
				Price:     item.Price,
				Quantity:  item.Quantity,
				Size:      item.Size,
				Color:     item.Color,
			})
		}

		now := time.Now()
		order := models.Order{
			UserID:          user.ID,
			Items:           items,
			ShippingAddress: req.ShippingAddress,
			TotalAmount:     req.TotalAmount,
			Status:          models.OrderStatusPending,
			PaymentStatus:   models.PaymentStatusPending,
			PaymentDetails:  req.PaymentDetails,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		order.PaymentDetails.CardLast4 = lastDigits(req.PaymentDetails.CardLast4, 4)

		if req.PaymentDetails.Method == models.PaymentMethodRazorpay && req.PaymentDetails.RazorpayPaymentID != "" {
			order.PaymentStatus = models.PaymentStatusPaid
			order.IsPaid = true
			order.PaidAt = &now
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		order.ID = res.InsertedID.(primitive.ObjectID)

		// Not transactional with the insert above.
		for _, item := range order.Items {
			filter := bson.M{"_id": item.ProductID, "stockQuantity": bson.M{"$gte": item.Quantity}}
			if _, err := db.Collection("products").UpdateOne(ctx, filter,
				bson.M{"$inc": bson.M{"stockQuantity": -item.Quantity}},
			); err != nil {
				log.Println("[ORDER] [ERROR] stock decrement failed:", item.ProductID.Hex(), err)
				continue
			}
			if _, err := db.Collection("products").UpdateOne(ctx,
				bson.M{"_id": item.ProductID, "stockQuantity": bson.M{"$lte": 0}},
				bson.M{"$set": bson.M{"inStock": false}},
			); err != nil {
				log.Println("[ORDER] [ERROR] inStock sync failed:", item.ProductID.Hex(), err)
			}
		}

		if err := mail.SendOrderConfirmation(user.Email, orderConfirmationData(user.Name, order)); err != nil {
			log.Println("[ORDER] [ERROR] confirmation mail failed:", err)
		}

		log.Println("[ORDER] [INFO] order created:", order.ID.Hex())
		c.JSON(http.StatusCreated, order)
	}
}

func orderConfirmationData(name string, order models.Order) mailer.OrderConfirmationData {
	items := make([]mailer.OrderConfirmationItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, mailer.OrderConfirmationItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price * float64(item.Quantity),
		})
	}
	return mailer.OrderConfirmationData{
		Name:    name,
		OrderID: order.ID.Hex(),
		Total:   order.TotalAmount,
		Items:   items,
	}
}

func lastDigits(value string, n int) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
	if len(digits) <= n {
		return digits
	}
	return digits[len(digits)-n:]
}

// GetMyOrders lists the authenticated user's orders, newest first.
func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/my-orders"
		defer handlePanic(c, route)

		userID := middleware.CurrentUserID(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": userID}, opts)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

// GetOrder returns one order, owner-or-admin gated.
func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		user := middleware.CurrentUser(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		if order.UserID != user.ID && !user.IsAdmin {
			respondWithError(c, http.StatusForbidden, route, "not your order")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// CancelOrder is owner-or-admin gated and only valid before shipment.
func CancelOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/orders/:id/cancel"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		user := middleware.CurrentUser(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		if order.UserID != user.ID && !user.IsAdmin {
			respondWithError(c, http.StatusForbidden, route, "not your order")
			return
		}
		if !models.CanCancelOrder(order.Status) {
			respondWithError(c, http.StatusBadRequest, route, "order can no longer be cancelled")
			return
		}

		if _, err := db.Collection("orders").UpdateByID(ctx, id, bson.M{"$set": bson.M{
			"status":    models.OrderStatusCancelled,
			"updatedAt": time.Now(),
		}}); err != nil {
			respondInternalError(c, route, err)
			return
		}

		log.Println("[ORDER] [INFO] cancelled:", id.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "order cancelled", "status": models.OrderStatusCancelled})
	}
}
