package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/r3lativee/AURA-sub001/internal/models"
)

// paidOrderFilter matches orders that count toward revenue reports.
func paidOrderFilter() bson.M {
	return bson.M{
		"paymentStatus": models.PaymentStatusPaid,
		"status":        bson.M{"$ne": models.OrderStatusCancelled},
	}
}

// GetAdminStats returns dashboard totals and the most recent orders.
func GetAdminStats(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/stats"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		totalOrders, err := db.Collection("orders").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		totalUsers, err := db.Collection("users").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		totalProducts, err := db.Collection("products").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		pipeline := []bson.M{
			{"$match": paidOrderFilter()},
			{"$group": bson.M{
				"_id":     nil,
				"revenue": bson.M{"$sum": "$totalAmount"},
			}},
		}
		cursor, err := db.Collection("orders").Aggregate(ctx, pipeline)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		var revenueRows []struct {
			Revenue float64 `bson:"revenue"`
		}
		if err := cursor.All(ctx, &revenueRows); err != nil {
			respondInternalError(c, route, err)
			return
		}
		revenue := 0.0
		if len(revenueRows) > 0 {
			revenue = revenueRows[0].Revenue
		}

		recentOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(5)
		recentCursor, err := db.Collection("orders").Find(ctx, bson.M{}, recentOpts)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer recentCursor.Close(ctx)

		recentOrders := make([]models.Order, 0, 5)
		if err := recentCursor.All(ctx, &recentOrders); err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"totalOrders":   totalOrders,
			"totalUsers":    totalUsers,
			"totalProducts": totalProducts,
			"totalRevenue":  revenue,
			"recentOrders":  recentOrders,
		})
	}
}

/* =======================
   ORDERS
======================= */

// GetAllOrders lists every order, newest first, paginated.
func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/orders"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		filter := bson.M{}
		if status := c.Query("status"); status != "" {
			if !models.IsValidOrderStatus(status) {
				respondWithError(c, http.StatusBadRequest, route, "invalid status filter")
				return
			}
			filter["status"] = status
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)
		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0, limit)
		if err := cursor.All(ctx, &orders); err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orders":     orders,
			"total":      total,
			"totalPages": totalPages(total, limit),
			"page":       page,
		})
	}
}

type orderStatusRequest struct {
	Status         *string `json:"status"`
	PaymentStatus  *string `json:"paymentStatus"`
	TrackingNumber *string `json:"trackingNumber"`
}

// UpdateOrderStatus validates incoming values against the fixed enumerations
// before writing. Setting payment status to paid also stamps isPaid/paidAt
// once; delivered does the same for the delivery flags.
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/admin/orders/:id/status"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Status == nil && req.PaymentStatus == nil && req.TrackingNumber == nil {
			respondWithError(c, http.StatusBadRequest, route, "nothing to update")
			return
		}

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

		now := time.Now()
		updateSet := bson.M{"updatedAt": now}

		if req.Status != nil {
			if !models.IsValidOrderStatus(*req.Status) {
				respondWithError(c, http.StatusBadRequest, route, "invalid status")
				return
			}
			updateSet["status"] = *req.Status
			if *req.Status == models.OrderStatusDelivered && !order.IsDelivered {
				updateSet["isDelivered"] = true
				updateSet["deliveredAt"] = now
			}
		}
		if req.PaymentStatus != nil {
			if !models.IsValidPaymentStatus(*req.PaymentStatus) {
				respondWithError(c, http.StatusBadRequest, route, "invalid paymentStatus")
				return
			}
			updateSet["paymentStatus"] = *req.PaymentStatus
			if *req.PaymentStatus == models.PaymentStatusPaid && !order.IsPaid {
				updateSet["isPaid"] = true
				updateSet["paidAt"] = now
			}
		}
		if req.TrackingNumber != nil {
			updateSet["trackingNumber"] = *req.TrackingNumber
		}

		if _, err := db.Collection("orders").UpdateByID(ctx, id, bson.M{"$set": updateSet}); err != nil {
			respondInternalError(c, route, err)
			return
		}

		log.Println("[ADMIN] [INFO] order status updated:", id.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "order updated"})
	}
}

func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/orders/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}

/* =======================
   USERS
======================= */

func GetAllUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/users"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "security.createdAt", Value: -1}})
		cursor, err := db.Collection("users").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		users := make([]models.User, 0)
		if err := cursor.All(ctx, &users); err != nil {
			respondInternalError(c, route, err)
			return
		}

		projections := make([]models.User, 0, len(users))
		for _, user := range users {
			projections = append(projections, userProjection(user))
		}

		c.JSON(http.StatusOK, projections)
	}
}

type adminUserUpdateRequest struct {
	IsAdmin    *bool `json:"isAdmin"`
	IsVerified *bool `json:"isVerified"`
	Unlock     *bool `json:"unlock"`
}

// UpdateUserFlags toggles admin/verified flags and can clear a lockout.
func UpdateUserFlags(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/admin/users/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req adminUserUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		updateSet := bson.M{"updatedAt": time.Now()}
		if req.IsAdmin != nil {
			updateSet["isAdmin"] = *req.IsAdmin
		}
		if req.IsVerified != nil {
			updateSet["isVerified"] = *req.IsVerified
		}
		if req.Unlock != nil && *req.Unlock {
			updateSet["security.accountLocked"] = false
			updateSet["security.failedLoginAttempts"] = 0
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("users").UpdateByID(ctx, id, bson.M{"$set": updateSet})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "user updated"})
	}
}

func DeleteUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/users/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("users").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
	}
}

/* =======================
   PRODUCTS
======================= */

// GetAllAdminProducts lists the full catalog without public filtering.
func GetAllAdminProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/products"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("products").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, products)
	}
}

/* =======================
   ANALYTICS
======================= */

// GetTopSellingProducts returns the five products with the most units sold
// across paid, non-cancelled orders.
func GetTopSellingProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/top-selling"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		pipeline := []bson.M{
			{"$match": paidOrderFilter()},
			{"$unwind": "$items"},
			{"$group": bson.M{
				"_id":       "$items.productId",
				"name":      bson.M{"$first": "$items.name"},
				"unitsSold": bson.M{"$sum": "$items.quantity"},
				"revenue":   bson.M{"$sum": bson.M{"$multiply": []interface{}{"$items.price", "$items.quantity"}}},
			}},
			{"$sort": bson.M{"unitsSold": -1}},
			{"$limit": 5},
		}

		cursor, err := db.Collection("orders").Aggregate(ctx, pipeline)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		rows := make([]bson.M, 0, 5)
		if err := cursor.All(ctx, &rows); err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, rows)
	}
}

// Products under this stock level count as low stock.
const lowStockThreshold = 10

// GetLowStockProducts returns the five products closest to running out.
func GetLowStockProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/low-stock"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().
			SetSort(bson.D{{Key: "stockQuantity", Value: 1}}).
			SetLimit(5)
		cursor, err := db.Collection("products").Find(ctx, bson.M{
			"stockQuantity": bson.M{"$lt": lowStockThreshold},
		}, opts)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0, 5)
		if err := cursor.All(ctx, &products); err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, products)
	}
}

// GetRevenueReport buckets paid, non-cancelled orders by date and returns a
// time series of order counts, revenue and estimated profit.
func GetRevenueReport(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/reports/revenue"
		defer handlePanic(c, route)

		format, err := reportDateFormat(c.Query("period"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		pipeline := []bson.M{
			{"$match": paidOrderFilter()},
			{"$group": bson.M{
				"_id": bson.M{"$dateToString": bson.M{
					"format": format,
					"date":   "$createdAt",
				}},
				"orders":  bson.M{"$sum": 1},
				"revenue": bson.M{"$sum": "$totalAmount"},
			}},
			{"$sort": bson.M{"_id": 1}},
		}

		cursor, err := db.Collection("orders").Aggregate(ctx, pipeline)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		var rows []struct {
			Date    string  `bson:"_id"`
			Orders  int64   `bson:"orders"`
			Revenue float64 `bson:"revenue"`
		}
		if err := cursor.All(ctx, &rows); err != nil {
			respondInternalError(c, route, err)
			return
		}

		series := make([]gin.H, 0, len(rows))
		for _, row := range rows {
			series = append(series, gin.H{
				"date":    row.Date,
				"orders":  row.Orders,
				"revenue": row.Revenue,
				"profit":  estimatedProfit(row.Revenue),
			})
		}

		c.JSON(http.StatusOK, series)
	}
}

// GetSalesReport joins order items to products and groups revenue and units
// sold by category.
func GetSalesReport(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/reports/sales"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		pipeline := []bson.M{
			{"$match": paidOrderFilter()},
			{"$unwind": "$items"},
			{"$lookup": bson.M{
				"from":         "products",
				"localField":   "items.productId",
				"foreignField": "_id",
				"as":           "product",
			}},
			{"$unwind": "$product"},
			{"$group": bson.M{
				"_id":       "$product.category",
				"revenue":   bson.M{"$sum": bson.M{"$multiply": []interface{}{"$items.price", "$items.quantity"}}},
				"unitsSold": bson.M{"$sum": "$items.quantity"},
			}},
			{"$sort": bson.M{"revenue": -1}},
		}

		cursor, err := db.Collection("orders").Aggregate(ctx, pipeline)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		var rows []struct {
			Category  string  `bson:"_id"`
			Revenue   float64 `bson:"revenue"`
			UnitsSold int64   `bson:"unitsSold"`
		}
		if err := cursor.All(ctx, &rows); err != nil {
			respondInternalError(c, route, err)
			return
		}

		report := make([]gin.H, 0, len(rows))
		for _, row := range rows {
			report = append(report, gin.H{
				"category":  row.Category,
				"revenue":   row.Revenue,
				"unitsSold": row.UnitsSold,
			})
		}

		c.JSON(http.StatusOK, report)
	}
}
