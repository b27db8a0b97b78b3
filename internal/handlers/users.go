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
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/r3lativee/AURA-sub001/internal/middleware"
	"github.com/r3lativee/AURA-sub001/internal/models"
)

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type addressRequest struct {
	Label     string `json:"label" binding:"required"`
	Street    string `json:"street" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required"`
	Pincode   string `json:"pincode" binding:"required"`
	Country   string `json:"country" binding:"required"`
	IsDefault bool   `json:"isDefault"`
}

type paymentMethodRequest struct {
	CardName    string `json:"cardName" binding:"required"`
	CardNumber  string `json:"cardNumber" binding:"required"`
	CVV         string `json:"cvv"`
	Brand       string `json:"brand"`
	ExpiryMonth int    `json:"expiryMonth" binding:"required,min=1,max=12"`
	ExpiryYear  int    `json:"expiryYear" binding:"required"`
	IsDefault   bool   `json:"isDefault"`
}

// GetProfile returns the authenticated user.
func GetProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		c.JSON(http.StatusOK, userProjection(*user))
	}
}

// UpdateProfile edits name and phone.
func UpdateProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/users/profile"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)

		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		updateSet := bson.M{"updatedAt": time.Now()}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondWithError(c, http.StatusBadRequest, route, "name required")
				return
			}
			updateSet["name"] = name
		}
		if req.Phone != nil {
			phone := strings.TrimSpace(*req.Phone)
			if phone != "" && !phonePattern.MatchString(phone) {
				respondWithError(c, http.StatusBadRequest, route, "phone must be 10 digits")
				return
			}
			updateSet["phone"] = phone
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{"$set": updateSet}); err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "profile updated"})
	}
}

// UploadProfileImage replaces the avatar, deleting a previously uploaded one.
func UploadProfileImage(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/users/profile-image"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)

		file, err := c.FormFile(uploadFieldAvatar)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "profileImage file required")
			return
		}

		publicPath, err := saveUpload(c, file, uploadFieldAvatar)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		// Default avatars are shared; only delete user-uploaded ones.
		if !isDefaultAvatar(user.ProfileImage) {
			if err := safeDeleteUpload(user.ProfileImage); err != nil {
				log.Println("[USER] [ERROR] old avatar delete failed:", err)
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
			"profileImage": publicPath,
			"updatedAt":    time.Now(),
		}}); err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"profileImage": publicPath})
	}
}

func isDefaultAvatar(path string) bool {
	for _, avatar := range defaultAvatars {
		if avatar == path {
			return true
		}
	}
	return false
}

/* =======================
   ADDRESSES
======================= */

func GetAddresses() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		c.JSON(http.StatusOK, user.Addresses)
	}
}

// CreateAddress appends an address; the first one, or an isDefault request,
// becomes the single default.
func CreateAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users/addresses"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		address := models.Address{
			ID:        uuid.NewString(),
			Label:     strings.TrimSpace(req.Label),
			Street:    strings.TrimSpace(req.Street),
			City:      strings.TrimSpace(req.City),
			State:     strings.TrimSpace(req.State),
			Pincode:   strings.TrimSpace(req.Pincode),
			Country:   strings.TrimSpace(req.Country),
			IsDefault: req.IsDefault || len(user.Addresses) == 0,
		}

		addresses := append(user.Addresses, address)
		defaultID := ""
		if address.IsDefault {
			defaultID = address.ID
		}
		addresses = models.NormalizeDefaultAddress(addresses, defaultID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
			"addresses": addresses,
			"updatedAt": time.Now(),
		}}); err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, address)
	}
}

// UpdateAddress edits one address by id.
func UpdateAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/users/addresses/:id"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		addressID := c.Param("id")

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		found := false
		addresses := make([]models.Address, len(user.Addresses))
		copy(addresses, user.Addresses)
		for i := range addresses {
			if addresses[i].ID != addressID {
				continue
			}
			addresses[i] = models.Address{
				ID:        addressID,
				Label:     strings.TrimSpace(req.Label),
				Street:    strings.TrimSpace(req.Street),
				City:      strings.TrimSpace(req.City),
				State:     strings.TrimSpace(req.State),
				Pincode:   strings.TrimSpace(req.Pincode),
				Country:   strings.TrimSpace(req.Country),
				IsDefault: req.IsDefault,
			}
			found = true
		}
		if !found {
			respondWithError(c, http.StatusNotFound, route, "address not found")
			return
		}

		defaultID := ""
		if req.IsDefault {
			defaultID = addressID
		}
		addresses = models.NormalizeDefaultAddress(addresses, defaultID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
			"addresses": addresses,
			"updatedAt": time.Now(),
		}}); err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "address updated"})
	}
}

// DeleteAddress removes one address by id.
func DeleteAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/users/addresses/:id"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		addressID := c.Param("id")

		addresses := make([]models.Address, 0, len(user.Addresses))
		found := false
		for _, address := range user.Addresses {
			if address.ID == addressID {
				found = true
				continue
			}
			addresses = append(addresses, address)
		}
		if !found {
			respondWithError(c, http.StatusNotFound, route, "address not found")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
			"addresses": addresses,
			"updatedAt": time.Now(),
		}}); err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "address deleted"})
	}
}

/* =======================
   PAYMENT METHODS
======================= */

func GetPaymentMethods() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		methods := make([]models.PaymentMethod, 0, len(user.PaymentMethods))
		for _, pm := range user.PaymentMethods {
			methods = append(methods, models.MaskPaymentMethod(pm))
		}
		c.JSON(http.StatusOK, methods)
	}
}

// CreatePaymentMethod saves a card. The full number and CVV are dropped at
// this write boundary via MaskPaymentMethod.
func CreatePaymentMethod(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users/payment-methods"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)

		var req paymentMethodRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		pm := models.MaskPaymentMethod(models.PaymentMethod{
			ID:          uuid.NewString(),
			CardName:    strings.TrimSpace(req.CardName),
			CardNumber:  req.CardNumber,
			CVV:         req.CVV,
			Brand:       strings.TrimSpace(req.Brand),
			ExpiryMonth: req.ExpiryMonth,
			ExpiryYear:  req.ExpiryYear,
			IsDefault:   req.IsDefault || len(user.PaymentMethods) == 0,
		})
		if pm.Last4 == "" {
			respondWithError(c, http.StatusBadRequest, route, "invalid card number")
			return
		}

		methods := append(user.PaymentMethods, pm)
		defaultID := ""
		if pm.IsDefault {
			defaultID = pm.ID
		}
		methods = models.NormalizeDefaultPaymentMethod(methods, defaultID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
			"paymentMethods": methods,
			"updatedAt":      time.Now(),
		}}); err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, pm)
	}
}

// DeletePaymentMethod removes one saved card by id.
func DeletePaymentMethod(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/users/payment-methods/:id"
		defer handlePanic(c, route)

		user := middleware.CurrentUser(c)
		methodID := c.Param("id")

		methods := make([]models.PaymentMethod, 0, len(user.PaymentMethods))
		found := false
		for _, pm := range user.PaymentMethods {
			if pm.ID == methodID {
				found = true
				continue
			}
			methods = append(methods, pm)
		}
		if !found {
			respondWithError(c, http.StatusNotFound, route, "payment method not found")
			return
		}

		methods = models.NormalizeDefaultPaymentMethod(methods, "")

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
			"paymentMethods": methods,
			"updatedAt":      time.Now(),
		}}); err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "payment method deleted"})
	}
}
