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
	"golang.org/x/crypto/bcrypt"

	"github.com/r3lativee/AURA-sub001/internal/config"
	"github.com/r3lativee/AURA-sub001/internal/mailer"
	"github.com/r3lativee/AURA-sub001/internal/middleware"
	"github.com/r3lativee/AURA-sub001/internal/models"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
}

type registerVerifyRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
	OTP      string `json:"otp" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type otpRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// RegisterRequest starts two-phase registration: validates the shape, rejects
// existing emails and mails a fresh OTP, superseding any prior one.
func RegisterRequest(db *mongo.Database, mail *mailer.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/register-request"
		defer handlePanic(c, route)

		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if err := validateRegistration(req.Name, email, req.Password, strings.TrimSpace(req.Phone)); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered", "field": "email"})
			return
		}

		code, err := generateOTP()
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		// Supersede any pending code for this email.
		if _, err := db.Collection("otps").DeleteMany(ctx, bson.M{"email": email}); err != nil {
			respondInternalError(c, route, err)
			return
		}
		if _, err := db.Collection("otps").InsertOne(ctx, models.OTP{
			Email:     email,
			Code:      code,
			CreatedAt: time.Now(),
		}); err != nil {
			respondInternalError(c, route, err)
			return
		}

		if err := mail.SendOTP(email, code); err != nil {
			log.Println("[AUTH] [ERROR] otp mail failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "failed to send verification email")
			return
		}

		log.Println("[AUTH] [INFO] otp sent to:", email)
		c.JSON(http.StatusOK, gin.H{"message": "verification code sent"})
	}
}

// RegisterVerify completes registration: re-checks the OTP, creates the user
// verified and consumes the code.
func RegisterVerify(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/register-verify"
		defer handlePanic(c, route)

		var req registerVerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if err := validateRegistration(req.Name, email, req.Password, strings.TrimSpace(req.Phone)); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var otp models.OTP
		if err := db.Collection("otps").FindOne(ctx, bson.M{"email": email}).Decode(&otp); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "no verification code requested for this email")
			return
		}
		if otp.Code != strings.TrimSpace(req.OTP) {
			respondWithError(c, http.StatusBadRequest, route, "invalid verification code")
			return
		}

		user, err := createUser(ctx, db, req.Name, email, req.Password, strings.TrimSpace(req.Phone), true)
		if err != nil {
			if respondDuplicateKey(c, err, "email") {
				return
			}
			respondInternalError(c, route, err)
			return
		}

		if _, err := db.Collection("otps").DeleteMany(ctx, bson.M{"email": email}); err != nil {
			log.Println("[AUTH] [ERROR] otp cleanup failed:", err)
		}

		token, err := issueToken(user.ID, user.IsAdmin, config.AppEnv.JWTSecret, config.AppEnv.JWTExpiry)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		log.Println("[AUTH] [INFO] user registered:", email)
		c.JSON(http.StatusCreated, gin.H{"token": token, "user": userProjection(user)})
	}
}

// Register is the deprecated single-phase path without OTP gating.
//
// Deprecated: kept for compatibility with older clients; the primary flow is
// register-request + register-verify.
func Register(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/register"
		defer handlePanic(c, route)

		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if err := validateRegistration(req.Name, email, req.Password, strings.TrimSpace(req.Phone)); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := createUser(ctx, db, req.Name, email, req.Password, strings.TrimSpace(req.Phone), false)
		if err != nil {
			if respondDuplicateKey(c, err, "email") {
				return
			}
			respondInternalError(c, route, err)
			return
		}

		token, err := issueToken(user.ID, user.IsAdmin, config.AppEnv.JWTSecret, config.AppEnv.JWTExpiry)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		log.Println("[AUTH] [INFO] user registered (legacy path):", email)
		c.JSON(http.StatusCreated, gin.H{"token": token, "user": userProjection(user)})
	}
}

func createUser(ctx context.Context, db *mongo.Database, name, email, password, phone string, verified bool) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now()
	user := models.User{
		Name:           strings.TrimSpace(name),
		Email:          email,
		Password:       string(hash),
		Phone:          phone,
		ProfileImage:   randomDefaultAvatar(),
		Addresses:      []models.Address{},
		PaymentMethods: []models.PaymentMethod{},
		Wishlist:       nil,
		IsVerified:     verified,
		Security:       models.UserSecurity{CreatedAt: now},
		UpdatedAt:      now,
	}

	res, err := db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return user, nil
}

// Login verifies credentials, maintains the failed-attempt lockout and
// rotates the session record before issuing a token.
func Login(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/login"
		defer handlePanic(c, route)

		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			log.Println("[AUTH] [ERROR] login unknown email")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		if user.Security.AccountLocked {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account locked, reset your password to continue"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			// $inc keeps the counter exact under concurrent failures.
			var updated models.User
			incErr := db.Collection("users").FindOneAndUpdate(ctx,
				bson.M{"_id": user.ID},
				bson.M{"$inc": bson.M{"security.failedLoginAttempts": 1}},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).Decode(&updated)
			if incErr != nil {
				log.Println("[AUTH] [ERROR] failed-attempt update error:", incErr)
			} else if shouldLockAccount(updated.Security.FailedLoginAttempts) {
				if _, err := db.Collection("users").UpdateByID(ctx, user.ID,
					bson.M{"$set": bson.M{"security.accountLocked": true}}); err != nil {
					log.Println("[AUTH] [ERROR] account lock update error:", err)
				} else {
					log.Println("[AUTH] [ERROR] account locked after failed logins:", email)
				}
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		user.Security.FailedLoginAttempts = 0
		user.Security.PushSession(models.Session{
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			LoginTime: time.Now(),
		})

		if _, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
			"security.failedLoginAttempts": 0,
			"security.lastLogin":           user.Security.LastLogin,
			"security.currentSession":      user.Security.CurrentSession,
			"security.sessionHistory":      user.Security.SessionHistory,
		}}); err != nil {
			respondInternalError(c, route, err)
			return
		}

		token, err := issueToken(user.ID, user.IsAdmin, config.AppEnv.JWTSecret, config.AppEnv.JWTExpiry)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		log.Println("[AUTH] [INFO] login succeeded:", email)
		c.JSON(http.StatusOK, gin.H{"token": token, "user": userProjection(user)})
	}
}

// Me returns the authenticated user's projection.
func Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusOK, userProjection(*user))
	}
}

// VerifyOTP checks a submitted code without consuming it; reset-password
// relies on the record still being present afterwards.
func VerifyOTP(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/verify-otp"
		defer handlePanic(c, route)

		var req otpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var otp models.OTP
		if err := db.Collection("otps").FindOne(ctx, bson.M{"email": email}).Decode(&otp); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "no verification code requested for this email")
			return
		}
		if otp.Code != strings.TrimSpace(req.OTP) {
			respondWithError(c, http.StatusBadRequest, route, "invalid verification code")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "code verified"})
	}
}

// ForgotPassword mails a reset code to an existing account.
func ForgotPassword(db *mongo.Database, mail *mailer.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/forgot-password"
		defer handlePanic(c, route)

		var req struct {
			Email string `json:"email" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if count == 0 {
			respondWithError(c, http.StatusNotFound, route, "no account for this email")
			return
		}

		code, err := generateOTP()
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		if _, err := db.Collection("otps").DeleteMany(ctx, bson.M{"email": email}); err != nil {
			respondInternalError(c, route, err)
			return
		}
		if _, err := db.Collection("otps").InsertOne(ctx, models.OTP{
			Email:     email,
			Code:      code,
			CreatedAt: time.Now(),
		}); err != nil {
			respondInternalError(c, route, err)
			return
		}

		if err := mail.SendOTP(email, code); err != nil {
			log.Println("[AUTH] [ERROR] reset mail failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "failed to send reset email")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "reset code sent"})
	}
}

// ResetPassword requires a still-present OTP record as proof of prior
// verification, rehashes the password, clears the lockout and consumes the
// code.
func ResetPassword(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/reset-password"
		defer handlePanic(c, route)

		var req resetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if len(req.NewPassword) < 6 {
			respondWithError(c, http.StatusBadRequest, route, "password must be at least 6 characters")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("otps").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if count == 0 {
			respondWithError(c, http.StatusBadRequest, route, "verification required before resetting password")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		res, err := db.Collection("users").UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{
			"password":                     string(hash),
			"security.failedLoginAttempts": 0,
			"security.accountLocked":       false,
			"updatedAt":                    time.Now(),
		}})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "no account for this email")
			return
		}

		if _, err := db.Collection("otps").DeleteMany(ctx, bson.M{"email": email}); err != nil {
			log.Println("[AUTH] [ERROR] otp cleanup failed:", err)
		}

		log.Println("[AUTH] [INFO] password reset:", email)
		c.JSON(http.StatusOK, gin.H{"message": "password updated"})
	}
}
