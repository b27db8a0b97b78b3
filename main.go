package main

import (
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/r3lativee/AURA-sub001/internal/config"
	"github.com/r3lativee/AURA-sub001/internal/database"
	"github.com/r3lativee/AURA-sub001/internal/handlers"
	"github.com/r3lativee/AURA-sub001/internal/mailer"
	"github.com/r3lativee/AURA-sub001/internal/middleware"
	"github.com/r3lativee/AURA-sub001/internal/payment"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)
	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureReviewIndexes(db); err != nil {
		log.Printf("review index warning: %v", err)
	}
	if err := database.EnsureFavoritesIndexes(db); err != nil {
		log.Printf("favorites index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureOTPIndexes(db); err != nil {
		log.Printf("otp index warning: %v", err)
	}

	mail := mailer.New(mailer.Config{
		Host:     config.AppEnv.SMTPHost,
		Port:     config.AppEnv.SMTPPort,
		User:     config.AppEnv.SMTPUser,
		Password: config.AppEnv.SMTPPassword,
		From:     config.AppEnv.SMTPFrom,
	})
	gateway := payment.NewClient(config.AppEnv.RazorpayKeyID, config.AppEnv.RazorpayKeySecret)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.AppEnv.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Uploaded assets; .glb needs its content type forced for the 3D viewer.
	r.GET("/uploads/*filepath", func(c *gin.Context) {
		rel := c.Param("filepath")
		if strings.HasSuffix(strings.ToLower(rel), ".glb") {
			c.Header("Content-Type", "model/gltf-binary")
		}
		c.File(filepath.Join(config.AppEnv.UploadRoot, "uploads", filepath.FromSlash(rel)))
	})

	r.GET("/api/health", handlers.Health())

	secret := config.AppEnv.JWTSecret
	requireVerified := config.AppEnv.RequireVerifiedEmail
	userAuth := middleware.Auth(db, secret, requireVerified)
	adminAuth := middleware.AdminAuth(db, secret, requireVerified)
	authLimiter := middleware.NewRateLimiter(1, 5)

	auth := r.Group("/api/auth")
	{
		auth.POST("/register-request", authLimiter.Limit(), handlers.RegisterRequest(db, mail))
		auth.POST("/register-verify", authLimiter.Limit(), handlers.RegisterVerify(db))
		auth.POST("/register", authLimiter.Limit(), handlers.Register(db))
		auth.POST("/login", authLimiter.Limit(), handlers.Login(db))
		auth.POST("/verify-otp", authLimiter.Limit(), handlers.VerifyOTP(db))
		auth.POST("/forgot-password", authLimiter.Limit(), handlers.ForgotPassword(db, mail))
		auth.POST("/reset-password", authLimiter.Limit(), handlers.ResetPassword(db))
		auth.GET("/me", userAuth, handlers.Me())
	}

	products := r.Group("/api/products")
	{
		products.GET("", handlers.GetProducts(db))
		products.GET("/:id", handlers.GetProduct(db))
		products.POST("", adminAuth, handlers.CreateProduct(db))
		products.PUT("/:id", adminAuth, handlers.UpdateProduct(db))
		products.DELETE("/:id", adminAuth, handlers.DeleteProduct(db))
	}

	orders := r.Group("/api/orders")
	orders.Use(userAuth)
	{
		orders.POST("", handlers.CreateOrder(db, mail))
		orders.GET("/my-orders", handlers.GetMyOrders(db))
		orders.POST("/razorpay", handlers.CreateRazorpayOrder(gateway))
		orders.POST("/razorpay/verify", handlers.VerifyRazorpayPayment(db))
		orders.GET("/:id", handlers.GetOrder(db))
		orders.PATCH("/:id/cancel", handlers.CancelOrder(db))
	}

	reviews := r.Group("/api/reviews")
	{
		reviews.GET("/product/:productId", handlers.GetProductReviews(db))
		reviews.POST("", userAuth, handlers.CreateReview(db))
		reviews.PUT("/:id", userAuth, handlers.UpdateReview(db))
		reviews.DELETE("/:id", userAuth, handlers.DeleteReview(db))
		reviews.POST("/:id/like", userAuth, handlers.ToggleReviewLike(db))
		reviews.POST("/:id/reply", adminAuth, handlers.AddReviewReply(db))
		reviews.DELETE("/:id/reply/:replyId", adminAuth, handlers.DeleteReviewReply(db))
	}

	favorites := r.Group("/api/favorites")
	favorites.Use(userAuth)
	{
		favorites.GET("", handlers.GetFavorites(db))
		favorites.POST("/:productId", handlers.AddFavorite(db))
		favorites.DELETE("/:productId", handlers.RemoveFavorite(db))
	}

	users := r.Group("/api/users")
	users.Use(userAuth)
	{
		users.GET("/profile", handlers.GetProfile())
		users.PATCH("/profile", handlers.UpdateProfile(db))
		users.PUT("/profile-image", handlers.UploadProfileImage(db))
		users.GET("/addresses", handlers.GetAddresses())
		users.POST("/addresses", handlers.CreateAddress(db))
		users.PATCH("/addresses/:id", handlers.UpdateAddress(db))
		users.DELETE("/addresses/:id", handlers.DeleteAddress(db))
		users.GET("/payment-methods", handlers.GetPaymentMethods())
		users.POST("/payment-methods", handlers.CreatePaymentMethod(db))
		users.DELETE("/payment-methods/:id", handlers.DeletePaymentMethod(db))
	}

	r.POST("/api/upload", adminAuth, handlers.UploadFile())

	admin := r.Group("/api/admin")
	admin.Use(adminAuth)
	{
		admin.GET("/stats", handlers.GetAdminStats(db))
		admin.GET("/orders", handlers.GetAllOrders(db))
		admin.PATCH("/orders/:id/status", handlers.UpdateOrderStatus(db))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(db))
		admin.GET("/users", handlers.GetAllUsers(db))
		admin.PATCH("/users/:id", handlers.UpdateUserFlags(db))
		admin.DELETE("/users/:id", handlers.DeleteUser(db))
		admin.GET("/products", handlers.GetAllAdminProducts(db))
		admin.GET("/top-selling", handlers.GetTopSellingProducts(db))
		admin.GET("/low-stock", handlers.GetLowStockProducts(db))
		admin.GET("/reports/revenue", handlers.GetRevenueReport(db))
		admin.GET("/reports/sales", handlers.GetSalesReport(db))
	}

	addr := ":" + config.AppEnv.Port
	log.Println("listening on", addr)
	if err := r.Run(addr); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
