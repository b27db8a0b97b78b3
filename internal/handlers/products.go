package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/r3lativee/AURA-sub001/internal/models"
)

/* =======================
   MULTIPART INPUT
======================= */

type multipartProductInput struct {
	Name           string
	NameSet        bool
	Description    string
	DescriptionSet bool
	Price          float64
	PriceSet       bool
	Category       string
	CategorySet    bool
	Stock          int
	StockSet       bool
	Sizes          []models.ProductSize
	SizesSet       bool
	ModelPath      string
	ModelSet       bool
	ThumbnailPath  string
	ThumbnailSet   bool
	ImagePaths     []string
	ImagesSet      bool
}

func parseMultipartProductRequest(c *gin.Context) (multipartProductInput, error) {
	if err := c.Request.ParseMultipartForm(64 << 20); err != nil {
		log.Println("[PRODUCT] multipart parse error:", err)
		return multipartProductInput{}, err
	}

	input := multipartProductInput{}

	if value, ok := c.GetPostForm("name"); ok {
		input.Name = strings.TrimSpace(value)
		input.NameSet = true
	}
	if value, ok := c.GetPostForm("description"); ok {
		input.Description = strings.TrimSpace(value)
		input.DescriptionSet = true
	}
	if value, ok := c.GetPostForm("category"); ok {
		input.Category = strings.TrimSpace(value)
		input.CategorySet = true
	}

	if value, ok := c.GetPostForm("price"); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return multipartProductInput{}, errors.New("price must be a number")
		}
		input.Price = parsed
		input.PriceSet = true
	}
	if value, ok := c.GetPostForm("stockQuantity"); ok {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return multipartProductInput{}, errors.New("stockQuantity must be an integer")
		}
		input.Stock = parsed
		input.StockSet = true
	}

	// Sizes arrive as a JSON array in a form field.
	if value, ok := c.GetPostForm("sizes"); ok && strings.TrimSpace(value) != "" {
		var sizes []models.ProductSize
		if err := json.Unmarshal([]byte(value), &sizes); err != nil {
			return multipartProductInput{}, errors.New("sizes must be a JSON array")
		}
		input.Sizes = sizes
		input.SizesSet = true
	}

	if file, err := c.FormFile(uploadFieldModel); err == nil {
		modelPath, err := saveUpload(c, file, uploadFieldModel)
		if err != nil {
			return multipartProductInput{}, err
		}
		input.ModelPath = modelPath
		input.ModelSet = true
	}

	if file, err := c.FormFile(uploadFieldThumbnail); err == nil {
		thumbPath, err := saveUpload(c, file, uploadFieldThumbnail)
		if err != nil {
			return multipartProductInput{}, err
		}
		input.ThumbnailPath = thumbPath
		input.ThumbnailSet = true
	}

	if form := c.Request.MultipartForm; form != nil {
		if files := form.File["images"]; len(files) > 0 {
			for _, file := range files {
				imagePath, err := saveUpload(c, file, uploadFieldImage)
				if err != nil {
					return multipartProductInput{}, err
				}
				input.ImagePaths = append(input.ImagePaths, imagePath)
			}
			input.ImagesSet = true
		}
	}

	return input, nil
}

/* =======================
   PUBLIC CATALOG
======================= */

// GetProducts lists the catalog with category filter, free-text search, sort
// selection and pagination.
func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		filter := buildProductFilter(c.Query("category"), c.Query("search"))
		sort := buildProductSort(c.Query("sort"))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("products").CountDocuments(ctx, filter)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		opts := options.Find().
			SetSort(sort).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("products").Find(ctx, filter, opts)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0, limit)
		if err := cursor.All(ctx, &products); err != nil {
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"products":      products,
			"totalProducts": total,
			"totalPages":    totalPages(total, limit),
			"currentPage":   page,
		})
	}
}

// GetProduct is a direct lookup; absence yields 404.
func GetProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "product not found")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, product)
	}
}

/* =======================
   ADMIN CRUD
======================= */

// CreateProduct accepts a multipart payload with exactly one .glb model file
// and one thumbnail image.
func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products"
		defer handlePanic(c, route)

		if !strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
			respondWithError(c, http.StatusUnsupportedMediaType, route, "multipart/form-data required")
			return
		}

		input, err := parseMultipartProductRequest(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		if !input.NameSet || input.Name == "" {
			respondWithError(c, http.StatusBadRequest, route, "name required")
			return
		}
		if !input.PriceSet || input.Price <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "invalid price")
			return
		}
		if !input.CategorySet || !models.IsValidCategory(input.Category) {
			respondWithError(c, http.StatusBadRequest, route, "invalid category")
			return
		}
		if input.StockSet && input.Stock < 0 {
			respondWithError(c, http.StatusBadRequest, route, "stockQuantity must be zero or greater")
			return
		}
		if !input.ModelSet {
			respondWithError(c, http.StatusBadRequest, route, "model file required")
			return
		}
		if !input.ThumbnailSet {
			respondWithError(c, http.StatusBadRequest, route, "thumbnail required")
			return
		}

		now := time.Now()
		product := models.Product{
			Name:          input.Name,
			Description:   input.Description,
			Price:         input.Price,
			Category:      input.Category,
			Images:        input.ImagePaths,
			Sizes:         input.Sizes,
			StockQuantity: input.Stock,
			InStock:       input.Stock > 0,
			ModelURL:      input.ModelPath,
			ThumbnailURL:  input.ThumbnailPath,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if product.Images == nil {
			product.Images = []string{}
		}
		if product.Sizes == nil {
			product.Sizes = []models.ProductSize{}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		product.ID = res.InsertedID.(primitive.ObjectID)

		log.Println("[PRODUCT] [INFO] created:", product.ID.Hex())
		c.JSON(http.StatusCreated, product)
	}
}

// UpdateProduct replaces a stored asset only when a new file is supplied,
// deleting the previous asset from disk first.
func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		if !strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
			respondWithError(c, http.StatusUnsupportedMediaType, route, "multipart/form-data required")
			return
		}

		input, err := parseMultipartProductRequest(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&existing); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "product not found")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		updateSet := bson.M{"updatedAt": time.Now()}

		if input.NameSet {
			if input.Name == "" {
				respondWithError(c, http.StatusBadRequest, route, "name required")
				return
			}
			updateSet["name"] = input.Name
		}
		if input.DescriptionSet {
			updateSet["description"] = input.Description
		}
		if input.PriceSet {
			if input.Price <= 0 {
				respondWithError(c, http.StatusBadRequest, route, "invalid price")
				return
			}
			updateSet["price"] = input.Price
		}
		if input.CategorySet {
			if !models.IsValidCategory(input.Category) {
				respondWithError(c, http.StatusBadRequest, route, "invalid category")
				return
			}
			updateSet["category"] = input.Category
		}
		if input.StockSet {
			if input.Stock < 0 {
				respondWithError(c, http.StatusBadRequest, route, "stockQuantity must be zero or greater")
				return
			}
			updateSet["stockQuantity"] = input.Stock
			updateSet["inStock"] = input.Stock > 0
		}
		if input.SizesSet {
			updateSet["sizes"] = input.Sizes
		}
		if input.ImagesSet {
			updateSet["images"] = input.ImagePaths
		}
		if input.ModelSet {
			if err := safeDeleteUpload(existing.ModelURL); err != nil {
				log.Println("[PRODUCT] [ERROR] old model delete failed:", err)
			}
			updateSet["modelUrl"] = input.ModelPath
		}
		if input.ThumbnailSet {
			if err := safeDeleteUpload(existing.ThumbnailURL); err != nil {
				log.Println("[PRODUCT] [ERROR] old thumbnail delete failed:", err)
			}
			updateSet["thumbnailUrl"] = input.ThumbnailPath
		}

		if _, err := db.Collection("products").UpdateByID(ctx, id, bson.M{"$set": updateSet}); err != nil {
			respondInternalError(c, route, err)
			return
		}

		var updated models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&updated); err != nil {
			respondInternalError(c, route, err)
			return
		}

		log.Println("[PRODUCT] [INFO] updated:", id.Hex())
		c.JSON(http.StatusOK, updated)
	}
}

// DeleteProduct removes the document and its stored assets.
func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&existing); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "product not found")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		if _, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			respondInternalError(c, route, err)
			return
		}

		if err := safeDeleteUpload(existing.ModelURL); err != nil {
			log.Println("[PRODUCT] [ERROR] model delete failed:", err)
		}
		if err := safeDeleteUpload(existing.ThumbnailURL); err != nil {
			log.Println("[PRODUCT] [ERROR] thumbnail delete failed:", err)
		}
		for _, image := range existing.Images {
			if err := safeDeleteUpload(image); err != nil {
				log.Println("[PRODUCT] [ERROR] image delete failed:", err)
			}
		}

		log.Println("[PRODUCT] [INFO] deleted:", id.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}
