package handlers

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Sort keys accepted by the catalog list endpoint.
const (
	sortNewest    = "newest"
	sortPriceLow  = "price_low"
	sortPriceHigh = "price_high"
	sortPopular   = "popular"
)

// buildProductFilter translates catalog query params into a Mongo filter.
// Category "all" or empty means no category restriction; search matches name
// or description case-insensitively with regex metacharacters escaped.
func buildProductFilter(category, search string) bson.M {
	filter := bson.M{}

	category = strings.TrimSpace(category)
	if category != "" && !strings.EqualFold(category, "all") {
		filter["category"] = category
	}

	search = strings.TrimSpace(search)
	if search != "" {
		pattern := regexp.QuoteMeta(search)
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	return filter
}

// buildProductSort maps a sort key to a Mongo sort document, defaulting to
// newest-first.
func buildProductSort(sortKey string) bson.D {
	switch strings.TrimSpace(sortKey) {
	case sortPriceLow:
		return bson.D{{Key: "price", Value: 1}}
	case sortPriceHigh:
		return bson.D{{Key: "price", Value: -1}}
	case sortPopular:
		return bson.D{{Key: "ratings.average", Value: -1}, {Key: "ratings.count", Value: -1}}
	case sortNewest, "":
		return bson.D{{Key: "createdAt", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

func totalPages(total, limit int64) int64 {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
