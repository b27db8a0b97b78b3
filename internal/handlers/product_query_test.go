package handlers

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildProductFilter_CategoryAll(t *testing.T) {
	if got := buildProductFilter("all", ""); len(got) != 0 {
		t.Fatalf("category=all must not restrict, got %v", got)
	}
	if got := buildProductFilter("", ""); len(got) != 0 {
		t.Fatalf("empty params must not restrict, got %v", got)
	}
}

func TestBuildProductFilter_CategoryExact(t *testing.T) {
	got := buildProductFilter("Skincare", "")
	if got["category"] != "Skincare" {
		t.Fatalf("expected exact category match, got %v", got)
	}
}

func TestBuildProductFilter_SearchEscapesRegex(t *testing.T) {
	got := buildProductFilter("", "2-in-1 (travel)")
	or, ok := got["$or"].([]bson.M)
	if !ok || len(or) != 2 {
		t.Fatalf("expected $or over name and description, got %v", got)
	}
	name := or[0]["name"].(bson.M)
	if name["$regex"] != `2-in-1 \(travel\)` {
		t.Fatalf("regex metacharacters not escaped: %v", name["$regex"])
	}
	if name["$options"] != "i" {
		t.Fatalf("search must be case-insensitive, got %v", name["$options"])
	}
}

func TestBuildProductSort(t *testing.T) {
	cases := []struct {
		key  string
		want bson.D
	}{
		{"newest", bson.D{{Key: "createdAt", Value: -1}}},
		{"", bson.D{{Key: "createdAt", Value: -1}}},
		{"bogus", bson.D{{Key: "createdAt", Value: -1}}},
		{"price_low", bson.D{{Key: "price", Value: 1}}},
		{"price_high", bson.D{{Key: "price", Value: -1}}},
		{"popular", bson.D{{Key: "ratings.average", Value: -1}, {Key: "ratings.count", Value: -1}}},
	}

	for _, tc := range cases {
		if got := buildProductSort(tc.key); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("buildProductSort(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total, limit, want int64
	}{
		{0, 12, 0},
		{1, 12, 1},
		{12, 12, 1},
		{13, 12, 2},
		{25, 12, 3},
	}
	for _, tc := range cases {
		if got := totalPages(tc.total, tc.limit); got != tc.want {
			t.Errorf("totalPages(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}

func TestParsePaginationParams(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	if err != nil || page != 1 || limit != 12 {
		t.Fatalf("defaults wrong: page=%d limit=%d err=%v", page, limit, err)
	}

	page, limit, err = parsePaginationParams("3", "24")
	if err != nil || page != 3 || limit != 24 {
		t.Fatalf("explicit values wrong: page=%d limit=%d err=%v", page, limit, err)
	}

	if _, _, err := parsePaginationParams("0", "10"); err == nil {
		t.Fatal("page=0 must be rejected")
	}
	if _, _, err := parsePaginationParams("1", "500"); err == nil {
		t.Fatal("limit over cap must be rejected")
	}
	if _, _, err := parsePaginationParams("x", "10"); err == nil {
		t.Fatal("non-numeric page must be rejected")
	}
}
