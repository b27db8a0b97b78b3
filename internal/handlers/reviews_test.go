package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToggleLike_AddsWhenAbsent(t *testing.T) {
	userID := primitive.NewObjectID()
	other := primitive.NewObjectID()

	update, liked, count := toggleLike([]primitive.ObjectID{other}, userID)
	if !liked {
		t.Fatal("expected liked=true for a first toggle")
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if _, ok := update["$addToSet"]; !ok {
		t.Fatalf("expected $addToSet update, got %v", update)
	}
}

func TestToggleLike_RemovesWhenPresent(t *testing.T) {
	userID := primitive.NewObjectID()

	update, liked, count := toggleLike([]primitive.ObjectID{userID}, userID)
	if liked {
		t.Fatal("expected liked=false after removing an existing like")
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
	if _, ok := update["$pull"]; !ok {
		t.Fatalf("expected $pull update, got %v", update)
	}
}

func TestToggleLike_DoubleToggleRestoresState(t *testing.T) {
	userID := primitive.NewObjectID()
	likes := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}

	first, liked, count := toggleLike(likes, userID)
	if !liked || count != len(likes)+1 {
		t.Fatalf("first toggle: liked=%v count=%d", liked, count)
	}

	afterAdd := append(append([]primitive.ObjectID{}, likes...), userID)
	second, liked, count := toggleLike(afterAdd, userID)
	if liked || count != len(likes) {
		t.Fatalf("second toggle: liked=%v count=%d, want false %d", liked, count, len(likes))
	}

	if _, ok := first["$addToSet"]; !ok {
		t.Fatalf("first update = %v, want $addToSet", first)
	}
	if pull, ok := second["$pull"]; !ok || pull.(bson.M)["likes"] != userID {
		t.Fatalf("second update = %v, want $pull of the caller", second)
	}
}
