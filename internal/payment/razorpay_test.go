package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSignPayment_MatchesManualHMAC(t *testing.T) {
	secret := "test_secret"
	orderID := "order_ABC123"
	paymentID := "pay_XYZ789"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	want := hex.EncodeToString(mac.Sum(nil))

	if got := SignPayment(secret, orderID, paymentID); got != want {
		t.Fatalf("SignPayment = %s, want %s", got, want)
	}
}

func TestVerifySignature(t *testing.T) {
	secret := "test_secret"
	valid := SignPayment(secret, "order_1", "pay_1")

	if !VerifySignature(secret, "order_1", "pay_1", valid) {
		t.Fatal("valid signature rejected")
	}
	if VerifySignature(secret, "order_1", "pay_1", valid+"00") {
		t.Fatal("tampered signature accepted")
	}
	if VerifySignature(secret, "order_2", "pay_1", valid) {
		t.Fatal("signature accepted for wrong order")
	}
	if VerifySignature("other_secret", "order_1", "pay_1", valid) {
		t.Fatal("signature accepted under wrong secret")
	}
}

func TestCreateOrder_SendsAmountAndAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key_id" || pass != "key_secret" {
			t.Errorf("unexpected basic auth: %s/%s", user, pass)
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["amount"].(float64) != 49900 {
			t.Errorf("expected amount 49900, got %v", body["amount"])
		}
		if body["currency"] != "INR" {
			t.Errorf("expected currency INR, got %v", body["currency"])
		}

		json.NewEncoder(w).Encode(GatewayOrder{
			ID:       "order_test",
			Amount:   49900,
			Currency: "INR",
			Receipt:  body["receipt"].(string),
			Status:   "created",
		})
	}))
	defer server.Close()

	client := NewClient("key_id", "key_secret")
	client.baseURL = server.URL

	order, err := client.CreateOrder(context.Background(), 49900, "INR", "rcpt_1")
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if order.ID != "order_test" || order.Receipt != "rcpt_1" {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestCreateOrder_GatewayErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient("key_id", "key_secret")
	client.baseURL = server.URL

	if _, err := client.CreateOrder(context.Background(), 100, "INR", "rcpt"); err == nil {
		t.Fatal("expected error for non-2xx gateway response")
	}
}
