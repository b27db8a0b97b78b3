package models

import "testing"

func TestMaskPaymentMethod_KeepsOnlyLast4(t *testing.T) {
	pm := MaskPaymentMethod(PaymentMethod{
		CardName:   "A User",
		CardNumber: "4111 1111 1111 1234",
		CVV:        "123",
	})

	if pm.Last4 != "1234" {
		t.Fatalf("expected last4=1234, got %q", pm.Last4)
	}
	if pm.CardNumber != "" {
		t.Fatalf("card number must not survive masking, got %q", pm.CardNumber)
	}
	if pm.CVV != "" {
		t.Fatalf("cvv must not survive masking, got %q", pm.CVV)
	}
}

func TestMaskPaymentMethod_ShortNumberLeavesLast4Empty(t *testing.T) {
	pm := MaskPaymentMethod(PaymentMethod{CardNumber: "12"})
	if pm.Last4 != "" {
		t.Fatalf("expected empty last4 for short number, got %q", pm.Last4)
	}
	if pm.CardNumber != "" {
		t.Fatalf("card number must be cleared, got %q", pm.CardNumber)
	}
}

func TestNormalizeDefaultAddress_SingleDefault(t *testing.T) {
	addresses := []Address{
		{ID: "a", IsDefault: true},
		{ID: "b", IsDefault: true},
		{ID: "c"},
	}

	out := NormalizeDefaultAddress(addresses, "b")

	defaults := 0
	for _, a := range out {
		if a.IsDefault {
			defaults++
			if a.ID != "b" {
				t.Fatalf("expected b to be default, got %s", a.ID)
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default, got %d", defaults)
	}
}

func TestNormalizeDefaultAddress_FirstFlaggedWinsWithoutID(t *testing.T) {
	addresses := []Address{
		{ID: "a"},
		{ID: "b", IsDefault: true},
		{ID: "c", IsDefault: true},
	}

	out := NormalizeDefaultAddress(addresses, "")

	if !out[1].IsDefault || out[0].IsDefault || out[2].IsDefault {
		t.Fatalf("expected only b default, got %+v", out)
	}
}

func TestPushSession_BoundsHistory(t *testing.T) {
	var sec UserSecurity
	for i := 0; i < MaxSessionHistory+5; i++ {
		sec.PushSession(Session{IP: "10.0.0.1"})
	}

	if len(sec.SessionHistory) != MaxSessionHistory {
		t.Fatalf("expected history capped at %d, got %d", MaxSessionHistory, len(sec.SessionHistory))
	}
	if sec.CurrentSession == nil || !sec.CurrentSession.Active {
		t.Fatalf("expected an active current session, got %+v", sec.CurrentSession)
	}
	for i, s := range sec.SessionHistory {
		if s.Active {
			t.Fatalf("history entry %d still active", i)
		}
	}
}

func TestRatingAverage_RoundsToOneDecimal(t *testing.T) {
	cases := []struct {
		ratings []int
		want    float64
	}{
		{nil, 0},
		{[]int{5}, 5},
		{[]int{4, 5}, 4.5},
		{[]int{3, 4, 4}, 3.7},
		{[]int{1, 2}, 1.5},
		{[]int{5, 5, 4, 3, 2}, 3.8},
	}

	for _, tc := range cases {
		if got := RatingAverage(tc.ratings); got != tc.want {
			t.Errorf("RatingAverage(%v) = %v, want %v", tc.ratings, got, tc.want)
		}
	}
}

func TestCanCancelOrder(t *testing.T) {
	allowed := map[string]bool{
		OrderStatusPending:    true,
		OrderStatusProcessing: true,
		OrderStatusShipped:    false,
		OrderStatusDelivered:  false,
		OrderStatusCancelled:  false,
	}
	for status, want := range allowed {
		if got := CanCancelOrder(status); got != want {
			t.Errorf("CanCancelOrder(%s) = %v, want %v", status, got, want)
		}
	}
}
