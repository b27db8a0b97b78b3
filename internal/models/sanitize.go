package models

import "strings"

// MaskPaymentMethod strips the full card number and CVV from a payment method
// before it is persisted, keeping only the last four digits. Callers must run
// every payment-method write through this; nothing downstream re-checks.
func MaskPaymentMethod(pm PaymentMethod) PaymentMethod {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, pm.CardNumber)

	if len(digits) >= 4 {
		pm.Last4 = digits[len(digits)-4:]
	}
	pm.CardNumber = ""
	pm.CVV = ""
	return pm
}

// NormalizeDefaultAddress keeps at most one address flagged default. When
// defaultID matches an entry, that entry wins; otherwise the first flagged
// entry is kept and the rest are cleared.
func NormalizeDefaultAddress(addresses []Address, defaultID string) []Address {
	out := make([]Address, len(addresses))
	copy(out, addresses)

	chosen := -1
	for i := range out {
		if defaultID != "" && out[i].ID == defaultID {
			chosen = i
			break
		}
		if chosen == -1 && out[i].IsDefault {
			chosen = i
		}
	}

	for i := range out {
		out[i].IsDefault = i == chosen
	}
	return out
}

// NormalizeDefaultPaymentMethod mirrors NormalizeDefaultAddress for cards.
func NormalizeDefaultPaymentMethod(methods []PaymentMethod, defaultID string) []PaymentMethod {
	out := make([]PaymentMethod, len(methods))
	copy(out, methods)

	chosen := -1
	for i := range out {
		if defaultID != "" && out[i].ID == defaultID {
			chosen = i
			break
		}
		if chosen == -1 && out[i].IsDefault {
			chosen = i
		}
	}

	for i := range out {
		out[i].IsDefault = i == chosen
	}
	return out
}
