package handlers

import "testing"

func TestReportDateFormat(t *testing.T) {
	cases := map[string]string{
		"":      "%Y-%m-%d",
		"day":   "%Y-%m-%d",
		"week":  "%Y-%U",
		"month": "%Y-%m",
		"year":  "%Y",
	}
	for period, want := range cases {
		got, err := reportDateFormat(period)
		if err != nil {
			t.Errorf("reportDateFormat(%q) returned error: %v", period, err)
			continue
		}
		if got != want {
			t.Errorf("reportDateFormat(%q) = %s, want %s", period, got, want)
		}
	}

	if _, err := reportDateFormat("quarter"); err == nil {
		t.Fatal("unknown period must be rejected")
	}
}

func TestEstimatedProfit(t *testing.T) {
	if got := estimatedProfit(1000); got != 300 {
		t.Fatalf("estimatedProfit(1000) = %v, want 300", got)
	}
	if got := estimatedProfit(0); got != 0 {
		t.Fatalf("estimatedProfit(0) = %v, want 0", got)
	}
}
