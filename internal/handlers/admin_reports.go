package handlers

import "fmt"

// Revenue is estimated at a fixed 30% margin; there is no real cost model.
const profitMargin = 0.3

// reportDateFormat maps a report period to the $dateToString bucket format.
func reportDateFormat(period string) (string, error) {
	switch period {
	case "day", "":
		return "%Y-%m-%d", nil
	case "week":
		return "%Y-%U", nil
	case "month":
		return "%Y-%m", nil
	case "year":
		return "%Y", nil
	default:
		return "", fmt.Errorf("invalid period: %s", period)
	}
}

func estimatedProfit(revenue float64) float64 {
	return revenue * profitMargin
}
