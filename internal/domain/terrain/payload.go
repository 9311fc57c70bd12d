package terrain

import (
	"strconv"
	"strings"
)

// Payload is the request body sent to the booking platform on create and
// update. Strings are trimmed, the contact is reduced to digits, and the
// price is parsed; callers must validate the draft first.
type Payload struct {
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Description  string   `json:"description,omitempty"`
	Contact      string   `json:"contact"`
	PricePerHour float64  `json:"pricePerHour"`
	OpenTime     string   `json:"openTime"`
	CloseTime    string   `json:"closeTime"`
	Images       []string `json:"images"`
	SportIDs     []int64  `json:"sportIds"`
}

// BuildPayload normalizes a validated draft plus the selected sport ids into
// the upstream request shape. The id slice is used as given; ordering is the
// caller's concern.
func BuildPayload(d Draft, sportIDs []int64) Payload {
	price, _ := strconv.ParseFloat(strings.TrimSpace(d.PricePerHour), 64)

	images := make([]string, 0, len(d.Images))
	images = append(images, d.Images...)

	ids := make([]int64, 0, len(sportIDs))
	ids = append(ids, sportIDs...)

	return Payload{
		Name:         strings.TrimSpace(d.Name),
		Location:     strings.TrimSpace(d.Location),
		Description:  strings.TrimSpace(d.Description),
		Contact:      DigitsOnly(d.Contact),
		PricePerHour: price,
		OpenTime:     strings.TrimSpace(d.OpenTime),
		CloseTime:    strings.TrimSpace(d.CloseTime),
		Images:       images,
		SportIDs:     ids,
	}
}

func formatPrice(price float64) string {
	if price == 0 {
		return ""
	}

	return strconv.FormatFloat(price, 'f', -1, 64)
}
