package terrain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldErrors maps a draft field name to a user-facing message. Keys are
// always a subset of the draft field names.
type FieldErrors map[string]string

const phoneDigitCount = 10

// Field validators are pure: same input, same message, no side effects. An
// empty return means the value passed.

// Required rejects values that trim to nothing.
func Required(value, label string) string {
	if strings.TrimSpace(value) == "" {
		return fmt.Sprintf("%s is required.", label)
	}

	return ""
}

// Phone accepts any formatting but demands exactly ten digits once the noise
// is stripped.
func Phone(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Contact number is required."
	}
	if len(DigitsOnly(value)) != phoneDigitCount {
		return fmt.Sprintf("Contact number must contain %d digits.", phoneDigitCount)
	}

	return ""
}

// Price accepts numeric strings strictly greater than zero.
func Price(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "Price per hour is required."
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return "Price per hour must be a number."
	}
	if parsed <= 0 {
		return "Price per hour must be greater than zero."
	}

	return ""
}

// ImagesNonEmpty demands at least one attached image.
func ImagesNonEmpty(images []string) string {
	if len(images) == 0 {
		return "At least one image is required."
	}

	return ""
}

// ClockTime accepts HH:MM values. Empty is allowed because open and close
// hours carry defaults.
func ClockTime(value, label string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if _, err := time.Parse("15:04", trimmed); err != nil {
		return fmt.Sprintf("%s must use the HH:MM format.", label)
	}

	return ""
}

// ValidateDraft runs every field validator over the draft and collects the
// failures. The selection-non-empty check lives with the form session because
// the selection is not part of the draft value itself.
func ValidateDraft(d Draft) FieldErrors {
	errs := make(FieldErrors)

	if msg := Required(d.Name, "Name"); msg != "" {
		errs[FieldName] = msg
	}
	if msg := Required(d.Location, "Location"); msg != "" {
		errs[FieldLocation] = msg
	}
	if msg := Phone(d.Contact); msg != "" {
		errs[FieldContact] = msg
	}
	if msg := Price(d.PricePerHour); msg != "" {
		errs[FieldPricePerHour] = msg
	}
	if msg := ClockTime(d.OpenTime, "Opening time"); msg != "" {
		errs[FieldOpenTime] = msg
	}
	if msg := ClockTime(d.CloseTime, "Closing time"); msg != "" {
		errs[FieldCloseTime] = msg
	}
	if msg := ImagesNonEmpty(d.Images); msg != "" {
		errs[FieldImages] = msg
	}

	return errs
}
