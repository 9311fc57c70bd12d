package terrain

import "strings"

// Canonical field names shared by the draft, the error map, and the HTTP DTOs.
const (
	FieldName         = "name"
	FieldLocation     = "location"
	FieldDescription  = "description"
	FieldContact      = "contact"
	FieldPricePerHour = "pricePerHour"
	FieldOpenTime     = "openTime"
	FieldCloseTime    = "closeTime"
	FieldImages       = "images"
	FieldSports       = "sports"
)

// KnownField reports whether name is a settable draft field.
func KnownField(name string) bool {
	switch name {
	case FieldName, FieldLocation, FieldDescription, FieldContact,
		FieldPricePerHour, FieldOpenTime, FieldCloseTime:
		return true
	default:
		return false
	}
}

// Set replaces one named field on the draft. Unknown names are rejected so the
// error map can never grow keys outside the draft.
func (d *Draft) Set(name, value string) bool {
	switch name {
	case FieldName:
		d.Name = value
	case FieldLocation:
		d.Location = value
	case FieldDescription:
		d.Description = value
	case FieldContact:
		d.Contact = value
	case FieldPricePerHour:
		d.PricePerHour = value
	case FieldOpenTime:
		d.OpenTime = value
	case FieldCloseTime:
		d.CloseTime = value
	default:
		return false
	}

	return true
}

// Get returns the current raw value of one named field.
func (d Draft) Get(name string) (string, bool) {
	switch name {
	case FieldName:
		return d.Name, true
	case FieldLocation:
		return d.Location, true
	case FieldDescription:
		return d.Description, true
	case FieldContact:
		return d.Contact, true
	case FieldPricePerHour:
		return d.PricePerHour, true
	case FieldOpenTime:
		return d.OpenTime, true
	case FieldCloseTime:
		return d.CloseTime, true
	default:
		return "", false
	}
}

// DigitsOnly strips every non-digit rune. Submit payloads carry contact
// numbers in this normalized form.
func DigitsOnly(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
