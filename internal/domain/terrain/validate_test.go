package terrain

import (
	"strings"
	"testing"
)

func TestRequired(t *testing.T) {
	if msg := Required("Terrain A", "Name"); msg != "" {
		t.Fatalf("expected non-empty value to pass, got %q", msg)
	}
	for _, value := range []string{"", "   ", "\t\n"} {
		msg := Required(value, "Name")
		if msg == "" {
			t.Fatalf("expected whitespace value %q to fail", value)
		}
		if !strings.Contains(msg, "Name") {
			t.Fatalf("expected message to carry the label, got %q", msg)
		}
	}
}

func TestPhone(t *testing.T) {
	cases := []struct {
		value string
		valid bool
	}{
		{"0707070707", true},
		{"07 07 07 07 07", true},
		{"+2250707070707", false},
		{"(07) 07-07-07-07", true},
		{"12345", false},
		{"", false},
		{"abcdefghij", false},
	}

	for _, tc := range cases {
		msg := Phone(tc.value)
		if tc.valid && msg != "" {
			t.Fatalf("expected %q to pass, got %q", tc.value, msg)
		}
		if !tc.valid && msg == "" {
			t.Fatalf("expected %q to fail", tc.value)
		}
	}
}

func TestPhone_MessageNamesDigitCount(t *testing.T) {
	msg := Phone("12345")
	if !strings.Contains(msg, "10 digits") {
		t.Fatalf("expected the ten-digit rule in the message, got %q", msg)
	}
}

func TestPrice(t *testing.T) {
	cases := []struct {
		value string
		valid bool
	}{
		{"15000", true},
		{"15000.50", true},
		{" 2500 ", true},
		{"0", false},
		{"-10", false},
		{"abc", false},
		{"", false},
	}

	for _, tc := range cases {
		msg := Price(tc.value)
		if tc.valid && msg != "" {
			t.Fatalf("expected %q to pass, got %q", tc.value, msg)
		}
		if !tc.valid && msg == "" {
			t.Fatalf("expected %q to fail", tc.value)
		}
	}
}

func TestImagesNonEmpty(t *testing.T) {
	if msg := ImagesNonEmpty(nil); msg == "" {
		t.Fatal("expected empty image list to fail")
	}
	if msg := ImagesNonEmpty([]string{"data:image/png;base64,xxx"}); msg != "" {
		t.Fatalf("expected one image to pass, got %q", msg)
	}
}

func TestClockTime(t *testing.T) {
	if msg := ClockTime("", "Opening time"); msg != "" {
		t.Fatalf("expected empty value to pass (defaults apply), got %q", msg)
	}
	if msg := ClockTime("08:30", "Opening time"); msg != "" {
		t.Fatalf("expected 08:30 to pass, got %q", msg)
	}
	for _, value := range []string{"8h30", "25:00", "08:61", "morning"} {
		if msg := ClockTime(value, "Opening time"); msg == "" {
			t.Fatalf("expected %q to fail", value)
		}
	}
}

func TestValidateDraft_KeysSubsetOfFields(t *testing.T) {
	errs := ValidateDraft(Draft{})
	if len(errs) == 0 {
		t.Fatal("expected an empty draft to collect errors")
	}
	for key := range errs {
		if !KnownField(key) && key != FieldImages {
			t.Fatalf("error key %q is not a draft field", key)
		}
	}
}

func TestValidateDraft_ValidDraft(t *testing.T) {
	draft := Draft{
		Name:         "Terrain A",
		Location:     "Abidjan",
		Contact:      "0707070707",
		PricePerHour: "15000",
		OpenTime:     "08:00",
		CloseTime:    "22:00",
		Images:       []string{"data:image/png;base64,xxx"},
	}

	if errs := ValidateDraft(draft); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidatorsAreIdempotent(t *testing.T) {
	for i := 0; i < 3; i++ {
		if Phone("0707070707") != "" || Price("100") != "" || Required("x", "X") != "" {
			t.Fatal("validator output changed across calls")
		}
	}
}

func TestDigitsOnly(t *testing.T) {
	if got := DigitsOnly("07 07-07.07(07)"); got != "0707070707" {
		t.Fatalf("unexpected digits: %q", got)
	}
	if got := DigitsOnly("no digits"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
