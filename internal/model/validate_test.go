package model

import (
	"math"
	"strings"
	"testing"
)

func TestNormalizeLanguageCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"EN", "en"},
		{"  ar ", "ar"},
		{"Ku", "ku"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeLanguageCode(tt.in); got != tt.want {
			t.Errorf("NormalizeLanguageCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidLanguageCode(t *testing.T) {
	valid := []string{"en", "ar", "ku", "ckb", "kmr"}
	for _, code := range valid {
		if !ValidLanguageCode(code) {
			t.Errorf("ValidLanguageCode(%q) = false, want true", code)
		}
	}

	invalid := []string{"", "e", "EN", "english", "en-us", "12", "a b"}
	for _, code := range invalid {
		if ValidLanguageCode(code) {
			t.Errorf("ValidLanguageCode(%q) = true, want false", code)
		}
	}
}

func TestValidEntityID(t *testing.T) {
	if ValidEntityID(0) || ValidEntityID(-1) || ValidEntityID(MaxEntityID+1) {
		t.Error("out-of-range ids should be invalid")
	}
	if !ValidEntityID(1) || !ValidEntityID(MaxEntityID) {
		t.Error("in-range ids should be valid")
	}
}

func TestValidPrice(t *testing.T) {
	valid := []float64{0, 0.01, 12.5, PriceMax}
	for _, p := range valid {
		if !ValidPrice(p) {
			t.Errorf("ValidPrice(%v) = false, want true", p)
		}
	}

	invalid := []float64{-0.01, PriceMax + 0.01, math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, p := range invalid {
		if ValidPrice(p) {
			t.Errorf("ValidPrice(%v) = true, want false", p)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain  ", "plain"},
		{"<b>bold</b> text", "bold text"},
		{"<script>alert(1)</script>safe", "safe"},
		{"كباب", "كباب"},
	}
	for _, tt := range tests {
		if got := SanitizeText(tt.in); got != tt.want {
			t.Errorf("SanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTranslationInputValidate(t *testing.T) {
	in := TranslationInput{LanguageCode: " EN ", Name: " <i>Kebab</i> ", Description: "Grilled"}
	errs := in.Validate()
	if len(errs) != 0 {
		t.Fatalf("errs = %v, want none", errs)
	}
	if in.LanguageCode != "en" {
		t.Errorf("LanguageCode = %q, want %q", in.LanguageCode, "en")
	}
	if in.Name != "Kebab" {
		t.Errorf("Name = %q, want %q", in.Name, "Kebab")
	}
}

func TestTranslationInputValidate_Errors(t *testing.T) {
	in := TranslationInput{LanguageCode: "XX!", Name: ""}
	errs := in.Validate()
	if _, ok := errs["language_code"]; !ok {
		t.Error("missing language_code error")
	}
	if _, ok := errs["name"]; !ok {
		t.Error("missing name error")
	}

	long := TranslationInput{
		LanguageCode: "en",
		Name:         strings.Repeat("a", MaxNameLen+1),
		Description:  strings.Repeat("b", MaxDescriptionLen+1),
	}
	errs = long.Validate()
	if _, ok := errs["name"]; !ok {
		t.Error("missing name length error")
	}
	if _, ok := errs["description"]; !ok {
		t.Error("missing description length error")
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{OrderStatusNew, OrderStatusConfirmed, OrderStatusDone, OrderStatusCancelled} {
		if !ValidOrderStatus(s) {
			t.Errorf("ValidOrderStatus(%q) = false, want true", s)
		}
	}
	if ValidOrderStatus("shipped") || ValidOrderStatus("") {
		t.Error("unknown statuses should be invalid")
	}
}
