package i18n

import "testing"

func TestInit(t *testing.T) {
	if err := Init(nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for _, lang := range SupportedLanguages {
		if len(Labels(lang)) == 0 {
			t.Errorf("expected %s labels to be loaded", lang)
		}
	}
}

func TestT(t *testing.T) {
	if err := Init(nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	tests := []struct {
		lang     string
		key      string
		expected string
	}{
		{"en", "menu", "Menu"},
		{"ar", "menu", "القائمة"},
		{"ku", "menu", "مێنیو"},
		{"en", "free", "Free"},
		{"ar", "free", "مجاني"},
		{"en", "price_not_available", "Price not available"},
		// Fallback to English for unknown language
		{"de", "menu", "Menu"},
		// Return key if not found
		{"en", "nonexistent.key", "nonexistent.key"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"_"+tt.key, func(t *testing.T) {
			if got := T(tt.lang, tt.key); got != tt.expected {
				t.Errorf("T(%q, %q) = %q, want %q", tt.lang, tt.key, got, tt.expected)
			}
		})
	}
}

func TestLabelsFillsGapsFromDefault(t *testing.T) {
	if err := Init(nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	en := Labels("en")
	ar := Labels("ar")
	if len(ar) < len(en) {
		t.Errorf("Arabic labels missing keys: got %d, want at least %d", len(ar), len(en))
	}
	if ar["menu"] != "القائمة" {
		t.Errorf("ar menu = %q, want القائمة", ar["menu"])
	}

	// Unknown language gets the default set.
	de := Labels("de")
	if de["menu"] != "Menu" {
		t.Errorf("de menu = %q, want Menu", de["menu"])
	}
}

func TestMatchLanguage(t *testing.T) {
	if err := Init(nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"ar", "ar"},
		{"ku", "ku"},
		{"en-US", "en"},
		{"ar-IQ", "ar"},
		{"de", "en"},
		{"invalid", "en"},
		{"ar-IQ, en;q=0.9", "ar"},
		{"de, ku;q=0.8", "ku"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := MatchLanguage(tt.input); got != tt.expected {
				t.Errorf("MatchLanguage(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsSupported(t *testing.T) {
	if err := Init(nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for _, lang := range []string{"en", "ar", "ku", "AR"} {
		if !IsSupported(lang) {
			t.Errorf("expected %s to be supported", lang)
		}
	}
	for _, lang := range []string{"", "de", "english"} {
		if IsSupported(lang) {
			t.Errorf("expected %s to be unsupported", lang)
		}
	}
}
