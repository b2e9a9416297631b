package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"sofra/internal/i18n"
	"sofra/internal/imaging"
	"sofra/internal/middleware"
	"sofra/internal/model"
	"sofra/internal/service"
	"sofra/internal/store"
	"sofra/internal/testutil"
)

// newMenuAPI builds the public menu endpoint against a seeded catalog,
// wrapped in the language middleware the way the router wires it.
func newMenuAPI(t *testing.T) (http.Handler, *sql.DB, func()) {
	t.Helper()

	if err := i18n.Init(slog.Default()); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}

	db, cleanup := testutil.TestDB(t)
	testutil.SeedLanguage(t, db, "en", "English", true)
	testutil.SeedLanguage(t, db, "ar", "Arabic", false)

	ctx := context.Background()
	mt, _, err := store.CreateMenuTypeTx(ctx, db, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Dinner"},
	})
	if err != nil {
		t.Fatalf("CreateMenuTypeTx: %v", err)
	}
	cat, _, err := store.CreateCategoryTx(ctx, db, mt.ID, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Kebab"},
		{LanguageCode: "ar", Name: "كباب"},
	})
	if err != nil {
		t.Fatalf("CreateCategoryTx: %v", err)
	}
	_, _, err = store.CreateMenuItemTx(ctx, db, store.MenuItemTxParams{
		CategoryID: cat.ID,
		Price:      12,
		Translations: []model.TranslationInput{
			{LanguageCode: "en", Name: "Lamb kebab"},
		},
	})
	if err != nil {
		t.Fatalf("CreateMenuItemTx: %v", err)
	}

	ms := service.NewMenuService(db, imaging.NewProcessor(t.TempDir()), nil)
	h := NewMenuAPIHandler(ms)
	wrapped := middleware.Language(db)(http.HandlerFunc(h.Get))
	return wrapped, db, cleanup
}

func getJSON(t *testing.T, h http.Handler, url string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v\n%s", err, rec.Body.String())
	}
	return rec.Code, body
}

func TestMenuAPIGet(t *testing.T) {
	h, _, cleanup := newMenuAPI(t)
	defer cleanup()

	code, body := getJSON(t, h, "/menu-api?lang=en")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["success"] != true {
		t.Error("success should be true")
	}

	lang := body["language"].(map[string]any)
	if lang["current"] != "en" {
		t.Errorf("language.current = %v, want en", lang["current"])
	}
	if avail := lang["available"].([]any); len(avail) != 2 {
		t.Errorf("available languages = %d, want 2", len(avail))
	}

	data := body["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("data length = %d, want 1", len(data))
	}
	item := data[0].(map[string]any)
	if item["name"] != "Lamb kebab" {
		t.Errorf("name = %v", item["name"])
	}
	if item["price"] != "IQD 12.00" {
		t.Errorf("price = %v, want formatted string", item["price"])
	}
	if item["image"] != nil {
		t.Errorf("image = %v, want null", item["image"])
	}

	stats := body["stats"].(map[string]any)
	if stats["items"] != float64(1) {
		t.Errorf("stats.items = %v, want 1", stats["items"])
	}
	if _, ok := body["ui_labels"].(map[string]any); !ok {
		t.Error("ui_labels should be an object")
	}
}

func TestMenuAPIGet_ArabicResolvesCategory(t *testing.T) {
	h, _, cleanup := newMenuAPI(t)
	defer cleanup()

	code, body := getJSON(t, h, "/menu-api?lang=ar")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	lang := body["language"].(map[string]any)
	if lang["current"] != "ar" {
		t.Errorf("language.current = %v, want ar", lang["current"])
	}
	if lang["rtl"] != true {
		t.Error("rtl should be true for Arabic")
	}

	cats := body["categories"].([]any)
	if len(cats) != 1 || cats[0] != "كباب" {
		t.Errorf("categories = %v, want the Arabic name", cats)
	}
	// Item translation missing in Arabic: English fallback.
	item := body["data"].([]any)[0].(map[string]any)
	if item["name"] != "Lamb kebab" {
		t.Errorf("name = %v, want the English fallback", item["name"])
	}
}

func TestMenuAPIGet_UnknownLanguageFallsBack(t *testing.T) {
	h, _, cleanup := newMenuAPI(t)
	defer cleanup()

	// Well-formed but not in the catalog: serve the default, report the
	// requested code.
	code, body := getJSON(t, h, "/menu-api?lang=ku")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	lang := body["language"].(map[string]any)
	if lang["current"] != "en" {
		t.Errorf("language.current = %v, want en", lang["current"])
	}
	if lang["requested"] != "ku" {
		t.Errorf("language.requested = %v, want ku", lang["requested"])
	}
}

func TestMenuAPIGet_BadParams(t *testing.T) {
	h, _, cleanup := newMenuAPI(t)
	defer cleanup()

	tests := []struct {
		url      string
		wantCode string
	}{
		{"/menu-api?lang=english", "bad_language"},
		{"/menu-api?lang=12!", "bad_language"},
		{"/menu-api?menu_type=abc", "bad_menu_type"},
		{"/menu-api?menu_type=0", "bad_menu_type"},
		{"/menu-api?menu_type=-5", "bad_menu_type"},
		{"/menu-api?category=" + strings.Repeat("a", model.MaxNameLen+1), "bad_category"},
	}
	for _, tt := range tests {
		code, body := getJSON(t, h, tt.url)
		if code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.url, code)
			continue
		}
		if body["success"] != false {
			t.Errorf("%s: success = %v, want false", tt.url, body["success"])
		}
		if body["error_code"] != tt.wantCode {
			t.Errorf("%s: error_code = %v, want %s", tt.url, body["error_code"], tt.wantCode)
		}
		if body["timestamp"] == nil {
			t.Errorf("%s: error payload missing timestamp", tt.url)
		}
	}
}

func TestMenuAPIGet_MenuTypeFilter(t *testing.T) {
	h, db, cleanup := newMenuAPI(t)
	defer cleanup()

	// A second, empty menu type narrows the listing to nothing.
	other, _, err := store.CreateMenuTypeTx(context.Background(), db, 2, []model.TranslationInput{
		{LanguageCode: "en", Name: "Breakfast"},
	})
	if err != nil {
		t.Fatalf("CreateMenuTypeTx: %v", err)
	}

	code, body := getJSON(t, h, "/menu-api?lang=en&menu_type="+strconv.FormatInt(other.ID, 10))
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if data := body["data"].([]any); len(data) != 0 {
		t.Errorf("data length = %d, want 0", len(data))
	}
	filters := body["filters"].(map[string]any)
	if filters["menu_type"] != float64(other.ID) {
		t.Errorf("filters.menu_type = %v, want %d", filters["menu_type"], other.ID)
	}
}
