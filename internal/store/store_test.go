package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"sofra/internal/model"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "sofra-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		db.Close()
		os.Remove(dbPath)
	}
}

// seedTestLanguages inserts the standard language set: en (default), ar, ku.
func seedTestLanguages(t *testing.T, db *sql.DB) {
	t.Helper()

	ctx := context.Background()
	q := New(db)
	now := time.Now()
	langs := []CreateLanguageParams{
		{Code: "en", Name: "English", NativeName: "English", IsDefault: true, IsActive: true, Direction: "ltr", Position: 1},
		{Code: "ar", Name: "Arabic", NativeName: "العربية", IsActive: true, Direction: "rtl", Position: 2},
		{Code: "ku", Name: "Kurdish", NativeName: "کوردی", IsActive: true, Direction: "rtl", Position: 3},
	}
	for _, l := range langs {
		l.CreatedAt = now
		l.UpdatedAt = now
		if _, err := q.CreateLanguage(ctx, l); err != nil {
			t.Fatalf("seeding language %s: %v", l.Code, err)
		}
	}
}

func countRows(t *testing.T, db *sql.DB, table string) int64 {
	t.Helper()
	var n int64
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return n
}

func TestCreateLanguage(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	lang, err := q.CreateLanguage(ctx, CreateLanguageParams{
		Code:       "en",
		Name:       "English",
		NativeName: "English",
		IsDefault:  true,
		IsActive:   true,
		Direction:  "ltr",
		Position:   1,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateLanguage: %v", err)
	}
	if lang.ID == 0 {
		t.Error("lang.ID should not be 0")
	}
	if lang.Code != "en" {
		t.Errorf("Code = %q, want %q", lang.Code, "en")
	}
	if !lang.IsDefault {
		t.Error("IsDefault should be true")
	}

	def, err := q.GetDefaultLanguage(ctx)
	if err != nil {
		t.Fatalf("GetDefaultLanguage: %v", err)
	}
	if def.ID != lang.ID {
		t.Errorf("default ID = %d, want %d", def.ID, lang.ID)
	}
}

func TestSetDefaultLanguage(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	seedTestLanguages(t, db)

	ctx := context.Background()
	q := New(db)

	ar, err := q.GetLanguageByCode(ctx, "ar")
	if err != nil {
		t.Fatalf("GetLanguageByCode: %v", err)
	}

	moved, err := SetDefaultLanguageTx(ctx, db, ar.ID)
	if err != nil {
		t.Fatalf("SetDefaultLanguageTx: %v", err)
	}
	if moved.Code != "ar" {
		t.Errorf("moved code = %q, want %q", moved.Code, "ar")
	}

	def, err := q.GetDefaultLanguage(ctx)
	if err != nil {
		t.Fatalf("GetDefaultLanguage: %v", err)
	}
	if def.Code != "ar" {
		t.Errorf("default code = %q, want %q", def.Code, "ar")
	}

	// Exactly one default remains.
	var n int64
	if err := db.QueryRow("SELECT COUNT(*) FROM languages WHERE is_default = 1").Scan(&n); err != nil {
		t.Fatalf("counting defaults: %v", err)
	}
	if n != 1 {
		t.Errorf("default count = %d, want 1", n)
	}

	if _, err := SetDefaultLanguageTx(ctx, db, 99999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing language error = %v, want ErrNotFound", err)
	}
}

func TestDeleteLanguageTx(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	seedTestLanguages(t, db)

	ctx := context.Background()
	q := New(db)

	en, err := q.GetLanguageByCode(ctx, "en")
	if err != nil {
		t.Fatalf("GetLanguageByCode en: %v", err)
	}
	if _, err := DeleteLanguageTx(ctx, db, en.ID); !errors.Is(err, ErrDefaultLanguage) {
		t.Errorf("deleting default error = %v, want ErrDefaultLanguage", err)
	}

	// A language with translations is refused.
	_, _, err = CreateMenuTypeTx(ctx, db, 1, []model.TranslationInput{
		{LanguageCode: "ar", Name: "قائمة"},
	})
	if err != nil {
		t.Fatalf("CreateMenuTypeTx: %v", err)
	}
	ar, err := q.GetLanguageByCode(ctx, "ar")
	if err != nil {
		t.Fatalf("GetLanguageByCode ar: %v", err)
	}
	if _, err := DeleteLanguageTx(ctx, db, ar.ID); !errors.Is(err, ErrLanguageInUse) {
		t.Errorf("deleting referenced language error = %v, want ErrLanguageInUse", err)
	}
	if _, err := q.GetLanguageByCode(ctx, "ar"); err != nil {
		t.Errorf("ar should survive the refused delete: %v", err)
	}

	// An unused language deletes fine.
	ku, err := q.GetLanguageByCode(ctx, "ku")
	if err != nil {
		t.Fatalf("GetLanguageByCode ku: %v", err)
	}
	deleted, err := DeleteLanguageTx(ctx, db, ku.ID)
	if err != nil {
		t.Fatalf("DeleteLanguageTx ku: %v", err)
	}
	if deleted.Code != "ku" {
		t.Errorf("deleted code = %q, want %q", deleted.Code, "ku")
	}
	if _, err := q.GetLanguageByCode(ctx, "ku"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("ku lookup after delete = %v, want sql.ErrNoRows", err)
	}

	if _, err := DeleteLanguageTx(ctx, db, 99999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing language error = %v, want ErrNotFound", err)
	}
}

func TestUpsertTranslationIdempotent(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	seedTestLanguages(t, db)

	ctx := context.Background()
	q := New(db)

	mt, _, err := CreateMenuTypeTx(ctx, db, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Breakfast"},
	})
	if err != nil {
		t.Fatalf("CreateMenuTypeTx: %v", err)
	}

	// Writing the same (entity, language) pair again overwrites in place.
	err = q.UpsertTranslation(ctx, EntityMenuType, UpsertTranslationParams{
		EntityID:     mt.ID,
		LanguageCode: "en",
		Name:         "Morning menu",
		Description:  "Served until noon",
		Now:          time.Now(),
	})
	if err != nil {
		t.Fatalf("UpsertTranslation: %v", err)
	}

	n, err := q.CountTranslations(ctx, EntityMenuType, mt.ID)
	if err != nil {
		t.Fatalf("CountTranslations: %v", err)
	}
	if n != 1 {
		t.Errorf("translation count = %d, want 1", n)
	}

	trs, err := q.ListTranslations(ctx, EntityMenuType, mt.ID)
	if err != nil {
		t.Fatalf("ListTranslations: %v", err)
	}
	if trs[0].Name != "Morning menu" {
		t.Errorf("Name = %q, want %q", trs[0].Name, "Morning menu")
	}
	if trs[0].Description != "Served until noon" {
		t.Errorf("Description = %q, want %q", trs[0].Description, "Served until noon")
	}
}

func TestCreateMenuTypeTx_NoValidTranslationsRollsBack(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	seedTestLanguages(t, db)

	ctx := context.Background()

	before := countRows(t, db, "menu_types")

	// Empty name, unknown language, invalid code: nothing accepted.
	_, fieldErrs, err := CreateMenuTypeTx(ctx, db, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: ""},
		{LanguageCode: "xx", Name: "Mystery"},
		{LanguageCode: "!!", Name: "Bad code"},
	})
	if !errors.Is(err, ErrNoTranslations) {
		t.Fatalf("err = %v, want ErrNoTranslations", err)
	}
	if len(fieldErrs) != 3 {
		t.Errorf("fieldErrs has %d entries, want 3", len(fieldErrs))
	}

	// Nothing persisted: the entity row rolled back with the translations.
	if after := countRows(t, db, "menu_types"); after != before {
		t.Errorf("menu_types count = %d, want %d", after, before)
	}
	if n := countRows(t, db, "menu_type_translations"); n != 0 {
		t.Errorf("menu_type_translations count = %d, want 0", n)
	}
}

func TestCreateMenuTypeTx_SkipsInvalidKeepsValid(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	seedTestLanguages(t, db)

	ctx := context.Background()
	q := New(db)

	mt, fieldErrs, err := CreateMenuTypeTx(ctx, db, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Dinner"},
		{LanguageCode: "ar", Name: ""}, // invalid, skipped
	})
	if err != nil {
		t.Fatalf("CreateMenuTypeTx: %v", err)
	}
	if _, ok := fieldErrs["ar"]; !ok {
		t.Error("fieldErrs should report the ar row")
	}

	n, err := q.CountTranslations(ctx, EntityMenuType, mt.ID)
	if err != nil {
		t.Fatalf("CountTranslations: %v", err)
	}
	if n != 1 {
		t.Errorf("translation count = %d, want 1", n)
	}
}

func TestUpdateMenuTypeTx_NotFound(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	seedTestLanguages(t, db)

	_, err := UpdateMenuTypeTx(context.Background(), db, 9999, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Ghost"},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateMenuTypeTx_KeepsExistingTranslations(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	seedTestLanguages(t, db)

	ctx := context.Background()
	q := New(db)

	mt, _, err := CreateMenuTypeTx(ctx, db, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Lunch"},
	})
	if err != nil {
		t.Fatalf("CreateMenuTypeTx: %v", err)
	}

	// Reordering without touching translations must not trip the
	// at-least-one-translation check.
	if _, err := UpdateMenuTypeTx(ctx, db, mt.ID, 5, nil); err != nil {
		t.Fatalf("UpdateMenuTypeTx: %v", err)
	}

	got, err := q.GetMenuType(ctx, mt.ID)
	if err != nil {
		t.Fatalf("GetMenuType: %v", err)
	}
	if got.Position != 5 {
		t.Errorf("Position = %d, want 5", got.Position)
	}
}

func TestListLocalized_Fallback(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	seedTestLanguages(t, db)

	ctx := context.Background()
	q := New(db)

	_, _, err := CreateMenuTypeTx(ctx, db, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Drinks"},
		{LanguageCode: "ar", Name: "مشروبات"},
	})
	if err != nil {
		t.Fatalf("CreateMenuTypeTx: %v", err)
	}

	// Requested language present: serve it.
	rows, err := q.ListLocalized(ctx, EntityMenuType, "ar", "en")
	if err != nil {
		t.Fatalf("ListLocalized(ar): %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "مشروبات" {
		t.Errorf("ar rows = %+v, want the Arabic name", rows)
	}

	// Requested language missing: fall back to the default.
	rows, err = q.ListLocalized(ctx, EntityMenuType, "ku", "en")
	if err != nil {
		t.Fatalf("ListLocalized(ku): %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Drinks" {
		t.Errorf("ku rows = %+v, want the English fallback", rows)
	}

	// Neither language has a row: serve the placeholder, never drop the
	// entity.
	bare, err := q.CreateMenuType(ctx, 2, time.Now())
	if err != nil {
		t.Fatalf("CreateMenuType: %v", err)
	}
	rows, err = q.ListLocalized(ctx, EntityMenuType, "ku", "en")
	if err != nil {
		t.Fatalf("ListLocalized: %v", err)
	}
	found := false
	for _, r := range rows {
		if r.ID == bare.ID {
			found = true
			if r.Name != model.PlaceholderMenuType {
				t.Errorf("Name = %q, want placeholder %q", r.Name, model.PlaceholderMenuType)
			}
		}
	}
	if !found {
		t.Error("untranslated entity missing from the listing")
	}
}

func TestGetLocalized(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	seedTestLanguages(t, db)

	ctx := context.Background()
	q := New(db)

	mt, _, err := CreateMenuTypeTx(ctx, db, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Grill", Description: "From the charcoal grill"},
	})
	if err != nil {
		t.Fatalf("CreateMenuTypeTx: %v", err)
	}

	row, err := q.GetLocalized(ctx, EntityMenuType, mt.ID, "ar", "en")
	if err != nil {
		t.Fatalf("GetLocalized: %v", err)
	}
	if row.Name != "Grill" {
		t.Errorf("Name = %q, want %q", row.Name, "Grill")
	}
	if row.Description != "From the charcoal grill" {
		t.Errorf("Description = %q", row.Description)
	}

	_, err = q.GetLocalized(ctx, EntityMenuType, 9999, "ar", "en")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

// buildCatalog creates one menu type with two categories and three items,
// returning their ids. Items 1 and 2 live in category A, item 3 in B.
func buildCatalog(t *testing.T, db *sql.DB) (menuTypeID, catA, catB int64, items []int64) {
	t.Helper()

	ctx := context.Background()
	mt, _, err := CreateMenuTypeTx(ctx, db, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Main menu"},
	})
	if err != nil {
		t.Fatalf("CreateMenuTypeTx: %v", err)
	}

	a, _, err := CreateCategoryTx(ctx, db, mt.ID, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Kebab"},
		{LanguageCode: "ar", Name: "كباب"},
	})
	if err != nil {
		t.Fatalf("CreateCategoryTx(A): %v", err)
	}
	b, _, err := CreateCategoryTx(ctx, db, mt.ID, 2, []model.TranslationInput{
		{LanguageCode: "en", Name: "Soup"},
	})
	if err != nil {
		t.Fatalf("CreateCategoryTx(B): %v", err)
	}

	specs := []struct {
		cat   int64
		name  string
		price float64
		image string
	}{
		{a.ID, "Lamb kebab", 12.5, "lamb.webp"},
		{a.ID, "Chicken kebab", 10, ""},
		{b.ID, "Lentil soup", 4, "lentil.webp"},
	}
	for _, s := range specs {
		item, _, err := CreateMenuItemTx(ctx, db, MenuItemTxParams{
			CategoryID: s.cat,
			Price:      s.price,
			Image:      s.image,
			Translations: []model.TranslationInput{
				{LanguageCode: "en", Name: s.name},
			},
		})
		if err != nil {
			t.Fatalf("CreateMenuItemTx(%s): %v", s.name, err)
		}
		items = append(items, item.ID)
	}
	return mt.ID, a.ID, b.ID, items
}

func TestListMenuItemsLocalized_Filters(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	seedTestLanguages(t, db)
	mtID, _, _, _ := buildCatalog(t, db)

	ctx := context.Background()
	q := New(db)

	all, err := q.ListMenuItemsLocalized(ctx, "en", "en", ItemFilter{})
	if err != nil {
		t.Fatalf("ListMenuItemsLocalized: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("unfiltered count = %d, want 3", len(all))
	}

	byType, err := q.ListMenuItemsLocalized(ctx, "en", "en", ItemFilter{MenuTypeID: mtID})
	if err != nil {
		t.Fatalf("ListMenuItemsLocalized(type): %v", err)
	}
	if len(byType) != 3 {
		t.Errorf("menu type filter count = %d, want 3", len(byType))
	}

	// Category filter matches the resolved name in the requested language.
	kebab, err := q.ListMenuItemsLocalized(ctx, "ar", "en", ItemFilter{CategoryName: "كباب"})
	if err != nil {
		t.Fatalf("ListMenuItemsLocalized(category ar): %v", err)
	}
	if len(kebab) != 2 {
		t.Errorf("ar category filter count = %d, want 2", len(kebab))
	}
	for _, it := range kebab {
		if it.CategoryName != "كباب" {
			t.Errorf("CategoryName = %q, want the Arabic name", it.CategoryName)
		}
		// Item names fall back to English.
		if it.Name == "" || it.Name == model.PlaceholderItem {
			t.Errorf("Name = %q, want the English fallback", it.Name)
		}
	}

	// A name that resolves in no language matches nothing.
	none, err := q.ListMenuItemsLocalized(ctx, "en", "en", ItemFilter{CategoryName: "Desserts"})
	if err != nil {
		t.Fatalf("ListMenuItemsLocalized(none): %v", err)
	}
	if len(none) != 0 {
		t.Errorf("unknown category count = %d, want 0", len(none))
	}
}

func TestDeleteMenuTypeTx_CascadeLeavesNoOrphans(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	seedTestLanguages(t, db)
	mtID, _, _, _ := buildCatalog(t, db)

	res, err := DeleteMenuTypeTx(context.Background(), db, mtID)
	if err != nil {
		t.Fatalf("DeleteMenuTypeTx: %v", err)
	}

	if res.Categories != 2 {
		t.Errorf("Categories = %d, want 2", res.Categories)
	}
	if res.Items != 3 {
		t.Errorf("Items = %d, want 3", res.Items)
	}
	// 1 menu type + 3 category + 3 item translation rows.
	if res.Translations != 7 {
		t.Errorf("Translations = %d, want 7", res.Translations)
	}
	if len(res.Images) != 2 {
		t.Errorf("Images = %v, want 2 filenames", res.Images)
	}
	if len(res.Names) == 0 {
		t.Error("Names should carry the deleted menu type's translations")
	}

	for _, table := range []string{
		"menu_types", "menu_type_translations",
		"categories", "category_translations",
		"menu_items", "menu_item_translations",
	} {
		if n := countRows(t, db, table); n != 0 {
			t.Errorf("%s count = %d, want 0", table, n)
		}
	}
}

func TestDeleteCategoryTx_OnlyItsOwnRows(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	seedTestLanguages(t, db)
	_, catA, _, _ := buildCatalog(t, db)

	res, err := DeleteCategoryTx(context.Background(), db, catA)
	if err != nil {
		t.Fatalf("DeleteCategoryTx: %v", err)
	}
	if res.Categories != 1 {
		t.Errorf("Categories = %d, want 1", res.Categories)
	}
	if res.Items != 2 {
		t.Errorf("Items = %d, want 2", res.Items)
	}
	if len(res.Images) != 1 {
		t.Errorf("Images = %v, want 1 filename", res.Images)
	}

	// The sibling category and its item survive.
	if n := countRows(t, db, "categories"); n != 1 {
		t.Errorf("categories count = %d, want 1", n)
	}
	if n := countRows(t, db, "menu_items"); n != 1 {
		t.Errorf("menu_items count = %d, want 1", n)
	}
}

func TestDeleteMenuItemTx(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	seedTestLanguages(t, db)
	_, _, _, items := buildCatalog(t, db)

	res, err := DeleteMenuItemTx(context.Background(), db, items[0])
	if err != nil {
		t.Fatalf("DeleteMenuItemTx: %v", err)
	}
	if res.Items != 1 {
		t.Errorf("Items = %d, want 1", res.Items)
	}
	if len(res.Images) != 1 || res.Images[0] != "lamb.webp" {
		t.Errorf("Images = %v, want [lamb.webp]", res.Images)
	}

	_, err = DeleteMenuItemTx(context.Background(), db, items[0])
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestCountLanguageUsage(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	seedTestLanguages(t, db)
	buildCatalog(t, db)

	ctx := context.Background()
	q := New(db)

	en, err := q.CountLanguageUsage(ctx, "en")
	if err != nil {
		t.Fatalf("CountLanguageUsage(en): %v", err)
	}
	// 1 menu type + 2 categories + 3 items.
	if en != 6 {
		t.Errorf("en usage = %d, want 6", en)
	}

	ku, err := q.CountLanguageUsage(ctx, "ku")
	if err != nil {
		t.Fatalf("CountLanguageUsage(ku): %v", err)
	}
	if ku != 0 {
		t.Errorf("ku usage = %d, want 0", ku)
	}
}

func TestClearMenuItemImage(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	seedTestLanguages(t, db)
	_, _, _, items := buildCatalog(t, db)

	ctx := context.Background()
	q := New(db)

	withImages, err := q.ListMenuItemImages(ctx)
	if err != nil {
		t.Fatalf("ListMenuItemImages: %v", err)
	}
	if len(withImages) != 2 {
		t.Fatalf("items with images = %d, want 2", len(withImages))
	}

	if err := q.ClearMenuItemImage(ctx, items[0], time.Now()); err != nil {
		t.Fatalf("ClearMenuItemImage: %v", err)
	}

	item, err := q.GetMenuItem(ctx, items[0])
	if err != nil {
		t.Fatalf("GetMenuItem: %v", err)
	}
	if item.Image != "" {
		t.Errorf("Image = %q, want empty", item.Image)
	}
}
