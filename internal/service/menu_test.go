package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sofra/internal/cache"
	"sofra/internal/imaging"
	"sofra/internal/model"
	"sofra/internal/store"
	"sofra/internal/testutil"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{0, "Free"},
		{0.5, "IQD 0.50"},
		{12, "IQD 12.00"},
		{12.345, "IQD 12.35"},
		{999999.99, "IQD 999999.99"},
		{-1, "Price not available"},
		{1000000, "Price not available"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.price); got != tt.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", tt.price, got, tt.want)
		}
	}
}

func TestBuildMenu(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	testutil.SeedLanguage(t, db, "en", "English", true)
	testutil.SeedLanguage(t, db, "ar", "Arabic", false)

	ctx := context.Background()

	mt, _, err := store.CreateMenuTypeTx(ctx, db, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Dinner"},
	})
	require.NoError(t, err)
	cat, _, err := store.CreateCategoryTx(ctx, db, mt.ID, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Kebab"},
		{LanguageCode: "ar", Name: "كباب"},
	})
	require.NoError(t, err)
	_, _, err = store.CreateMenuItemTx(ctx, db, store.MenuItemTxParams{
		CategoryID: cat.ID,
		Price:      12,
		Translations: []model.TranslationInput{
			{LanguageCode: "en", Name: "Lamb kebab"},
		},
	})
	require.NoError(t, err)
	_, _, err = store.CreateMenuItemTx(ctx, db, store.MenuItemTxParams{
		CategoryID: cat.ID,
		Price:      0,
		Image:      "gone.webp",
		Translations: []model.TranslationInput{
			{LanguageCode: "en", Name: "Tap water"},
		},
	})
	require.NoError(t, err)

	uploadDir := t.TempDir()
	svc := NewMenuService(db, imaging.NewProcessor(uploadDir), nil)

	resp, err := svc.BuildMenu(ctx, MenuRequest{Language: "ar", Requested: "ar", RTL: true})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "ar", resp.Language.Current)
	assert.True(t, resp.Language.RTL)
	assert.Len(t, resp.Language.Available, 2)
	assert.Equal(t, []string{"كباب"}, resp.Categories)
	assert.Equal(t, int64(1), resp.Stats.MenuTypes)
	assert.Equal(t, int64(2), resp.Stats.Items)
	assert.Equal(t, int64(1), resp.Stats.MissingImages)

	require.Len(t, resp.Data, 2)
	byName := make(map[string]MenuEntry, len(resp.Data))
	for _, e := range resp.Data {
		byName[e.Name] = e
	}

	lamb := byName["Lamb kebab"] // falls back to English
	assert.Equal(t, "IQD 12.00", lamb.Price)
	assert.Equal(t, "كباب", lamb.Category)
	assert.Nil(t, lamb.Image)
	assert.False(t, lamb.ImageMissing)

	water := byName["Tap water"]
	assert.Equal(t, "Free", water.Price)
	require.NotNil(t, water.Image)
	assert.Equal(t, "gone.webp", *water.Image)
	assert.True(t, water.ImageMissing, "missing file should flag, not drop, the item")
}

func TestBuildMenuCaching(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	testutil.SeedLanguage(t, db, "en", "English", true)

	ctx := context.Background()
	mt, _, err := store.CreateMenuTypeTx(ctx, db, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Dinner"},
	})
	require.NoError(t, err)
	cat, _, err := store.CreateCategoryTx(ctx, db, mt.ID, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Soup"},
	})
	require.NoError(t, err)

	manager := cache.NewManager(ctx, cache.Options{MaxSize: 100})
	defer manager.Close()
	svc := NewMenuService(db, imaging.NewProcessor(t.TempDir()), manager)

	first, err := svc.BuildMenu(ctx, MenuRequest{Language: "en", Requested: "en"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.Stats.Items)

	// New item lands after the response was cached.
	_, _, err = store.CreateMenuItemTx(ctx, db, store.MenuItemTxParams{
		CategoryID: cat.ID,
		Price:      4,
		Translations: []model.TranslationInput{
			{LanguageCode: "en", Name: "Lentil soup"},
		},
	})
	require.NoError(t, err)

	stale, err := svc.BuildMenu(ctx, MenuRequest{Language: "en", Requested: "en"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), stale.Stats.Items, "cached response should be served")

	// The requested code is patched per request even on cache hits.
	patched, err := svc.BuildMenu(ctx, MenuRequest{Language: "en", Requested: "ku"})
	require.NoError(t, err)
	assert.Equal(t, "ku", patched.Language.Requested)
	assert.Equal(t, "en", patched.Language.Current)

	svc.Invalidate(ctx)
	fresh, err := svc.BuildMenu(ctx, MenuRequest{Language: "en", Requested: "en"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh.Stats.Items)
}

func TestCleanupMissingImages(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	testutil.SeedLanguage(t, db, "en", "English", true)

	ctx := context.Background()
	mt, _, err := store.CreateMenuTypeTx(ctx, db, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Dinner"},
	})
	require.NoError(t, err)
	cat, _, err := store.CreateCategoryTx(ctx, db, mt.ID, 1, []model.TranslationInput{
		{LanguageCode: "en", Name: "Grill"},
	})
	require.NoError(t, err)

	kept, _, err := store.CreateMenuItemTx(ctx, db, store.MenuItemTxParams{
		CategoryID: cat.ID,
		Price:      10,
		Image:      "present.webp",
		Translations: []model.TranslationInput{
			{LanguageCode: "en", Name: "Kept"},
		},
	})
	require.NoError(t, err)
	healedItem, _, err := store.CreateMenuItemTx(ctx, db, store.MenuItemTxParams{
		CategoryID: cat.ID,
		Price:      10,
		Image:      "gone.webp",
		Translations: []model.TranslationInput{
			{LanguageCode: "en", Name: "Healed"},
		},
	})
	require.NoError(t, err)

	uploadDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(uploadDir, "present.webp"), []byte("img"), 0644))

	svc := NewMenuService(db, imaging.NewProcessor(uploadDir), nil)

	healed, err := svc.CleanupMissingImages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, healed)

	queries := store.New(db)
	item, err := queries.GetMenuItem(ctx, healedItem.ID)
	require.NoError(t, err)
	assert.Empty(t, item.Image)

	item, err = queries.GetMenuItem(ctx, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, "present.webp", item.Image)

	// Idempotent: a second pass has nothing left to heal.
	healed, err = svc.CleanupMissingImages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, healed)
}
