package render

import (
	"io/fs"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sofra/internal/cache"
	"sofra/internal/model"
	"sofra/web"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("fs.Sub: %v", err)
	}
	r, err := New(Config{TemplatesFS: templatesFS, IsDev: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestParseEmbeddedTemplates(t *testing.T) {
	r := newTestRenderer(t)

	// Every template the handlers render must parse out of the binary.
	want := []string{
		"auth/login",
		"admin/dashboard",
		"admin/languages_list", "admin/languages_form",
		"admin/menu_types_list", "admin/menu_types_form",
		"admin/categories_list", "admin/categories_form",
		"admin/items_list", "admin/items_form",
		"admin/orders_list",
		"admin/ratings_list",
		"admin/events_list",
	}
	for _, name := range want {
		if _, ok := r.templates[name]; !ok {
			t.Errorf("template %q not parsed", name)
		}
	}
}

func TestRenderLogin(t *testing.T) {
	r := newTestRenderer(t)

	req := httptest.NewRequest("GET", "/login", nil)
	rec := httptest.NewRecorder()

	err := r.Render(rec, req, "auth/login", TemplateData{Title: "Sign in"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Sign in") {
		t.Error("output missing the page title")
	}
	if !strings.Contains(body, `name="email"`) {
		t.Error("output missing the email field")
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRenderDashboard(t *testing.T) {
	r := newTestRenderer(t)

	req := httptest.NewRequest("GET", "/admin", nil)
	rec := httptest.NewRecorder()

	data := struct {
		MenuTypes    int64
		Categories   int64
		Items        int64
		Orders       int64
		Ratings      int64
		Languages    int64
		CacheStats   cache.Stats
		RecentEvents []model.Event
	}{
		MenuTypes:  2,
		Items:      14,
		CacheStats: cache.Stats{Hits: 10, Misses: 3},
		RecentEvents: []model.Event{
			{Level: "info", Category: "menu", Message: "menu type created", CreatedAt: time.Now()},
		},
	}

	err := r.Render(rec, req, "admin/dashboard", TemplateData{
		Title: "Dashboard",
		User:  &model.User{Name: "Admin", Role: model.RoleAdmin},
		Data:  data,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "menu type created") {
		t.Error("output missing the recent event")
	}
	if !strings.Contains(body, "14") {
		t.Error("output missing the item count")
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := newTestRenderer(t)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	if err := r.Render(rec, req, "admin/nope", TemplateData{}); err == nil {
		t.Error("expected an error for an unknown template")
	}
}
