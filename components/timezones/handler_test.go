package timezones

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-select2/pkg/render"
	"github.com/goliatone/go-select2/pkg/select2"
)

type queryResult struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type handlerResponse struct {
	Results []queryResult `json:"results"`
	More    bool          `json:"more"`
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) handlerResponse {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := strings.TrimSpace(rec.Header().Get("Content-Type")); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}
	var payload handlerResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}

func TestHandler_EmptyTermReturnsEmptyResults(t *testing.T) {
	h := Handler(WithZones([]string{"UTC"}), WithEmptySearchMode(EmptySearchNone))
	payload := decode(t, serve(t, h, http.MethodGet, "/api/timezones"))
	if payload.Results == nil || len(payload.Results) != 0 || payload.More {
		t.Fatalf("expected empty results, got %#v", payload)
	}
}

func TestHandler_SearchAndPaging(t *testing.T) {
	h := Handler(
		WithZones([]string{"America/Chicago", "America/New_York", "Europe/Paris", "UTC"}),
		WithPageSize(2),
	)

	payload := decode(t, serve(t, h, http.MethodGet, "/api/timezones?term=America&page=1"))
	want := handlerResponse{
		Results: []queryResult{
			{ID: "America/Chicago", Text: "America / Chicago"},
			{ID: "America/New_York", Text: "America / New York"},
		},
	}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_CustomQueryParams(t *testing.T) {
	h := Handler(
		WithZones([]string{"UTC", "Europe/Paris"}),
		WithTermParam("q"),
		WithPageParam("p"),
	)
	payload := decode(t, serve(t, h, http.MethodGet, "/api/timezones?q=utc&p=1"))
	if len(payload.Results) != 1 || payload.Results[0].ID != "UTC" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestHandler_GuardRejects(t *testing.T) {
	h := Handler(
		WithZones([]string{"UTC"}),
		WithGuard(func(r *http.Request) error {
			return select2.StatusError{Code: http.StatusUnauthorized}
		}),
	)
	if rec := serve(t, h, http.MethodGet, "/api/timezones?term=utc"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := Handler(WithZones([]string{"UTC"}))
	if rec := serve(t, h, http.MethodPost, "/api/timezones?term=utc"); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
}

func TestHandler_InvalidPage(t *testing.T) {
	h := Handler(WithZones([]string{"UTC"}))
	if rec := serve(t, h, http.MethodGet, "/api/timezones?term=utc&page=-1"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestComponent_FieldRoundTrip(t *testing.T) {
	component := New(WithZones([]string{"Europe/Paris", "UTC"}))
	model := select2.NewValueModel("UTC")
	field, err := component.Field("zones", "/admin", model, select2.WithMarkupID("zones"))
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	if settings := field.Settings(); settings.Ajax == nil || settings.Ajax.URL != "/admin/api/timezones" {
		t.Fatalf("expected ajax url, got %#v", settings.Ajax)
	}

	ctx := context.Background()
	if err := field.ConvertInput(ctx, select2.Values(url.Values{"zones": {"Europe/Paris,Nowhere"}})); err != nil {
		t.Fatalf("ConvertInput: %v", err)
	}
	field.UpdateModel()
	if diff := cmp.Diff([]string{"Europe/Paris"}, model.Read()); diff != "" {
		t.Fatalf("model mismatch (-want +got):\n%s", diff)
	}

	head := render.NewHead()
	if err := field.RenderInitializationScript(ctx, nil, head); err != nil {
		t.Fatalf("RenderInitializationScript: %v", err)
	}
	items := head.Items()
	if len(items) != 1 || !strings.Contains(items[0].Script(), `"text":"Europe / Paris"`) {
		t.Fatalf("unexpected init script: %#v", items)
	}
}
