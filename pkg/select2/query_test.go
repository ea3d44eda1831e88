package select2

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-select2/pkg/choice"
)

type queryPayload struct {
	Results []choice.Option `json:"results"`
	More    bool            `json:"more"`
}

func fruitProvider(t *testing.T, fns ...choice.StaticOptionFn) *choice.StaticProvider[choice.Option] {
	t.Helper()
	fruits := []choice.Option{
		{ID: "apple", Text: "Apple"},
		{ID: "apricot", Text: "Apricot"},
		{ID: "banana", Text: "Banana"},
		{ID: "pineapple", Text: "Pineapple"},
	}
	provider, err := choice.NewStaticProvider(fruits, choice.OptionRenderer, fns...)
	if err != nil {
		t.Fatalf("NewStaticProvider: %v", err)
	}
	return provider
}

func serveQuery(t *testing.T, handler http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeQuery(t *testing.T, rec *httptest.ResponseRecorder) queryPayload {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload queryPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return payload
}

func TestQueryHandlerFiltersAndPages(t *testing.T) {
	handler := QueryHandler[choice.Option](fruitProvider(t, choice.WithPageSize(2)))

	first := decodeQuery(t, serveQuery(t, handler, http.MethodGet, "/q?term=ap"))
	want := queryPayload{
		Results: []choice.Option{{ID: "apple", Text: "Apple"}, {ID: "apricot", Text: "Apricot"}},
		More:    true,
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("first page mismatch (-want +got):\n%s", diff)
	}

	second := decodeQuery(t, serveQuery(t, handler, http.MethodGet, "/q?term=ap&page=2"))
	want = queryPayload{Results: []choice.Option{{ID: "pineapple", Text: "Pineapple"}}}
	if diff := cmp.Diff(want, second); diff != "" {
		t.Fatalf("second page mismatch (-want +got):\n%s", diff)
	}

	beyond := decodeQuery(t, serveQuery(t, handler, http.MethodGet, "/q?term=ap&page=9"))
	if len(beyond.Results) != 0 || beyond.More {
		t.Fatalf("expected empty final page, got %#v", beyond)
	}
}

func TestQueryHandlerCustomParams(t *testing.T) {
	handler := QueryHandler[choice.Option](fruitProvider(t), WithTermParam("q"), WithPageParam("p"))
	payload := decodeQuery(t, serveQuery(t, handler, http.MethodGet, "/q?q=ban&p=1"))
	if diff := cmp.Diff([]choice.Option{{ID: "banana", Text: "Banana"}}, payload.Results); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryHandlerStatusCodes(t *testing.T) {
	provider := fruitProvider(t)
	cases := []struct {
		name    string
		handler http.Handler
		method  string
		target  string
		want    int
	}{
		{"post rejected", QueryHandler[choice.Option](provider), http.MethodPost, "/q", http.StatusMethodNotAllowed},
		{"bad page", QueryHandler[choice.Option](provider), http.MethodGet, "/q?page=zero", http.StatusBadRequest},
		{"page below one", QueryHandler[choice.Option](provider), http.MethodGet, "/q?page=0", http.StatusBadRequest},
		{"no provider", QueryHandler[choice.Option](nil), http.MethodGet, "/q", http.StatusServiceUnavailable},
		{"guard default", QueryHandler[choice.Option](provider, WithGuard(func(*http.Request) error {
			return errors.New("nope")
		})), http.MethodGet, "/q", http.StatusForbidden},
		{"guard status", QueryHandler[choice.Option](provider, WithGuard(func(*http.Request) error {
			return fmt.Errorf("wrapped: %w", StatusError{Code: http.StatusUnauthorized})
		})), http.MethodGet, "/q", http.StatusUnauthorized},
		{"head ok", QueryHandler[choice.Option](provider), http.MethodHead, "/q", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serveQuery(t, tc.handler, tc.method, tc.target)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestQueryHandlerProviderFailure(t *testing.T) {
	provider := &recordingProvider{toJSON: errors.New("broken")}
	provider.result = []choice.Option{{ID: "1"}}
	rec := serveQuery(t, QueryHandler[choice.Option](provider), http.MethodGet, "/q?term=x")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestQueryHandlerEmptyResultsEncodeAsArray(t *testing.T) {
	handler := QueryHandler[choice.Option](fruitProvider(t))
	rec := serveQuery(t, handler, http.MethodGet, "/q?term=zzz")
	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"results": []any{}, "more": false}, raw); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}
