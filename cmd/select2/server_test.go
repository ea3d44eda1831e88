package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg config) *server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	srv, err := newServer(context.Background(), cfg, logger)
	require.NoError(t, err)
	return srv
}

func serve(t *testing.T, srv *server, req *http.Request) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return rec, doc
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestServerRendersFields(t *testing.T) {
	srv := newTestServer(t, config{})

	rec, doc := serve(t, srv, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	for _, name := range []string{"tags", "languages", "zones"} {
		require.Equal(t, 1, doc.Find(`input[name="`+name+`"]`).Length(), "input %s", name)
	}
	token := doc.Find(`input[name="_token"]`)
	require.Equal(t, 1, token.Length())
	value, _ := token.Attr("value")
	require.Equal(t, srv.token, value)

	zones := doc.Find("input#zones")
	placeholder, _ := zones.Attr("data-placeholder")
	require.Equal(t, "Search time zones", placeholder)

	script := doc.Find("head script").Last().Text()
	require.Contains(t, script, "jQuery(function(){")
	require.Contains(t, script, "$('#zones').select2(")
	require.Contains(t, script, `"url":"/api/timezones"`)
	require.NotContains(t, script, "select2('data'")
}

func TestServerRejectsBadToken(t *testing.T) {
	srv := newTestServer(t, config{})

	rec, _ := serve(t, srv, postForm(url.Values{"_token": {"nope"}, "tags": {"go"}}))
	require.Equal(t, http.StatusForbidden, rec.Code)

	_, doc := serve(t, srv, httptest.NewRequest(http.MethodGet, "/", nil))
	value, _ := doc.Find(`input[name="tags"]`).Attr("value")
	require.Empty(t, value)
}

func TestServerSubmissionUpdatesModels(t *testing.T) {
	srv := newTestServer(t, config{})

	rec, doc := serve(t, srv, postForm(url.Values{
		"_token":    {srv.token},
		"tags":      {"go,zig,cobol"},
		"languages": {"fr"},
		"zones":     {"Europe/Paris"},
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Saved.", doc.Find("p.notice").Text())

	// The redisplayed form keeps the raw submission.
	value, _ := doc.Find(`input[name="tags"]`).Attr("value")
	require.Equal(t, "go,zig,cobol", value)

	values := map[string]string{}
	for _, f := range srv.fields {
		values[f.Key()] = f.ModelValue()
	}
	require.Equal(t, "go,zig", values["tags"])
	require.Equal(t, "fr", values["languages"])
	require.Equal(t, "Europe/Paris", values["zones"])

	_, doc = serve(t, srv, httptest.NewRequest(http.MethodGet, "/", nil))
	value, _ = doc.Find(`input[name="tags"]`).Attr("value")
	require.Equal(t, "go,zig", value)
	script := doc.Find("head script").Last().Text()
	require.Contains(t, script, "select2('data'")
	require.Contains(t, script, `"text":"Europe / Paris"`)
}

func TestServerQueryEndpoints(t *testing.T) {
	srv := newTestServer(t, config{})

	tests := []struct {
		name   string
		target string
		wantID string
	}{
		{name: "definition", target: "/api/languages?term=fren", wantID: "fr"},
		{name: "timezones", target: "/api/timezones?term=paris", wantID: "Europe/Paris"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var payload struct {
				Results []struct {
					ID   string `json:"id"`
					Text string `json:"text"`
				} `json:"results"`
				More bool `json:"more"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			require.NotEmpty(t, payload.Results)
			require.Equal(t, tt.wantID, payload.Results[0].ID)
		})
	}
}

func TestServerBasePath(t *testing.T) {
	srv := newTestServer(t, config{BasePath: "/widgets"})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/widgets/api/timezones?term=tokyo", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Asia/Tokyo")

	_, doc := serve(t, srv, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Contains(t, doc.Find("head script").Last().Text(), `"url":"/widgets/api/timezones"`)
}

func TestServerOpenAPIRequiresSchema(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	_, err := newServer(context.Background(), config{OpenAPI: "testdata/enums.yaml"}, logger)
	require.Error(t, err)
	require.Contains(t, err.Error(), "--schema")
}

func TestServerOpenAPIEnumField(t *testing.T) {
	srv := newTestServer(t, config{OpenAPI: "testdata/enums.yaml", Schema: "Status"})

	_, doc := serve(t, srv, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, 1, doc.Find(`input[name="status"]`).Length())

	rec, _ := serve(t, srv, postForm(url.Values{"_token": {srv.token}, "status": {"active,archived"}}))
	require.Equal(t, http.StatusOK, rec.Code)
	for _, f := range srv.fields {
		if f.Key() == "status" {
			require.Equal(t, "active,archived", f.ModelValue())
		}
	}
}
