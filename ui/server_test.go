package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dhamidi/checkshapes/shapes"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(shapes.NewCache())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func postJSON(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/rewrite", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestRewriteJSON(t *testing.T) {
	s := newTestServer(t)
	rec := postJSON(t, s, `{"specs": ["x: [n]"], "docstring": ":param x: foo"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp RewriteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if len(resp.Specs) != 1 || resp.Specs[0].Sphinx != "* **x** has shape [*n*]." {
		t.Errorf("specs = %+v", resp.Specs)
	}
	want := ":param x:\n    * **x** has shape [*n*].\n\n    foo"
	if resp.Docstring == nil || *resp.Docstring != want {
		t.Errorf("docstring = %v, want %q", resp.Docstring, want)
	}
}

func TestRewriteJSONReportsParseErrors(t *testing.T) {
	s := newTestServer(t)
	rec := postJSON(t, s, `{"specs": ["x: [n,"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp RewriteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil {
		t.Fatal("expected an error")
	}
	if resp.Error.Input != "x: [n," || resp.Error.Column != 7 || len(resp.Error.Expected) == 0 {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestRewriteJSONRejectsUnknownFormat(t *testing.T) {
	s := newTestServer(t)
	if rec := postJSON(t, s, `{"specs": [], "format": "numpy"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if rec := postJSON(t, s, `{`); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRewriteForm(t *testing.T) {
	s := newTestServer(t)
	form := url.Values{
		"specs":     {"x: [n]\r\n\r\nreturn: [n]"},
		"docstring": {"Doc.\r\n\r\n:returns: out"},
		"format":    {"sphinx"},
	}
	req := httptest.NewRequest(http.MethodPost, "/rewrite", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"<code>return: [n]</code>", "* **return** has shape [*n*]."} {
		if !strings.Contains(body, want) {
			t.Errorf("page does not contain %q:\n%s", want, body)
		}
	}
}

func TestIndex(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `<option value="sphinx" selected>`) {
		t.Errorf("status = %d, body:\n%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/elsewhere", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
