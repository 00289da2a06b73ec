package openrouter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/mwiater/routerchat/internal/config"
)

const catalogue = `{"data":[
	{"id":"z/paid","name":"Paid","context_length":8192,"pricing":{"prompt":"0.000001","completion":"0.000002"}},
	{"id":"a/free","name":"Free A","context_length":4096,"pricing":{"prompt":"0","completion":"0"}},
	{"id":"m/numeric","name":"Numeric","pricing":{"prompt":0,"completion":0}},
	{"id":"h/half","name":"Half","pricing":{"prompt":"0","completion":"0.5"}}
]}`

func TestListModels(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(catalogue))
	}))
	t.Cleanup(srv.Close)

	got, err := newTestClient(t, srv).ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if gotPath != "/api/v1/models" {
		t.Errorf("path = %s, want /api/v1/models", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(got) != 4 {
		t.Fatalf("got %d models, want 4", len(got))
	}
	if got[0].ContextLength != 8192 || got[0].Pricing.Completion != 0.000002 {
		t.Errorf("first model decoded as %+v", got[0])
	}
}

func TestListModels_Non200(t *testing.T) {
	srv := httptest.NewServer(respond(http.StatusUnauthorized, "no key"))
	t.Cleanup(srv.Close)

	_, err := newTestClient(t, srv).ListModels(context.Background())
	if err == nil || !strings.Contains(err.Error(), "status=401") || !strings.Contains(err.Error(), "no key") {
		t.Fatalf("error = %v, want status and body", err)
	}
}

func TestFilterModels(t *testing.T) {
	all := []RemoteModel{
		{ID: "z/paid", Pricing: Pricing{Prompt: 0.1, Completion: 0.2}},
		{ID: "a/free"},
		{ID: "h/half", Pricing: Pricing{Completion: 0.5}},
	}
	ids := func(ms []RemoteModel) string {
		var s []string
		for _, m := range ms {
			s = append(s, m.ID)
		}
		return strings.Join(s, ",")
	}

	tests := []struct {
		filter string
		want   string
	}{
		{FilterFree, "a/free"},
		{FilterPaid, "h/half,z/paid"},
		{FilterAll, "a/free,h/half,z/paid"},
	}
	for _, tt := range tests {
		got, err := FilterModels(all, tt.filter)
		if err != nil {
			t.Fatalf("FilterModels(%q): %v", tt.filter, err)
		}
		if ids(got) != tt.want {
			t.Errorf("FilterModels(%q) = %s, want %s", tt.filter, ids(got), tt.want)
		}
	}

	if _, err := FilterModels(all, "cheap"); !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("unknown filter error = %v", err)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestListModels_ErrorBodyReadFailure(t *testing.T) {
	reset := errors.New("connection reset")
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Body:       io.NopCloser(iotest.ErrReader(reset)),
			Header:     make(http.Header),
			Request:    r,
		}, nil
	})}
	c, err := New(&config.Config{APIKey: "sk-test", BaseURL: "http://openrouter.test/api/v1"}, WithHTTPClient(hc))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.ListModels(context.Background())
	if !errors.Is(err, reset) {
		t.Fatalf("err = %v, want the body read error", err)
	}
	if !strings.Contains(err.Error(), "status=502") {
		t.Errorf("status missing from %q", err)
	}
}
