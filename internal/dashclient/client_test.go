package dashclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/five82/dashterm/internal/dash"
)

func TestParseBaseURL_Normalizes(t *testing.T) {
	u, err := parseBaseURL("127.0.0.1:8050")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "127.0.0.1:8050" {
		t.Fatalf("url = %q, want http://127.0.0.1:8050", u.String())
	}

	u, err = parseBaseURL("http://example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("  "); err == nil {
		t.Fatalf("parseBaseURL accepted an empty url")
	}
}

func TestClient_RoundTripsEndpoints(t *testing.T) {
	t.Parallel()

	var gotUpdate dash.UpdateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case dash.PathHealth:
			_, _ = w.Write([]byte("OK"))
		case dash.PathLayout:
			_ = json.NewEncoder(w).Encode(dash.Div(dash.H1("Hi"), dash.Graph("g")))
		case dash.PathDependencies:
			_ = json.NewEncoder(w).Encode([]dash.Dependency{{
				Outputs: []dash.Output{{ID: "g", Property: "figure"}},
				Inputs:  []dash.Input{{ID: "d", Property: "value"}},
			}})
		case dash.PathUpdate:
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			_ = json.NewDecoder(r.Body).Decode(&gotUpdate)
			_ = json.NewEncoder(w).Encode(dash.UpdateResponse{Response: map[string]map[string]any{
				"g": {"figure": map[string]any{"title": "T", "x": []string{"a"}, "y": []float64{1}}},
			}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	if err := c.Health(ctx); err != nil {
		t.Fatalf("Health returned error: %v", err)
	}

	layout, err := c.FetchLayout(ctx)
	if err != nil {
		t.Fatalf("FetchLayout returned error: %v", err)
	}
	if len(layout.Children) != 2 || layout.Children[0].Text != "Hi" {
		t.Fatalf("layout = %+v", layout)
	}

	deps, err := c.FetchDependencies(ctx)
	if err != nil {
		t.Fatalf("FetchDependencies returned error: %v", err)
	}
	if len(deps) != 1 || deps[0].Key() != "g.figure" {
		t.Fatalf("deps = %+v", deps)
	}

	resp, err := c.Update(ctx, dash.UpdateRequest{
		Output: "g.figure",
		Inputs: []dash.InputValue{{ID: "d", Property: "value", Value: "x"}},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if gotUpdate.Output != "g.figure" || len(gotUpdate.Inputs) != 1 || gotUpdate.Inputs[0].Value != "x" {
		t.Fatalf("server saw %+v", gotUpdate)
	}
	fig, ok := dash.DecodeFigure(resp.Values()["g.figure"])
	if !ok || fig.Title != "T" {
		t.Fatalf("figure = %+v, %v", fig, ok)
	}
}

func TestClient_StatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	err = c.Health(context.Background())

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Health error = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusServiceUnavailable || statusErr.Body != "not ready" {
		t.Fatalf("StatusError = %+v", statusErr)
	}
}
