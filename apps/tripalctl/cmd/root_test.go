package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	sdkerrors "github.com/quatton/qtripal/pkg/qsdk/qerr"
)

type fakeSite struct {
	mu    sync.Mutex
	added []json.RawMessage
	auth  []string
}

func (s *fakeSite) router() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, _ := r.BasicAuth()
			s.mu.Lock()
			s.auth = append(s.auth, user+":"+pass)
			s.mu.Unlock()
			next.ServeHTTP(w, r)
		})
	})
	r.Route("/tripal_api", func(r chi.Router) {
		r.Post("/chado/list", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[
				{"biomaterial_id": "1", "name": "leaf", "taxon_id": "5"},
				{"biomaterial_id": "2", "name": "root", "taxon_id": "6"}
			]`))
		})
		r.Post("/job/add", func(w http.ResponseWriter, r *http.Request) {
			var body json.RawMessage
			json.NewDecoder(r.Body).Decode(&body)
			s.mu.Lock()
			s.added = append(s.added, body)
			s.mu.Unlock()
			w.Write([]byte(`{"job_id": "9"}`))
		})
	})
	return r
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TRIPAL_USER", "admin")
	t.Setenv("TRIPAL_PASSWORD", "secret")
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBiomaterialList(t *testing.T) {
	site := &fakeSite{}
	srv := httptest.NewServer(site.router())
	defer srv.Close()

	out, err := execute(t, "--base-url", srv.URL, "-q", "biomaterial", "list", "--organism-id", "5")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(items) != 1 || items[0]["name"] != "leaf" {
		t.Errorf("unexpected items %v", items)
	}
	if len(site.auth) != 1 || site.auth[0] != "admin:secret" {
		t.Errorf("expected basic auth admin:secret, got %v", site.auth)
	}
}

func TestExpressionAddNoWait(t *testing.T) {
	site := &fakeSite{}
	srv := httptest.NewServer(site.router())
	defer srv.Close()

	out, err := execute(t, "--base-url", srv.URL, "-q", "expression", "add",
		"--organism-id", "5", "--analysis-id", "8", "--file-path", "/data/expr.tsv", "--no-wait")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	var res struct {
		Submission map[string]any `json:"submission"`
		Job        map[string]any `json:"job"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if res.Submission["job_id"] != "9" || res.Job != nil {
		t.Errorf("unexpected result %s", out)
	}

	if len(site.added) != 1 {
		t.Fatalf("expected one job/add call, got %d", len(site.added))
	}
	var body struct {
		Job      string `json:"job"`
		Callback string `json:"callback"`
		Args     []any  `json:"arguments"`
	}
	json.Unmarshal(site.added[0], &body)
	if body.Job != "Add Expression" || body.Callback != "tripal_expression_loader" || len(body.Args) != 13 {
		t.Errorf("unexpected job body %s", site.added[0])
	}
}

func TestBiomaterialSyncUnsupportedOnTripal3(t *testing.T) {
	site := &fakeSite{}
	srv := httptest.NewServer(site.router())
	defer srv.Close()

	_, err := execute(t, "--base-url", srv.URL, "-q", "--tripal-version", "3", "biomaterial", "sync")
	if !sdkerrors.IsCode(err, sdkerrors.CodeUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}
	if len(site.added) != 0 {
		t.Errorf("expected no job submitted")
	}
}
