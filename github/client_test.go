package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adasatorres/check-migration-addons/config"
)

func newTestClient(t *testing.T, handler http.Handler, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), token, &config.GitHubConfig{
		APIURL:         srv.URL,
		TimeoutSeconds: 5,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

var testRepo = Repository{Owner: "acme", Name: "shop"}

func TestPathExists(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		want       bool
		wantErr    bool
		wantStatus int
	}{
		{"found", http.StatusOK, true, false, 0},
		{"not found", http.StatusNotFound, false, false, 0},
		{"unauthorized", http.StatusUnauthorized, false, true, http.StatusUnauthorized},
		{"server error", http.StatusInternalServerError, false, true, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRef, gotPath string
			mux := http.NewServeMux()
			mux.HandleFunc("/repos/acme/shop/contents/", func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotRef = r.URL.Query().Get("ref")
				w.WriteHeader(tt.status)
				if tt.status == http.StatusOK {
					fmt.Fprint(w, `[{"type":"file","name":"__init__.py","path":"sale_module/__init__.py"}]`)
					return
				}
				fmt.Fprint(w, `{"message":"boom"}`)
			})
			c := newTestClient(t, mux, "")

			got, err := c.PathExists(context.Background(), testRepo, "sale_module", "main")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("PathExists = %v, want %v", got, tt.want)
			}
			if gotPath != "/repos/acme/shop/contents/sale_module" {
				t.Errorf("path = %q", gotPath)
			}
			if gotRef != "main" {
				t.Errorf("ref = %q, want %q", gotRef, "main")
			}
			if tt.wantErr {
				var se *StatusError
				if !errors.As(err, &se) {
					t.Fatalf("err = %T, want *StatusError", err)
				}
				if se.StatusCode != tt.wantStatus {
					t.Errorf("StatusCode = %d, want %d", se.StatusCode, tt.wantStatus)
				}
			}
		})
	}
}

func TestNewClient_Headers(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		wantAuth string
	}{
		{"with token", "s3cret", "Bearer s3cret"},
		{"anonymous", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var auth, accept string
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				auth = r.Header.Get("Authorization")
				accept = r.Header.Get("Accept")
				w.WriteHeader(http.StatusNotFound)
			}), tt.token)

			if _, err := c.PathExists(context.Background(), testRepo, "x", "main"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if auth != tt.wantAuth {
				t.Errorf("Authorization = %q, want %q", auth, tt.wantAuth)
			}
			if accept != "application/vnd.github.v3+json" {
				t.Errorf("Accept = %q", accept)
			}
		})
	}
}

func TestListOpenPullRequests(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/shop/pulls", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != "open" || q.Get("per_page") != "20" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		switch q.Get("page") {
		case "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/acme/shop/pulls?page=2&per_page=20&state=open>; rel="next"`, srvURL))
			fmt.Fprint(w, `[{"number":1,"title":"[main][FIX] x","html_url":"https://github.com/acme/shop/pull/1"}]`)
		case "2":
			fmt.Fprint(w, `[{"number":2,"title":"[main][MIG] y","html_url":"https://github.com/acme/shop/pull/2"}]`)
		default:
			t.Errorf("unexpected page %q", q.Get("page"))
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	c, err := NewClient(context.Background(), "", &config.GitHubConfig{APIURL: srv.URL, TimeoutSeconds: 5})
	if err != nil {
		t.Fatal(err)
	}

	pulls, next, err := c.ListOpenPullRequests(context.Background(), testRepo, 1, 20)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if next != 2 {
		t.Errorf("next = %d, want 2", next)
	}
	if len(pulls) != 1 || pulls[0].Number != 1 || pulls[0].HTMLURL != "https://github.com/acme/shop/pull/1" {
		t.Errorf("pulls = %+v", pulls)
	}

	pulls, next, err = c.ListOpenPullRequests(context.Background(), testRepo, 2, 20)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if next != 0 {
		t.Errorf("next = %d, want 0", next)
	}
	if len(pulls) != 1 || pulls[0].Title != "[main][MIG] y" {
		t.Errorf("pulls = %+v", pulls)
	}
}

func TestListOpenPullRequests_Error(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}), "")

	_, _, err := c.ListOpenPullRequests(context.Background(), testRepo, 1, 20)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
		t.Fatalf("err = %v, want StatusError 502", err)
	}
}
