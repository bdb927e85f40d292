package qrtable

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alnah/go-qrtable/internal/fetch"
)

func newTestTitleResolver() *TitleResolver {
	return NewTitleResolver(fetch.New(fetch.Config{}), nil)
}

func TestTitleResolver_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"simple", 200, "<html><head><title>Go Docs</title></head></html>", "Go Docs"},
		{"attributes and case", 200, `<TITLE lang="en">Mixed</TITLE>`, "Mixed"},
		{"multiline collapsed", 200, "<title>\n  A\n\t  B  \n</title>", "A B"},
		{"entities", 200, "<title>Tom &amp; Jerry&nbsp;&lt;3&gt; &#39;x&apos; &quot;y&quot;</title>", `Tom & Jerry <3> 'x' "y"`},
		{"sequential decoding", 200, "<title>a &amp;lt; b</title>", "a < b"},
		{"first title wins", 200, "<title>One</title><title>Two</title>", "One"},
		{"no title", 200, "<html><body>nothing</body></html>", ""},
		{"blank title", 200, "<title>   </title>", ""},
		{"nbsp only title", 200, "<title>&nbsp;</title>", ""},
		{"not found", 404, "<title>Missing</title>", ""},
		{"server error", 500, "<title>Oops</title>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			if got := newTestTitleResolver().Resolve(context.Background(), srv.URL); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitleResolver_FollowsRedirect(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<title>Moved Here</title>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	if got := newTestTitleResolver().Resolve(context.Background(), srv.URL+"/old"); got != "Moved Here" {
		t.Errorf("Resolve() = %q, want %q", got, "Moved Here")
	}
}

func TestTitleResolver_UnreachableHost(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if got := newTestTitleResolver().Resolve(context.Background(), url); got != "" {
		t.Errorf("Resolve() = %q, want empty", got)
	}
}

func TestTitleResolver_TitleBeyondLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat(" ", maxTitleBody+10) + "<title>Late</title>"))
	}))
	defer srv.Close()

	if got := newTestTitleResolver().Resolve(context.Background(), srv.URL); got != "" {
		t.Errorf("Resolve() = %q, want empty", got)
	}
}

func TestCleanTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"  plain  ", "plain"},
		{"a\r\n\tb", "a b"},
		{"&amp;amp;", "&amp;"},
		{"x&nbsp;&nbsp;y", "x  y"},
		{"&copy; kept", "&copy; kept"},
	}
	for _, tt := range tests {
		if got := cleanTitle(tt.in); got != tt.want {
			t.Errorf("cleanTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
