package tagsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPPageFetcher_Fetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			gotUA = r.UserAgent()
			w.Write([]byte("<html>tags</html>"))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPPageFetcher("iqdbtag-test")

	t.Run("returns body", func(t *testing.T) {
		body, err := f.Fetch(context.Background(), srv.URL+"/ok")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if string(body) != "<html>tags</html>" {
			t.Errorf("body = %q", body)
		}
		if gotUA != "iqdbtag-test" {
			t.Errorf("User-Agent = %q, want iqdbtag-test", gotUA)
		}
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		if _, err := f.Fetch(context.Background(), srv.URL+"/missing"); err == nil {
			t.Error("Fetch() expected error for 404")
		}
	})

	t.Run("respects context deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if _, err := f.Fetch(ctx, srv.URL+"/slow"); err == nil {
			t.Error("Fetch() expected timeout error")
		}
	})
}
