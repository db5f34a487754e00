package registry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := New("", 0)
		if c.BaseURL() != DefaultBaseURL {
			t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), DefaultBaseURL)
		}
		if c.client.Timeout != DefaultTimeout {
			t.Errorf("Timeout = %v, want %v", c.client.Timeout, DefaultTimeout)
		}
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		c := New("https://mirror.example.com/", 5*time.Second)
		if c.BaseURL() != "https://mirror.example.com" {
			t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), "https://mirror.example.com")
		}
	})
}

func TestDistTags(t *testing.T) {
	t.Run("decodes tags", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/-/package/pkg/dist-tags" {
				t.Errorf("path = %q, want %q", r.URL.Path, "/-/package/pkg/dist-tags")
			}
			fmt.Fprint(w, `{"latest": "2.0.0", "beta": "2.1.0-beta.3"}`)
		}))
		defer srv.Close()

		c := New(srv.URL, time.Second)
		tags, err := c.DistTags(context.Background(), "pkg")
		if err != nil {
			t.Fatalf("DistTags() error = %v", err)
		}
		if tags["latest"] != "2.0.0" {
			t.Errorf("tags[latest] = %q, want %q", tags["latest"], "2.0.0")
		}
		if tags["beta"] != "2.1.0-beta.3" {
			t.Errorf("tags[beta] = %q, want %q", tags["beta"], "2.1.0-beta.3")
		}
	})

	t.Run("scoped package escapes the slash", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.EscapedPath()
			fmt.Fprint(w, `{"latest": "1.0.0"}`)
		}))
		defer srv.Close()

		c := New(srv.URL, time.Second)
		if _, err := c.DistTags(context.Background(), "@scope/pkg"); err != nil {
			t.Fatalf("DistTags() error = %v", err)
		}

		want := "/-/package/@scope%2Fpkg/dist-tags"
		if gotPath != want {
			t.Errorf("request path = %q, want %q", gotPath, want)
		}
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		}))
		defer srv.Close()

		c := New(srv.URL, time.Second)
		if _, err := c.DistTags(context.Background(), "pkg"); err == nil {
			t.Fatal("DistTags() error = nil, want error for 404")
		}
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `not json`)
		}))
		defer srv.Close()

		c := New(srv.URL, time.Second)
		if _, err := c.DistTags(context.Background(), "pkg"); err == nil {
			t.Fatal("DistTags() error = nil, want decode error")
		}
	})

	t.Run("unreachable registry is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		c := New(srv.URL, time.Second)
		if _, err := c.DistTags(context.Background(), "pkg"); err == nil {
			t.Fatal("DistTags() error = nil, want transport error")
		}
	})

	t.Run("context expiry aborts the request", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
			fmt.Fprint(w, `{}`)
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		c := New(srv.URL, time.Second)
		if _, err := c.DistTags(ctx, "pkg"); err == nil {
			t.Fatal("DistTags() error = nil, want context deadline error")
		}
	})
}

func TestTagsForChannel(t *testing.T) {
	tests := []struct {
		name    string
		tags    Tags
		channel string
		want    string
		wantOK  bool
	}{
		{
			name:    "channel present",
			tags:    Tags{"latest": "2.0.0", "beta": "2.1.0-beta.3"},
			channel: "beta",
			want:    "2.1.0-beta.3",
			wantOK:  true,
		},
		{
			name:    "absent channel falls back to latest",
			tags:    Tags{"latest": "2.0.0"},
			channel: "canary",
			want:    "2.0.0",
			wantOK:  true,
		},
		{
			name:    "empty tag value falls back to latest",
			tags:    Tags{"latest": "2.0.0", "beta": ""},
			channel: "beta",
			want:    "2.0.0",
			wantOK:  true,
		},
		{
			name:    "no channel and no latest",
			tags:    Tags{"beta": "2.1.0-beta.3"},
			channel: "canary",
			want:    "",
			wantOK:  false,
		},
		{
			name:    "empty tags",
			tags:    Tags{},
			channel: "latest",
			want:    "",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.tags.ForChannel(tt.channel)
			if ok != tt.wantOK {
				t.Fatalf("ForChannel(%q) ok = %v, want %v", tt.channel, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ForChannel(%q) = %q, want %q", tt.channel, got, tt.want)
			}
		})
	}
}

func TestSearchURL(t *testing.T) {
	got := SearchURL("opencode plugin")
	want := "https://www.npmjs.com/search?q=opencode+plugin"
	if got != want {
		t.Errorf("SearchURL() = %q, want %q", got, want)
	}
}
