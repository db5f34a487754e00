package opencode

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/thoreinstein/plugup/internal/paths"
)

func TestSearchPaths(t *testing.T) {
	t.Run("project root first", func(t *testing.T) {
		got := SearchPaths("/proj")

		want := []string{
			filepath.Join("/proj", ".opencode", "opencode.json"),
			filepath.Join("/proj", ".opencode", "opencode.jsonc"),
			filepath.Join(paths.HostConfigDir(), "opencode.json"),
			filepath.Join(paths.HostConfigDir(), "opencode.jsonc"),
		}
		if runtime.GOOS != "windows" && len(got) != len(want) {
			t.Fatalf("SearchPaths() returned %d candidates, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("SearchPaths()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("empty project root skips project pair", func(t *testing.T) {
		got := SearchPaths("")

		if len(got) < 2 {
			t.Fatalf("SearchPaths() returned %d candidates, want at least 2", len(got))
		}
		if got[0] != filepath.Join(paths.HostConfigDir(), "opencode.json") {
			t.Errorf("SearchPaths()[0] = %q, want global config", got[0])
		}
		if got[1] != filepath.Join(paths.HostConfigDir(), "opencode.jsonc") {
			t.Errorf("SearchPaths()[1] = %q, want global jsonc sibling", got[1])
		}
	})
}

func TestDefaultGlobalPath(t *testing.T) {
	want := filepath.Join(paths.HostConfigDir(), "opencode.json")
	if got := DefaultGlobalPath(); got != want {
		t.Errorf("DefaultGlobalPath() = %q, want %q", got, want)
	}
}

func TestFirstMatch(t *testing.T) {
	t.Run("short-circuits on first hit", func(t *testing.T) {
		var visited []string
		got, ok := firstMatch([]string{"a", "b", "c"}, func(path string) (int, bool) {
			visited = append(visited, path)
			return 42, path == "b"
		})

		if !ok {
			t.Fatal("firstMatch() ok = false, want true")
		}
		if got != 42 {
			t.Errorf("firstMatch() = %d, want 42", got)
		}
		if len(visited) != 2 || visited[0] != "a" || visited[1] != "b" {
			t.Errorf("visited = %v, want [a b]", visited)
		}
	})

	t.Run("zero value when nothing matches", func(t *testing.T) {
		got, ok := firstMatch([]string{"a", "b"}, func(string) (string, bool) {
			return "", false
		})

		if ok {
			t.Fatal("firstMatch() ok = true, want false")
		}
		if got != "" {
			t.Errorf("firstMatch() = %q, want empty", got)
		}
	})

	t.Run("empty candidate list", func(t *testing.T) {
		if _, ok := firstMatch(nil, func(string) (int, bool) { return 0, true }); ok {
			t.Error("firstMatch(nil) ok = true, want false")
		}
	})
}

func TestFirstExisting(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "opencode.json")
	if err := os.WriteFile(present, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	absent := filepath.Join(dir, "missing.json")

	t.Run("returns first existing candidate", func(t *testing.T) {
		got, ok := FirstExisting([]string{absent, present})
		if !ok {
			t.Fatal("FirstExisting() ok = false, want true")
		}
		if got != present {
			t.Errorf("FirstExisting() = %q, want %q", got, present)
		}
	})

	t.Run("nothing exists", func(t *testing.T) {
		if _, ok := FirstExisting([]string{absent}); ok {
			t.Error("FirstExisting() ok = true, want false")
		}
	})
}
