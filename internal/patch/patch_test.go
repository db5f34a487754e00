package patch

import (
	"bytes"
	"testing"

	"github.com/thoreinstein/plugup/internal/errors"
)

func TestLocateArray(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		key    string
		wantOK bool
		want   string // doc[start:end+1] when found
	}{
		{
			name:   "simple array",
			doc:    `{"plugin": ["a"]}`,
			key:    "plugin",
			wantOK: true,
			want:   `["a"]`,
		},
		{
			name:   "whitespace around colon",
			doc:    `{"plugin"  :  [ "a" ]}`,
			key:    "plugin",
			wantOK: true,
			want:   `[ "a" ]`,
		},
		{
			name: "array on its own lines",
			doc: `{
  "plugin": [
    "a"
  ]
}`,
			key:    "plugin",
			wantOK: true,
			want: `[
    "a"
  ]`,
		},
		{
			name:   "key missing",
			doc:    `{"other": ["a"]}`,
			key:    "plugin",
			wantOK: false,
		},
		{
			name:   "value is not an array",
			doc:    `{"plugin": "a"}`,
			key:    "plugin",
			wantOK: false,
		},
		{
			name:   "key text as array element is skipped",
			doc:    `{"tags": ["plugin"], "plugin": ["a"]}`,
			key:    "plugin",
			wantOK: true,
			want:   `["a"]`,
		},
		{
			name: "key text inside comment is skipped",
			doc: `{
  // "plugin": ["fake"]
  "plugin": ["real"]
}`,
			key:    "plugin",
			wantOK: true,
			want:   `["real"]`,
		},
		{
			name:   "bracket inside element string",
			doc:    `{"plugin": ["a[0]"]}`,
			key:    "plugin",
			wantOK: true,
			want:   `["a[0]"]`,
		},
		{
			name: "bracket inside comment",
			doc: `{
  "plugin": [ // ]
    "a"
  ]
}`,
			key:    "plugin",
			wantOK: true,
			want: `[ // ]
    "a"
  ]`,
		},
		{
			name:   "nested arrays",
			doc:    `{"plugin": [["a"], "b"]}`,
			key:    "plugin",
			wantOK: true,
			want:   `[["a"], "b"]`,
		},
		{
			name:   "unterminated array",
			doc:    `{"plugin": ["a"`,
			key:    "plugin",
			wantOK: false,
		},
		{
			name:   "empty document",
			doc:    ``,
			key:    "plugin",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := LocateArray([]byte(tt.doc), tt.key)
			if ok != tt.wantOK {
				t.Fatalf("LocateArray() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got := tt.doc[start : end+1]; got != tt.want {
				t.Errorf("LocateArray() span = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReplaceEntry(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		key         string
		oldEntry    string
		newEntry    string
		want        string
		wantChanged bool
		wantErr     error
	}{
		{
			name:        "replaces pinned entry",
			doc:         `{"plugin": ["pkg@1.0.0"]}`,
			key:         "plugin",
			oldEntry:    "pkg@1.0.0",
			newEntry:    "pkg@1.1.0",
			want:        `{"plugin": ["pkg@1.1.0"]}`,
			wantChanged: true,
		},
		{
			name: "preserves comments and formatting",
			doc: `{
  // plugins managed by hand
  "plugin": [
    "pkg@1.0.0"
  ],
  "theme": "dark"
}`,
			key:      "plugin",
			oldEntry: "pkg@1.0.0",
			newEntry: "pkg@1.1.0",
			want: `{
  // plugins managed by hand
  "plugin": [
    "pkg@1.1.0"
  ],
  "theme": "dark"
}`,
			wantChanged: true,
		},
		{
			name:        "preserves trailing comma",
			doc:         `{"plugin": ["pkg@1.0.0",],}`,
			key:         "plugin",
			oldEntry:    "pkg@1.0.0",
			newEntry:    "pkg@1.1.0",
			want:        `{"plugin": ["pkg@1.1.0",],}`,
			wantChanged: true,
		},
		{
			name:        "preserves single quote style",
			doc:         `{"plugin": ['pkg@1.0.0']}`,
			key:         "plugin",
			oldEntry:    "pkg@1.0.0",
			newEntry:    "pkg@1.1.0",
			want:        `{"plugin": ['pkg@1.1.0']}`,
			wantChanged: true,
		},
		{
			name:        "scoped package name",
			doc:         `{"plugin": ["@scope/pkg@1.0.0"]}`,
			key:         "plugin",
			oldEntry:    "@scope/pkg@1.0.0",
			newEntry:    "@scope/pkg@2.0.0",
			want:        `{"plugin": ["@scope/pkg@2.0.0"]}`,
			wantChanged: true,
		},
		{
			name:        "only first of duplicate entries replaced",
			doc:         `{"plugin": ["x@1.0.0", "x@1.0.0"]}`,
			key:         "plugin",
			oldEntry:    "x@1.0.0",
			newEntry:    "x@2.0.0",
			want:        `{"plugin": ["x@2.0.0", "x@1.0.0"]}`,
			wantChanged: true,
		},
		{
			name: "entry text inside comment is not patched",
			doc: `{
  "plugin": [
    // was "pkg@1.0.0"
    "pkg@1.0.0"
  ]
}`,
			key:      "plugin",
			oldEntry: "pkg@1.0.0",
			newEntry: "pkg@1.1.0",
			want: `{
  "plugin": [
    // was "pkg@1.0.0"
    "pkg@1.1.0"
  ]
}`,
			wantChanged: true,
		},
		{
			name:        "no-op when entry unchanged",
			doc:         `{"plugin": ["pkg@1.0.0"]}`,
			key:         "plugin",
			oldEntry:    "pkg@1.0.0",
			newEntry:    "pkg@1.0.0",
			want:        `{"plugin": ["pkg@1.0.0"]}`,
			wantChanged: false,
		},
		{
			name:     "array missing",
			doc:      `{"mcp": {}}`,
			key:      "plugin",
			oldEntry: "pkg@1.0.0",
			newEntry: "pkg@1.1.0",
			want:     `{"mcp": {}}`,
			wantErr:  ErrArrayNotFound,
		},
		{
			name:     "entry missing",
			doc:      `{"plugin": ["other@1.0.0"]}`,
			key:      "plugin",
			oldEntry: "pkg@1.0.0",
			newEntry: "pkg@1.1.0",
			want:     `{"plugin": ["other@1.0.0"]}`,
			wantErr:  ErrEntryNotFound,
		},
		{
			name:     "substring of an element does not match",
			doc:      `{"plugin": ["pkg@1.0.0-beta.1"]}`,
			key:      "plugin",
			oldEntry: "pkg@1.0.0",
			newEntry: "pkg@1.1.0",
			want:     `{"plugin": ["pkg@1.0.0-beta.1"]}`,
			wantErr:  ErrEntryNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed, err := ReplaceEntry([]byte(tt.doc), tt.key, tt.oldEntry, tt.newEntry)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReplaceEntry() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("ReplaceEntry() unexpected error: %v", err)
			}

			if changed != tt.wantChanged {
				t.Errorf("ReplaceEntry() changed = %v, want %v", changed, tt.wantChanged)
			}
			if string(got) != tt.want {
				t.Errorf("ReplaceEntry() = %q, want %q", got, tt.want)
			}
		})
	}
}

// A failed or no-op replace must hand back the exact input bytes, not a copy
// that happens to compare equal after reformatting.
func TestReplaceEntry_UnmodifiedOnError(t *testing.T) {
	doc := []byte(`{"plugin": ["a@1.0.0"], // holds [stuff]
}`)

	got, changed, err := ReplaceEntry(doc, "plugin", "missing@1.0.0", "missing@2.0.0")
	if !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("error = %v, want ErrEntryNotFound", err)
	}
	if changed {
		t.Error("changed = true on error, want false")
	}
	if !bytes.Equal(got, doc) {
		t.Errorf("document modified on error:\ngot  %q\nwant %q", got, doc)
	}
}

func TestInsertEntry(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		key         string
		entry       string
		want        string
		wantChanged bool
		wantErr     error
	}{
		{
			name:        "appends after existing entries",
			doc:         `{"plugin": ["a@1.0.0"]}`,
			key:         "plugin",
			entry:       "b@2.0.0",
			want:        `{"plugin": ["a@1.0.0", "b@2.0.0"]}`,
			wantChanged: true,
		},
		{
			name:        "fills empty array",
			doc:         `{"plugin": []}`,
			key:         "plugin",
			entry:       "a@1.0.0",
			want:        `{"plugin": ["a@1.0.0"]}`,
			wantChanged: true,
		},
		{
			name:        "reuses trailing comma",
			doc:         `{"plugin": ["a@1.0.0",]}`,
			key:         "plugin",
			entry:       "b@2.0.0",
			want:        `{"plugin": ["a@1.0.0", "b@2.0.0"]}`,
			wantChanged: true,
		},
		{
			name: "multiline array",
			doc: `{
  "plugin": [
    "a@1.0.0"
  ]
}`,
			key:   "plugin",
			entry: "b@2.0.0",
			want: `{
  "plugin": [
    "a@1.0.0", "b@2.0.0"
  ]
}`,
			wantChanged: true,
		},
		{
			name: "insert lands before trailing comment",
			doc: `{
  "plugin": [
    "a@1.0.0" // note
  ]
}`,
			key:   "plugin",
			entry: "b@2.0.0",
			want: `{
  "plugin": [
    "a@1.0.0", "b@2.0.0" // note
  ]
}`,
			wantChanged: true,
		},
		{
			name:        "already present",
			doc:         `{"plugin": ["a@1.0.0"]}`,
			key:         "plugin",
			entry:       "a@1.0.0",
			want:        `{"plugin": ["a@1.0.0"]}`,
			wantChanged: false,
		},
		{
			name:        "already present single quoted",
			doc:         `{"plugin": ['a@1.0.0']}`,
			key:         "plugin",
			entry:       "a@1.0.0",
			want:        `{"plugin": ['a@1.0.0']}`,
			wantChanged: false,
		},
		{
			name:    "array missing",
			doc:     `{}`,
			key:     "plugin",
			entry:   "a@1.0.0",
			want:    `{}`,
			wantErr: ErrArrayNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed, err := InsertEntry([]byte(tt.doc), tt.key, tt.entry)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("InsertEntry() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("InsertEntry() unexpected error: %v", err)
			}

			if changed != tt.wantChanged {
				t.Errorf("InsertEntry() changed = %v, want %v", changed, tt.wantChanged)
			}
			if string(got) != tt.want {
				t.Errorf("InsertEntry() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRemoveEntry(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		key         string
		entry       string
		want        string
		wantChanged bool
		wantErr     error
	}{
		{
			name:        "removes sole entry",
			doc:         `{"plugin": ["a@1.0.0"]}`,
			key:         "plugin",
			entry:       "a@1.0.0",
			want:        `{"plugin": []}`,
			wantChanged: true,
		},
		{
			name:        "removes sole entry with trailing comma",
			doc:         `{"plugin": ["a@1.0.0",]}`,
			key:         "plugin",
			entry:       "a@1.0.0",
			want:        `{"plugin": []}`,
			wantChanged: true,
		},
		{
			name:        "removes first of several",
			doc:         `{"plugin": ["a@1.0.0", "b@2.0.0"]}`,
			key:         "plugin",
			entry:       "a@1.0.0",
			want:        `{"plugin": ["b@2.0.0"]}`,
			wantChanged: true,
		},
		{
			name:        "removes middle of several",
			doc:         `{"plugin": ["a@1.0.0", "b@2.0.0", "c@3.0.0"]}`,
			key:         "plugin",
			entry:       "b@2.0.0",
			want:        `{"plugin": ["a@1.0.0", "c@3.0.0"]}`,
			wantChanged: true,
		},
		{
			name:        "removes last of several",
			doc:         `{"plugin": ["a@1.0.0", "b@2.0.0"]}`,
			key:         "plugin",
			entry:       "b@2.0.0",
			want:        `{"plugin": ["a@1.0.0"]}`,
			wantChanged: true,
		},
		{
			name: "multiline removal of last entry",
			doc: `{
  "plugin": [
    "a@1.0.0",
    "b@2.0.0"
  ]
}`,
			key:   "plugin",
			entry: "b@2.0.0",
			want: `{
  "plugin": [
    "a@1.0.0"
  ]
}`,
			wantChanged: true,
		},
		{
			name: "removal keeps comment on entry line",
			doc: `{
  "plugin": [
    "a@1.0.0", // note
    "b@2.0.0"
  ]
}`,
			key:   "plugin",
			entry: "a@1.0.0",
			want: `{
  "plugin": [
    // note
    "b@2.0.0"
  ]
}`,
			wantChanged: true,
		},
		{
			name: "sole entry removal keeps comment",
			doc: `{
  "plugin": [
    "a@1.0.0" // gone
  ]
}`,
			key:   "plugin",
			entry: "a@1.0.0",
			want: `{
  "plugin": [
     // gone
  ]
}`,
			wantChanged: true,
		},
		{
			name:    "entry missing",
			doc:     `{"plugin": ["a@1.0.0"]}`,
			key:     "plugin",
			entry:   "b@2.0.0",
			want:    `{"plugin": ["a@1.0.0"]}`,
			wantErr: ErrEntryNotFound,
		},
		{
			name:    "array missing",
			doc:     `{}`,
			key:     "plugin",
			entry:   "a@1.0.0",
			want:    `{}`,
			wantErr: ErrArrayNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed, err := RemoveEntry([]byte(tt.doc), tt.key, tt.entry)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("RemoveEntry() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("RemoveEntry() unexpected error: %v", err)
			}

			if changed != tt.wantChanged {
				t.Errorf("RemoveEntry() changed = %v, want %v", changed, tt.wantChanged)
			}
			if string(got) != tt.want {
				t.Errorf("RemoveEntry() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInsertArray(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		key     string
		entries []string
		want    string
		wantErr error
	}{
		{
			name:    "into empty object",
			doc:     `{}`,
			key:     "plugin",
			entries: []string{"a@1.0.0"},
			want: `{
  "plugin": ["a@1.0.0"]
}`,
		},
		{
			name: "into empty object with whitespace",
			doc: `{
}`,
			key:     "plugin",
			entries: []string{"a@1.0.0"},
			want: `{
  "plugin": ["a@1.0.0"]
}`,
		},
		{
			name: "into empty object with comment",
			doc: `{ // empty for now
}`,
			key:     "plugin",
			entries: []string{"a@1.0.0"},
			want: `{
  "plugin": ["a@1.0.0"]
 // empty for now
}`,
		},
		{
			name: "before existing members",
			doc: `{
  "theme": "dark"
}`,
			key:     "plugin",
			entries: []string{"a@1.0.0"},
			want: `{
  "plugin": ["a@1.0.0"],
  "theme": "dark"
}`,
		},
		{
			name:    "multiple entries",
			doc:     `{}`,
			key:     "plugin",
			entries: []string{"a@1.0.0", "b@2.0.0"},
			want: `{
  "plugin": ["a@1.0.0", "b@2.0.0"]
}`,
		},
		{
			name:    "no root object",
			doc:     `["a@1.0.0"]`,
			key:     "plugin",
			entries: []string{"a@1.0.0"},
			want:    `["a@1.0.0"]`,
			wantErr: ErrObjectNotFound,
		},
		{
			name:    "empty document",
			doc:     ``,
			key:     "plugin",
			entries: []string{"a@1.0.0"},
			want:    ``,
			wantErr: ErrObjectNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InsertArray([]byte(tt.doc), tt.key, tt.entries)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("InsertArray() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("InsertArray() unexpected error: %v", err)
			}

			if string(got) != tt.want {
				t.Errorf("InsertArray() = %q, want %q", got, tt.want)
			}
		})
	}
}
