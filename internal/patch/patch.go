// Package patch performs surgical textual edits on JSON/JSONC documents.
//
// All operations work on raw bytes and splice new content into the original
// text, so comments, key order, and whitespace of everything the edit did
// not target survive byte-for-byte. Nothing here parses the document; the
// only structural awareness is locating one named array by bracket counting
// on a masked copy of the text in which string literals and comments are
// blanked out.
package patch

import (
	"bytes"

	"github.com/thoreinstein/plugup/internal/errors"
	"github.com/thoreinstein/plugup/internal/jsonc"
)

// Sentinel errors for patch operations. Each means the document was returned
// unmodified.
var (
	// ErrArrayNotFound indicates the named array does not exist in the document.
	ErrArrayNotFound = errors.New("array not found")

	// ErrEntryNotFound indicates the array exists but does not contain the entry.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrObjectNotFound indicates the document has no top-level object to edit.
	ErrObjectNotFound = errors.New("object not found")
)

// LocateArray finds the byte range of the named array literal in doc.
// It scans for the key as a standalone string followed by a colon and an
// opening bracket, then counts bracket depth to the matching close. The
// returned start is the index of '[' and end the index of its matching ']',
// both into the original doc. ok is false when no such array exists.
func LocateArray(doc []byte, key string) (start, end int, ok bool) {
	return locateArray(doc, jsonc.Mask(doc), key)
}

func locateArray(doc, masked []byte, key string) (start, end int, ok bool) {
	quoted := []byte(`"` + key + `"`)

	from := 0
	for {
		rel := bytes.Index(doc[from:], quoted)
		if rel < 0 {
			return 0, 0, false
		}
		pos := from + rel
		from = pos + 1

		if !isStringLiteral(masked, pos, len(quoted)) {
			continue
		}

		i := skipSpace(masked, pos+len(quoted))
		if i >= len(masked) || masked[i] != ':' {
			continue
		}
		i = skipSpace(masked, i+1)
		if i >= len(masked) || masked[i] != '[' {
			continue
		}

		depth := 1
		for j := i + 1; j < len(masked); j++ {
			switch masked[j] {
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					return i, j, true
				}
			}
		}

		// Unterminated array; keep looking for a later occurrence.
	}
}

// isStringLiteral reports whether the quoted occurrence at pos is a complete
// string literal of its own: the mask keeps both quotes and spaces out the
// text between them. An occurrence inside a longer string or a comment, or
// straddling a close quote and an open quote, fails the shape check.
func isStringLiteral(masked []byte, pos, n int) bool {
	if masked[pos] != '"' || masked[pos+n-1] != '"' {
		return false
	}
	for i := pos + 1; i < pos+n-1; i++ {
		if masked[i] != ' ' {
			return false
		}
	}
	return true
}

// ReplaceEntry replaces one quoted string element of the named array with a
// new value, preserving every other byte of the document.
//
// The old entry is matched wrapped in double or single quotes, whichever
// appears first inside the array's byte range, and the replacement keeps the
// quote style it was found with. A missing array or missing entry returns
// the document unmodified with ErrArrayNotFound or ErrEntryNotFound; the
// patcher never invents an entry. Replacing an entry with itself returns
// changed=false and the input bytes untouched.
func ReplaceEntry(doc []byte, key, oldEntry, newEntry string) (patched []byte, changed bool, err error) {
	masked := jsonc.Mask(doc)
	start, end, ok := locateArray(doc, masked, key)
	if !ok {
		return doc, false, errors.Wrapf(ErrArrayNotFound, "key %q", key)
	}

	body := doc[start : end+1]
	idx, quote := findQuoted(body, masked[start:end+1], oldEntry)
	if idx < 0 {
		return doc, false, errors.Wrapf(ErrEntryNotFound, "entry %q", oldEntry)
	}

	if newEntry == oldEntry {
		return doc, false, nil
	}

	patchedBody := make([]byte, 0, len(body)+len(newEntry)-len(oldEntry))
	patchedBody = append(patchedBody, body[:idx]...)
	patchedBody = append(patchedBody, quote)
	patchedBody = append(patchedBody, newEntry...)
	patchedBody = append(patchedBody, quote)
	patchedBody = append(patchedBody, body[idx+len(oldEntry)+2:]...)

	out := splice(doc, start, end+1, patchedBody)
	return out, !bytes.Equal(out, doc), nil
}

// InsertEntry appends a double-quoted element to the named array, preserving
// the rest of the document. If the entry is already present (either quote
// style) the document is returned unmodified with changed=false.
func InsertEntry(doc []byte, key, entry string) (patched []byte, changed bool, err error) {
	masked := jsonc.Mask(doc)
	start, end, ok := locateArray(doc, masked, key)
	if !ok {
		return doc, false, errors.Wrapf(ErrArrayNotFound, "key %q", key)
	}

	body := doc[start : end+1]
	if idx, _ := findQuoted(body, masked[start:end+1], entry); idx >= 0 {
		return doc, false, nil
	}

	last := lastNonSpace(masked, start+1, end)

	var insert []byte
	var at int
	switch {
	case last < 0:
		// Empty array.
		insert = []byte(`"` + entry + `"`)
		at = end
	case masked[last] == ',':
		// Existing trailing comma carries the new element.
		insert = []byte(` "` + entry + `"`)
		at = last + 1
	default:
		insert = []byte(`, "` + entry + `"`)
		at = last + 1
	}

	return splice(doc, at, at, insert), true, nil
}

// RemoveEntry deletes one quoted element from the named array along with one
// adjacent comma: the one after the element when present, otherwise the one
// before it. Trailing whitespace up to the next element goes with a removed
// trailing comma; comments are never deleted.
func RemoveEntry(doc []byte, key, entry string) (patched []byte, changed bool, err error) {
	masked := jsonc.Mask(doc)
	start, end, ok := locateArray(doc, masked, key)
	if !ok {
		return doc, false, errors.Wrapf(ErrArrayNotFound, "key %q", key)
	}

	body := doc[start : end+1]
	idx, _ := findQuoted(body, masked[start:end+1], entry)
	if idx < 0 {
		return doc, false, errors.Wrapf(ErrEntryNotFound, "entry %q", entry)
	}

	// Element span within doc, quotes included.
	s := start + idx
	e := s + len(entry) + 2

	if j := skipSpace(masked, e); j < end && masked[j] == ',' {
		// Consume real whitespace after the comma, stopping at comments.
		cut := skipSpace(doc, j+1)
		return splice(doc, s, cut, nil), true, nil
	}

	if k := lastNonSpace(masked, start+1, s); k >= 0 && masked[k] == ',' {
		return splice(doc, k, e, nil), true, nil
	}

	// Sole element.
	return splice(doc, s, e, nil), true, nil
}

// InsertArray adds a new `"key": [entries...]` member at the top of the
// document's root object. Used when a config file exists but has no such
// array yet; the member is formatted on its own line and everything else is
// preserved.
func InsertArray(doc []byte, key string, entries []string) (patched []byte, err error) {
	masked := jsonc.Mask(doc)

	open := bytes.IndexByte(masked, '{')
	if open < 0 {
		return doc, errors.Wrap(ErrObjectNotFound, "no root object")
	}

	var member bytes.Buffer
	member.WriteString(`"` + key + `": [`)
	for i, entry := range entries {
		if i > 0 {
			member.WriteString(", ")
		}
		member.WriteString(`"` + entry + `"`)
	}
	member.WriteString(`]`)

	next := skipSpace(masked, open+1)
	if next < len(masked) && masked[next] == '}' {
		// No members follow, so no separating comma.
		insert := []byte("\n  " + member.String() + "\n")
		if skipSpace(doc, open+1) == next {
			// The gap is pure whitespace; replace it for tidy output.
			return splice(doc, open+1, next, insert), nil
		}
		// The gap holds comments, which stay put.
		return splice(doc, open+1, open+1, insert), nil
	}

	insert := []byte("\n  " + member.String() + ",")
	return splice(doc, open+1, open+1, insert), nil
}

// findQuoted returns the offset of the first occurrence of entry wrapped in
// double or single quotes that is an element in its own right, not text
// inside some other string or a comment. The offset points at the opening
// quote; -1 means absent. The second return is the quote byte found.
func findQuoted(body, masked []byte, entry string) (int, byte) {
	dq := findLiteral(body, `"`+entry+`"`, func(pos, n int) bool {
		return isStringLiteral(masked, pos, n)
	})
	sq := findLiteral(body, `'`+entry+`'`, func(pos, n int) bool {
		// Single-quoted text is not masked, so it is an element exactly
		// when the mask did not blank its opening quote.
		return masked[pos] == '\''
	})

	switch {
	case dq < 0 && sq < 0:
		return -1, 0
	case sq < 0 || (dq >= 0 && dq < sq):
		return dq, '"'
	default:
		return sq, '\''
	}
}

// findLiteral returns the offset of the first occurrence of quoted in body
// that satisfies the element check, or -1.
func findLiteral(body []byte, quoted string, element func(pos, n int) bool) int {
	needle := []byte(quoted)
	from := 0
	for {
		rel := bytes.Index(body[from:], needle)
		if rel < 0 {
			return -1
		}
		pos := from + rel
		from = pos + 1

		if element(pos, len(needle)) {
			return pos
		}
	}
}

// splice returns doc with the byte range [from, to) replaced by insert.
func splice(doc []byte, from, to int, insert []byte) []byte {
	out := make([]byte, 0, len(doc)-(to-from)+len(insert))
	out = append(out, doc[:from]...)
	out = append(out, insert...)
	out = append(out, doc[to:]...)
	return out
}

func skipSpace(data []byte, i int) int {
	for i < len(data) && (data[i] == ' ' || data[i] == '\t' || data[i] == '\r' || data[i] == '\n') {
		i++
	}
	return i
}

// lastNonSpace returns the index of the last non-whitespace byte in
// data[from:to), or -1 if the range is all whitespace.
func lastNonSpace(data []byte, from, to int) int {
	for i := to - 1; i >= from; i-- {
		switch data[i] {
		case ' ', '\t', '\r', '\n':
		default:
			return i
		}
	}
	return -1
}
