// Package jsonc strips non-semantic JSONC syntax so strict JSON parsers can
// consume config files that carry comments and trailing commas.
//
// The scanner never fails: malformed input (unterminated strings, unclosed
// block comments) degrades gracefully instead of returning an error, because
// a config file we cannot clean is handled downstream as "failed to parse",
// not as a crash.
package jsonc

// scanState tracks what the current byte position is inside of.
type scanState int

const (
	statePlain scanState = iota
	stateInString
	stateInLineComment
	stateInBlockComment
)

// Strip removes // line comments, /* */ block comments, and trailing commas
// from data, leaving every double-quoted string literal byte-for-byte intact.
//
// The newline that terminates a line comment is preserved so line numbers
// survive for anything after it. A \r before that newline is inert. Block
// comments may span lines and are removed entirely. An unterminated string
// or block comment consumes to the end of input without error.
func Strip(data []byte) []byte {
	out := make([]byte, 0, len(data))
	state := statePlain

	for i := 0; i < len(data); i++ {
		c := data[i]

		switch state {
		case statePlain:
			switch {
			case c == '"':
				state = stateInString
				out = append(out, c)
			case c == '/' && i+1 < len(data) && data[i+1] == '/':
				state = stateInLineComment
				i++ // skip second '/'
			case c == '/' && i+1 < len(data) && data[i+1] == '*':
				state = stateInBlockComment
				i++ // skip '*'
			default:
				out = append(out, c)
			}

		case stateInString:
			out = append(out, c)
			if c == '"' && !isEscaped(data, i) {
				state = statePlain
			}

		case stateInLineComment:
			if c == '\n' {
				state = statePlain
				out = append(out, c)
			}

		case stateInBlockComment:
			if c == '*' && i+1 < len(data) && data[i+1] == '/' {
				state = statePlain
				i++ // skip '/'
			}
		}
	}

	return stripTrailingCommas(out)
}

// stripTrailingCommas removes commas that are followed only by whitespace
// before a closing } or ]. It re-detects strings independently of Strip so
// the pass is string-safe on its own.
func stripTrailingCommas(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString := false

	for i := 0; i < len(data); i++ {
		c := data[i]

		if c == '"' && !isEscaped(data, i) {
			inString = !inString
		}

		if !inString && c == ',' {
			// Look ahead past whitespace for a closing bracket.
			j := i + 1
			for j < len(data) && isSpace(data[j]) {
				j++
			}
			if j < len(data) && (data[j] == '}' || data[j] == ']') {
				continue // drop the comma
			}
		}

		out = append(out, c)
	}

	return out
}

// Mask returns a copy of data with every byte of string literal content and
// every byte of comment text replaced by a space. String quotes are kept and
// the copy has the same length as the input, so byte offsets into the result
// are valid offsets into the original.
//
// Masking runs the same state machine as Strip, so the two agree on what is
// a string and what is a comment: a quote inside a comment does not open a
// string, and a // inside a string does not open a comment. Structural scans
// (bracket counting, key matching) run on the masked copy, where brackets,
// commas, and key-like text hiding inside strings or comments cannot mislead
// them.
func Mask(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	state := statePlain

	for i := 0; i < len(data); i++ {
		c := data[i]

		switch state {
		case statePlain:
			switch {
			case c == '"':
				state = stateInString
			case c == '/' && i+1 < len(data) && data[i+1] == '/':
				state = stateInLineComment
				out[i], out[i+1] = ' ', ' '
				i++
			case c == '/' && i+1 < len(data) && data[i+1] == '*':
				state = stateInBlockComment
				out[i], out[i+1] = ' ', ' '
				i++
			}

		case stateInString:
			// Escape detection runs against the original bytes: once a
			// backslash has been masked to a space, the copy can no longer
			// tell \" from ".
			if c == '"' && !isEscaped(data, i) {
				state = statePlain
			} else {
				out[i] = ' '
			}

		case stateInLineComment:
			if c == '\n' {
				state = statePlain
			} else {
				out[i] = ' '
			}

		case stateInBlockComment:
			if c == '*' && i+1 < len(data) && data[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				state = statePlain
				i++
			} else {
				out[i] = ' '
			}
		}
	}

	return out
}

// isEscaped reports whether the byte at pos is preceded by an odd number of
// backslashes. An even run means the backslashes escape each other and the
// byte at pos stands on its own.
func isEscaped(data []byte, pos int) bool {
	backslashes := 0
	for i := pos - 1; i >= 0 && data[i] == '\\'; i-- {
		backslashes++
	}
	return backslashes%2 == 1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
