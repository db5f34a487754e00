// Package channel classifies version tokens into release channels.
//
// A channel names the registry dist-tag an install tracks: pinned prerelease
// versions map to their prerelease channel, stable versions map to "latest",
// and bare dist-tags are channels in their own right.
package channel

import "strings"

// Well-known channel names. Arbitrary dist-tags are also valid channels;
// these are the ones with prerelease-suffix conventions.
const (
	Latest = "latest"
	Beta   = "beta"
	Alpha  = "alpha"
	RC     = "rc"
	Canary = "canary"
	Next   = "next"
)

// prereleasePrefixes are matched, in order, against the suffix after the
// first '-' of a prerelease version. First match wins.
var prereleasePrefixes = []string{Alpha, Beta, RC, Canary, Next}

// FromToken maps a version token to its release channel.
//
// Rules, in order: an empty token means no pin and resolves to "latest". A
// token that does not start with a digit is a dist-tag and is returned
// verbatim. A digit-led token containing '-' is a prerelease: the suffix
// after the first '-' is prefix-matched against the known prerelease
// channels ("1.2.3-beta.4" is "beta"). Anything else, including prereleases
// with unrecognized suffixes, is "latest".
func FromToken(token string) string {
	if token == "" {
		return Latest
	}

	if token[0] < '0' || token[0] > '9' {
		return token
	}

	idx := strings.Index(token, "-")
	if idx < 0 {
		return Latest
	}

	suffix := token[idx+1:]
	for _, prefix := range prereleasePrefixes {
		if strings.HasPrefix(suffix, prefix) {
			return prefix
		}
	}

	return Latest
}

// Known reports whether name is one of the well-known channels. Custom
// dist-tags return false; callers that accept them should treat false as
// "custom", not "invalid".
func Known(name string) bool {
	switch name {
	case Latest, Beta, Alpha, RC, Canary, Next:
		return true
	}
	return false
}
