package registry

import (
	"fmt"
	"net/url"
)

// Static external surfaces plugup links users to. These are declarative
// definitions, not configuration: only the registry base URL is overridable.
const (
	// DocsURL is the host's plugin documentation.
	DocsURL = "https://opencode.ai/docs/plugins"

	// SearchURLTemplate is the web search template for discovering plugin
	// packages. It carries one %s verb for the escaped query.
	SearchURLTemplate = "https://www.npmjs.com/search?q=%s"
)

// SearchURL returns the web search URL for query.
func SearchURL(query string) string {
	return fmt.Sprintf(SearchURLTemplate, url.QueryEscape(query))
}
