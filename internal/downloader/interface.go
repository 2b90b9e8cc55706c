// Package downloader fetches remote audio inputs over HTTP before
// analysis.
package downloader

import (
	"context"
	"strings"
)

// Downloader represents a generic audio downloader interface
type Downloader interface {
	// Download downloads audio from the given URL to the output directory
	// Returns the path to the downloaded file
	Download(ctx context.Context, url, outputDir string) (string, error)

	// SupportsURL checks if this downloader can handle the given URL
	SupportsURL(url string) bool
}

// IsRemote reports whether the input looks like a URL rather than a
// local path.
func IsRemote(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}
