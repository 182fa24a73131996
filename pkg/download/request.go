package download

import (
	"net/url"
	"strings"
)

const (
	defaultFilename = "index.html"
	textPlain       = "text/plain"
)

// Request is a single URL to be streamed to a single destination path.
type Request struct {
	URL  string
	Dest string
}

// FilenameFromURL returns the final path segment of rawURL. The query string is not part of the
// name. URLs that cannot be parsed fall back to the text after the last slash.
func FilenameFromURL(rawURL string) string {
	name := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		name = parsed.Path
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." || name == ".." {
		return defaultFilename
	}
	return name
}

// mediaType strips parameters from a Content-Type header value.
func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(mt)
}

// destinationName appends .txt to plain text downloads so they do not land without an extension.
func destinationName(filename, contentType string) string {
	if contentType == textPlain {
		return filename + ".txt"
	}
	return filename
}
