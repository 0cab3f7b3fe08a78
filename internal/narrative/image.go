package narrative

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	markdownImage = regexp.MustCompile(`!\[[^\]]*\]\(\s*<?([^)\s>]+)>?(?:\s+"[^"]*")?\s*\)`)
	filePrefix    = regexp.MustCompile(`(?i)File:([^\s)\]|"<>]+\.(?:jpe?g|png|gif|svg|webp))`)
	imageSegment  = regexp.MustCompile(`(?i)/([^/\s)\]"<>?#]+\.(?:jpe?g|png|gif|svg|webp))(?:[?#)\s"]|$)`)
)

// firstImageURL returns the target of the first Markdown image, or "".
func firstImageURL(md string) string {
	m := markdownImage.FindStringSubmatch(md)
	if m == nil {
		return ""
	}
	return m[1]
}

// fileNameFromURL extracts an encyclopedia file name from an image URL that points
// at the encyclopedia, either a File: page or an upload path.
func fileNameFromURL(raw string) string {
	if m := filePrefix.FindStringSubmatch(raw); m != nil {
		return unescape(m[1])
	}
	u, err := url.Parse(raw)
	if err != nil || !isEncyclopediaHost(u.Host) {
		return ""
	}
	if m := imageSegment.FindStringSubmatch(u.Path); m != nil {
		return unescape(m[1])
	}
	return ""
}

// fileNameInText finds a File:<name> reference or an image path anywhere in md.
func fileNameInText(md string) string {
	if m := filePrefix.FindStringSubmatch(md); m != nil {
		return unescape(m[1])
	}
	if m := imageSegment.FindStringSubmatch(md); m != nil {
		return unescape(m[1])
	}
	return ""
}

func isEncyclopediaHost(host string) bool {
	host = strings.ToLower(host)
	return strings.HasSuffix(host, "wikipedia.org") || strings.HasSuffix(host, "wikimedia.org")
}

// thumbnail paths end in "<width>px-<name>"; the metadata API wants <name>.
var thumbPrefix = regexp.MustCompile(`^\d+px-`)

func unescape(name string) string {
	if s, err := url.PathUnescape(name); err == nil {
		name = s
	}
	return thumbPrefix.ReplaceAllString(name, "")
}
