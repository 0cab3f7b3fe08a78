package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/LavishGent/breedbase/internal/types"
)

const localePlaceholder = "{lang}"

// Wiki talks to the encyclopedia's page summary REST API and its image
// metadata query API.
type Wiki struct {
	client     *Client
	summaryURL string
	apiURL     string
}

// NewWiki creates a Wiki client. summaryURL may contain {lang}, which is replaced
// by the locale of each request.
func NewWiki(client *Client, summaryURL, apiURL string) *Wiki {
	return &Wiki{
		client:     client,
		summaryURL: strings.TrimRight(summaryURL, "/"),
		apiURL:     apiURL,
	}
}

// Summary is the subset of the page summary response breedbase reads.
type Summary struct {
	Title     string `json:"title"`
	Extract   string `json:"extract"`
	Thumbnail *struct {
		Source string `json:"source"`
	} `json:"thumbnail,omitempty"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// ThumbnailURL returns the thumbnail source or "".
func (s *Summary) ThumbnailURL() string {
	if s.Thumbnail == nil {
		return ""
	}
	return s.Thumbnail.Source
}

// SummaryURL builds the summary endpoint for title in locale. Spaces become
// underscores before path escaping.
func (w *Wiki) SummaryURL(locale, title string) string {
	base := strings.ReplaceAll(w.summaryURL, localePlaceholder, locale)
	return base + "/page/summary/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}

// Summary fetches the article summary for title. A missing article is a NotFound error.
func (w *Wiki) Summary(ctx context.Context, locale, title string) (*Summary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.SummaryURL(locale, title), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var s Summary
	if err := w.client.doJSON(req, SourceWikipedia, "wiki.summary."+locale, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

type imageInfoResponse struct {
	Query struct {
		Pages map[string]struct {
			ImageInfo []struct {
				URL string `json:"url"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

// ImageInfo resolves an encyclopedia file name (with or without the "File:"
// prefix) to the URL of the original image.
func (w *Wiki) ImageInfo(ctx context.Context, fileName string) (string, error) {
	name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(fileName), "File:"))
	if name == "" {
		return "", types.NewValidationError("wiki.imageinfo", "missing file name")
	}

	q := url.Values{
		"action": {"query"},
		"titles": {"File:" + name},
		"prop":   {"imageinfo"},
		"iiprop": {"url"},
		"format": {"json"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	var resp imageInfoResponse
	if err := w.client.doJSON(req, SourceWikipedia, "wiki.imageinfo", &resp); err != nil {
		return "", err
	}

	keys := make([]string, 0, len(resp.Query.Pages))
	for k := range resp.Query.Pages {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if info := resp.Query.Pages[k].ImageInfo; len(info) > 0 && info[0].URL != "" {
			return info[0].URL, nil
		}
	}
	return "", types.NewNotFoundError("wiki.imageinfo", "image not found: "+name)
}
