package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/freudibili/reeltodo/internal/config"
	"github.com/freudibili/reeltodo/internal/models"
)

// Hints are caller-supplied metadata from the client's own share sheet.
// They take precedence over anything scraped from the page.
type Hints struct {
	Title        string
	Description  string
	ThumbnailURL string
	AuthorName   string
}

// Fetcher resolves platform metadata for a shared URL. A failed scrape is
// not an error: the pipeline degrades with an all-nil SourceMetadata.
type Fetcher struct {
	httpClient *http.Client
	youtubeKey string
	logger     *slog.Logger
}

// NewFetcher creates a metadata fetcher. The YouTube key is optional; when
// empty, YouTube URLs fall back to Open Graph scraping like any other page.
func NewFetcher(cfg config.YouTubeConfig, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
		youtubeKey: cfg.APIKey,
		logger:     logger,
	}
}

// Fetch retrieves metadata for the URL, merging caller hints over scraped
// values. It never returns an error; scrape failures yield empty fields.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, hints Hints) models.SourceMetadata {
	platform := Detect(rawURL)
	meta := models.SourceMetadata{Platform: platform}

	if platform == models.PlatformYouTube && f.youtubeKey != "" {
		if yt, err := f.fetchYouTube(ctx, rawURL); err == nil {
			meta = yt
		} else {
			f.logger.Warn("youtube api lookup failed, falling back to scrape",
				"url", rawURL, "error", err)
			meta = f.scrapeOpenGraph(ctx, rawURL, platform)
		}
	} else {
		meta = f.scrapeOpenGraph(ctx, rawURL, platform)
	}

	applyHints(&meta, hints)
	return meta
}

func applyHints(meta *models.SourceMetadata, hints Hints) {
	if hints.Title != "" {
		meta.Title = models.StringPtr(hints.Title)
	}
	if hints.Description != "" {
		meta.Description = models.StringPtr(hints.Description)
	}
	if hints.ThumbnailURL != "" {
		meta.ImageURL = models.StringPtr(hints.ThumbnailURL)
	}
	if hints.AuthorName != "" {
		meta.Author = models.StringPtr(hints.AuthorName)
	}
}

const youtubeVideosEndpoint = "https://www.googleapis.com/youtube/v3/videos"

type youtubeVideosResponse struct {
	Items []struct {
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
			Thumbnails   map[string]struct {
				URL    string `json:"url"`
				Width  int    `json:"width"`
				Height int    `json:"height"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

func (f *Fetcher) fetchYouTube(ctx context.Context, rawURL string) (models.SourceMetadata, error) {
	videoID := youtubeVideoID(rawURL)
	if videoID == "" {
		return models.SourceMetadata{}, fmt.Errorf("no video id in url")
	}

	endpoint := fmt.Sprintf("%s?part=snippet&id=%s&key=%s",
		youtubeVideosEndpoint, url.QueryEscape(videoID), url.QueryEscape(f.youtubeKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.SourceMetadata{}, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return models.SourceMetadata{}, fmt.Errorf("youtube api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.SourceMetadata{}, fmt.Errorf("youtube api status %d", resp.StatusCode)
	}

	var payload youtubeVideosResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.SourceMetadata{}, fmt.Errorf("decode youtube response: %w", err)
	}
	if len(payload.Items) == 0 {
		return models.SourceMetadata{}, fmt.Errorf("video %s not found", videoID)
	}

	snippet := payload.Items[0].Snippet
	meta := models.SourceMetadata{
		Platform: models.PlatformYouTube,
		Title:    models.StringPtr(snippet.Title),
		Author:   models.StringPtr(snippet.ChannelTitle),
	}
	if snippet.Description != "" {
		meta.Description = models.StringPtr(snippet.Description)
	}
	if thumb := bestThumbnail(snippet.Thumbnails); thumb != "" {
		meta.ImageURL = models.StringPtr(thumb)
	}
	if ts, err := time.Parse(time.RFC3339, snippet.PublishedAt); err == nil {
		meta.PublishedAt = &ts
	}
	return meta, nil
}

// bestThumbnail picks the highest-resolution thumbnail the API returned.
func bestThumbnail(thumbnails map[string]struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}) string {
	best := ""
	bestArea := 0
	for _, t := range thumbnails {
		area := t.Width * t.Height
		if t.URL != "" && area >= bestArea {
			best = t.URL
			bestArea = area
		}
	}
	return best
}

func (f *Fetcher) scrapeOpenGraph(ctx context.Context, rawURL string, platform models.Platform) models.SourceMetadata {
	meta := models.SourceMetadata{Platform: platform}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return meta
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; reeltodo/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Warn("metadata scrape failed", "url", rawURL, "error", err)
		return meta
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("metadata scrape non-200", "url", rawURL, "status", resp.StatusCode)
		return meta
	}

	// 2MB is plenty for the <head>; social pages can be enormous.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return meta
	}

	og := parseMetaTags(strings.NewReader(string(body)))

	if v := og.first("og:title", "twitter:title"); v != "" {
		meta.Title = models.StringPtr(v)
	}
	if v := og.first("og:description", "twitter:description"); v != "" {
		meta.Description = models.StringPtr(v)
	}
	if v := og.first("og:image", "twitter:image"); v != "" {
		meta.ImageURL = models.StringPtr(v)
	}
	if v := og.first("og:site_name", "twitter:creator"); v != "" {
		meta.Author = models.StringPtr(v)
	}
	return meta
}
