package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/freudibili/reeltodo/internal/config"
)

// Place is the resolved result of a place-text-search lookup.
type Place struct {
	LocationName string
	Address      string
	City         string
	Country      string
	Latitude     float64
	Longitude    float64
}

// Geocoder resolves a location phrase into a canonical place. Implementations
// return nil (not an error) when the service is unavailable or finds nothing;
// every call site treats a nil result as "enrichment unavailable".
type Geocoder interface {
	Place(ctx context.Context, name, context string, hints Hints) *Place
}

// Hints carry country/region context matched from the surrounding text.
type Hints struct {
	Country string
	Region  string
}

const defaultTextSearchEndpoint = "https://maps.googleapis.com/maps/api/place/textsearch/json"

// Client calls the Google Places text-search API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	logger     *slog.Logger
}

// NewClient creates a geocoding client. An empty API key is allowed; lookups
// then always return nil and the pipeline degrades.
func NewClient(cfg config.PlacesConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   defaultTextSearchEndpoint,
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

// NewClientWithEndpoint is used by tests to point at a fake server.
func NewClientWithEndpoint(endpoint, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		endpoint:   endpoint,
		apiKey:     apiKey,
		logger:     logger,
	}
}

type textSearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// Place resolves a location phrase, trying query variants in order: the
// phrase with context, the phrase alone, then diacritic-stripped versions of
// both. The first variant with results wins; within it, the first result.
func (c *Client) Place(ctx context.Context, name, searchContext string, hints Hints) *Place {
	if c.apiKey == "" || name == "" {
		return nil
	}

	queries := queryVariants(name, searchContext, hints)
	for _, q := range queries {
		place := c.search(ctx, q)
		if place != nil {
			return place
		}
	}
	return nil
}

func queryVariants(name, searchContext string, hints Hints) []string {
	var base []string
	withContext := strings.TrimSpace(name + " " + searchContext)
	if hints.Region != "" {
		withContext = strings.TrimSpace(withContext + " " + hints.Region)
	}
	if hints.Country != "" {
		withContext = strings.TrimSpace(withContext + " " + hints.Country)
	}
	if withContext != name {
		base = append(base, withContext)
	}
	base = append(base, name)

	variants := make([]string, 0, len(base)*2)
	seen := make(map[string]bool)
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q != "" && !seen[q] {
			seen[q] = true
			variants = append(variants, q)
		}
	}
	for _, q := range base {
		add(q)
	}
	for _, q := range base {
		add(StripDiacritics(q))
	}
	return variants
}

func (c *Client) search(ctx context.Context, query string) *Place {
	endpoint := fmt.Sprintf("%s?query=%s&key=%s",
		c.endpoint, url.QueryEscape(query), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("place search request failed", "query", query, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("place search non-200", "query", query, "status", resp.StatusCode)
		return nil
	}

	var payload textSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("place search decode failed", "query", query, "error", err)
		return nil
	}
	if len(payload.Results) == 0 {
		return nil
	}

	top := payload.Results[0]
	place := &Place{
		LocationName: top.Name,
		Address:      top.FormattedAddress,
		Latitude:     top.Geometry.Location.Lat,
		Longitude:    top.Geometry.Location.Lng,
	}
	for _, comp := range top.AddressComponents {
		for _, t := range comp.Types {
			if t == "locality" && place.City == "" {
				place.City = comp.LongName
			}
			if t == "country" && place.Country == "" {
				place.Country = comp.LongName
			}
		}
	}
	return place
}
