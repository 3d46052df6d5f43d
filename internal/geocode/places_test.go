package geocode

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStripDiacritics(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Zürich", "Zurich"},
		{"Neuchâtel", "Neuchatel"},
		{"Graubünden", "Graubunden"},
		{"plain ascii", "plain ascii"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripDiacritics(tt.in); got != tt.want {
			t.Errorf("StripDiacritics(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeriveContext(t *testing.T) {
	ctx, hints := DeriveContext(ContextInput{
		City:         "Zürich",
		LocationName: "Frau Gerolds Garten",
		Tags:         []string{"streetfood", "schweiz"},
	})
	if ctx != "zurich" {
		t.Errorf("context = %q", ctx)
	}
	if hints.Country == "" {
		t.Errorf("expected country hint from tags, got %+v", hints)
	}
}

func TestDeriveContextFallsBackToGeoTags(t *testing.T) {
	ctx, _ := DeriveContext(ContextInput{
		LocationName: "Seealpsee",
		Tags:         []string{"hiking", "appenzell"},
	})
	if ctx != "appenzell" {
		t.Errorf("context = %q, want the recognized region tag only", ctx)
	}
}

func TestDeriveContextURLSlugContributesHints(t *testing.T) {
	_, hints := DeriveContext(ContextInput{
		LocationName: "Old town",
		SourceURL:    "https://blog.example.com/weekend-in-ticino-guide",
	})
	if hints.Region == "" {
		t.Errorf("expected region hint from URL slug, got %+v", hints)
	}
}

func TestQueryVariants(t *testing.T) {
	got := queryVariants("Café Fédéral", "bern", Hints{Country: "switzerland"})

	want := []string{
		"Café Fédéral bern switzerland",
		"Café Fédéral",
		"Cafe Federal bern switzerland",
		"Cafe Federal",
	}
	if len(got) != len(want) {
		t.Fatalf("variants = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("variant[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPlaceParsesAddressComponents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"results": []map[string]any{{
				"name":              "Lindenhof",
				"formatted_address": "Lindenhof, 8001 Zürich, Switzerland",
				"geometry": map[string]any{
					"location": map[string]any{"lat": 47.373, "lng": 8.541},
				},
				"address_components": []map[string]any{
					{"long_name": "Zürich", "types": []string{"locality", "political"}},
					{"long_name": "Switzerland", "types": []string{"country", "political"}},
				},
			}},
		})
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(srv.URL, "test-key", slog.Default())

	place := c.Place(context.Background(), "Lindenhof", "zurich", Hints{})
	if place == nil {
		t.Fatal("expected place")
	}
	if place.City != "Zürich" {
		t.Errorf("city = %q", place.City)
	}
	if place.Country != "Switzerland" {
		t.Errorf("country = %q", place.Country)
	}
	if place.Latitude != 47.373 {
		t.Errorf("lat = %v", place.Latitude)
	}
}

func TestPlaceTriesVariantsUntilHit(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		queries = append(queries, q)
		if len(queries) < 2 {
			json.NewEncoder(w).Encode(map[string]any{"status": "ZERO_RESULTS", "results": []any{}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"results": []map[string]any{{
				"name":              "Found",
				"formatted_address": "Somewhere 1",
			}},
		})
	}))
	defer srv.Close()

	c := NewClientWithEndpoint(srv.URL, "test-key", slog.Default())

	place := c.Place(context.Background(), "Obscure spot", "nowhere", Hints{})
	if place == nil {
		t.Fatal("expected place from a later variant")
	}
	if len(queries) != 2 {
		t.Errorf("queries = %v", queries)
	}
}

func TestPlaceWithoutAPIKey(t *testing.T) {
	c := NewClientWithEndpoint("http://invalid.local", "", slog.Default())
	if got := c.Place(context.Background(), "Anything", "", Hints{}); got != nil {
		t.Errorf("expected nil without api key, got %+v", got)
	}
}

func TestGazetteerLookups(t *testing.T) {
	if got := LookupCountry("ein Wochenende in der Schweiz"); got == "" {
		t.Error("expected country match for 'schweiz'")
	}
	if got := LookupRegion("Hiking in Appenzell is great"); got == "" {
		t.Error("expected region match for 'appenzell'")
	}
	if got := LookupCountry("nothing geographic here"); got != "" {
		t.Errorf("unexpected country %q", got)
	}
}
