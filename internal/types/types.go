// Package types provides shared types for breedbase.
// This package breaks import cycles between pkg/breedbase and the internal services.
package types

import "time"

// Measure is a dual-unit measurement as reported by the breed-data API.
type Measure struct {
	Imperial string `json:"imperial,omitempty"`
	Metric   string `json:"metric,omitempty"`
}

// BreedRaw is a breed record exactly as the breed-data API returns it.
//
//nolint:govet // Wire struct - field order follows the upstream payload
type BreedRaw struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	Temperament      string   `json:"temperament,omitempty"`
	LifeSpan         string   `json:"life_span,omitempty"`
	Origin           string   `json:"origin,omitempty"`
	Weight           *Measure `json:"weight,omitempty"`
	Height           *Measure `json:"height,omitempty"`
	BredFor          string   `json:"bred_for,omitempty"`
	BreedGroup       string   `json:"breed_group,omitempty"`
	ReferenceImageID string   `json:"reference_image_id,omitempty"`
	WikipediaURL     string   `json:"wikipedia_url,omitempty"`
	Description      string   `json:"description,omitempty"`
}

// EnrichedBreed is the canonical breed record served to callers and persisted in the cache.
//
//nolint:govet // Wire struct - field order follows the persisted cache file
type EnrichedBreed struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Temperament  string `json:"temperament"`
	LifeSpan     string `json:"life_span"`
	Origin       string `json:"origin"`
	Weight       string `json:"weight"`
	Height       string `json:"height"`
	BredFor      string `json:"bred_for"`
	BreedGroup   string `json:"breed_group"`
	ImageURL     string `json:"image_url"`
	WikipediaURL string `json:"wikipedia_url"`
}

// CacheRecord is the single persisted catalog snapshot.
type CacheRecord struct {
	// Timestamp is the capture instant in Unix milliseconds.
	Timestamp int64           `json:"timestamp"`
	DataHash  string          `json:"dataHash"`
	Breeds    []EnrichedBreed `json:"breeds"`
}

// NewCacheRecord builds a record captured at now.
func NewCacheRecord(now time.Time, hash string, breeds []EnrichedBreed) CacheRecord {
	return CacheRecord{
		Timestamp: now.UnixMilli(),
		DataHash:  hash,
		Breeds:    breeds,
	}
}

// CreatedAt returns the capture instant.
func (r CacheRecord) CreatedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Age returns how long ago the record was captured relative to now.
func (r CacheRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.CreatedAt())
}

// IsFresh reports whether the record is younger than ttl.
func (r CacheRecord) IsFresh(now time.Time, ttl time.Duration) bool {
	return r.Age(now) < ttl
}

// CatalogState is the freshness state of the cached catalog.
type CatalogState int

const (
	CatalogEmpty CatalogState = iota + 1
	CatalogStaleCheck
	CatalogFresh
)

func (s CatalogState) String() string {
	switch s {
	case CatalogEmpty:
		return "empty"
	case CatalogStaleCheck:
		return "stale-check"
	case CatalogFresh:
		return "fresh"
	default:
		return "unknown"
	}
}

// Lookup result sources.
const (
	SourceCache     = "cache"
	SourceWikipedia = "wikipedia"
)

// LookupResult is the envelope returned by a breed lookup.
type LookupResult struct {
	Title       string `json:"title"`
	Text        string `json:"text"`
	Temperament string `json:"temperament"`
	LifeSpan    string `json:"lifeSpan"`
	Image       string `json:"image,omitempty"`
	URL         string `json:"url,omitempty"`
	Source      string `json:"source"`
	Locale      string `json:"locale,omitempty"`
}

// NarrativeResult is the generated markdown narrative for a breed.
type NarrativeResult struct {
	Markdown string `json:"markdown"`
	ImageURL string `json:"imageUrl,omitempty"`
	// Missing is set when the generator reported that it knows nothing about the breed.
	Missing bool `json:"missing"`
}
