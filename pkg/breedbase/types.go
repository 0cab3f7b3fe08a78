package breedbase

import (
	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/types"
)

type (
	// Breed is a normalized catalog entry.
	Breed = types.EnrichedBreed

	// LookupResult is the envelope returned by Lookup.
	LookupResult = types.LookupResult

	// NarrativeResult is the generated Markdown returned by Narrate.
	NarrativeResult = types.NarrativeResult

	CatalogState = types.CatalogState

	Backend         = types.Backend
	Serializer      = types.Serializer
	MetricsRecorder = types.MetricsRecorder
	Logger          = types.Logger

	// Config is the full client configuration.
	Config = config.Config

	// SecretString holds an API key and redacts it in JSON and logs.
	SecretString = types.SecretString
)

const (
	CatalogEmpty      = types.CatalogEmpty
	CatalogStaleCheck = types.CatalogStaleCheck
	CatalogFresh      = types.CatalogFresh

	SourceCache     = types.SourceCache
	SourceWikipedia = types.SourceWikipedia
)

// NewSecretString wraps value for use in Config.
func NewSecretString(value string) SecretString {
	return types.NewSecretString(value)
}
