// Package lookup resolves a free-text breed query to a short description,
// preferring the cached catalog and falling back to encyclopedia summaries.
package lookup

import (
	"context"
	"errors"
	"log/slog"

	"github.com/LavishGent/breedbase/internal/catalog"
	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/metrics"
	"github.com/LavishGent/breedbase/internal/types"
	"github.com/LavishGent/breedbase/internal/upstream"
)

const op = "lookup"

// CatalogSource answers exact name matches from the cached catalog without
// network I/O. *catalog.Service satisfies it.
type CatalogSource interface {
	FindByName(ctx context.Context, name string) (types.EnrichedBreed, bool)
}

// SummarySource fetches an encyclopedia summary. *upstream.Wiki satisfies it.
type SummarySource interface {
	Summary(ctx context.Context, locale, title string) (*upstream.Summary, error)
}

// Service answers breed queries from the cached catalog and the encyclopedia.
type Service struct {
	catalog   CatalogSource
	wiki      SummarySource
	validator *types.InputValidator
	cfg       config.LookupConfig
	metrics   types.MetricsRecorder
	logger    *slog.Logger
}

// NewService creates a lookup service. breeds may be nil, which disables the
// local fast path.
func NewService(breeds CatalogSource, wiki SummarySource, cfg config.LookupConfig, recorder types.MetricsRecorder, logger *slog.Logger) *Service {
	if recorder == nil {
		recorder = metrics.NewNoOpTracker()
	}
	if logger == nil {
		logger = slog.Default()
	}
	maxLen := cfg.MaxQueryLength
	if maxLen <= 0 {
		maxLen = types.DefaultMaxInputLength
	}
	return &Service{
		catalog:   breeds,
		wiki:      wiki,
		validator: types.NewInputValidator(types.InputValidationConfig{MaxLength: maxLen}),
		cfg:       cfg,
		metrics:   recorder,
		logger:    logger.With("component", "lookup"),
	}
}

// Lookup resolves query. Validation happens before any I/O.
func (s *Service) Lookup(ctx context.Context, query string) (types.LookupResult, error) {
	q, err := s.validator.Validate(op, query)
	if err != nil {
		s.metrics.RecordLookup("", "", err)
		return types.LookupResult{}, err
	}

	plan := Classify(q)

	if plan.LocalFirst && s.cfg.LocalFirst && s.catalog != nil {
		if b, ok := s.catalog.FindByName(ctx, q); ok {
			res := fromBreed(b, plan.Locales[0])
			s.logger.Debug("Lookup served from catalog", "query", q)
			s.metrics.RecordLookup(res.Locale, res.Source, nil)
			return res, nil
		}
	}

	var lastLocale string
	for i, locale := range plan.Locales {
		lastLocale = locale
		final := i == len(plan.Locales)-1

		res, found, err := s.probe(ctx, locale, q, final)
		if err != nil {
			s.metrics.RecordLookup(locale, types.SourceWikipedia, err)
			return types.LookupResult{}, err
		}
		if found {
			s.metrics.RecordLookup(locale, res.Source, nil)
			return res, nil
		}
	}

	// probe on the final locale never reports "not found" without an error.
	err = types.NewNotFoundError(op, "no article for "+q)
	s.metrics.RecordLookup(lastLocale, types.SourceWikipedia, err)
	return types.LookupResult{}, err
}

// probe asks one locale. On a non-final attempt a missing or failing article
// yields found=false so the caller moves to the next locale.
func (s *Service) probe(ctx context.Context, locale, q string, final bool) (types.LookupResult, bool, error) {
	summary, err := s.wiki.Summary(ctx, locale, q)
	if err != nil {
		if !final && canFallBack(err) {
			s.logger.Debug("No usable article, trying next locale", "locale", locale, "query", q, "error", err)
			return types.LookupResult{}, false, nil
		}
		return types.LookupResult{}, false, err
	}

	if !LooksLikeBreed(q, summary.Extract) {
		return types.LookupResult{}, false, types.NewValidationError(op, "not a dog breed article: "+summary.Title)
	}

	return types.LookupResult{
		Title:  summary.Title,
		Text:   summary.Extract,
		Image:  summary.ThumbnailURL(),
		URL:    summary.ContentURLs.Desktop.Page,
		Source: types.SourceWikipedia,
		Locale: locale,
	}, true, nil
}

func canFallBack(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return types.IsFallbackEligible(err) || types.IsTimeout(err)
}

func fromBreed(b types.EnrichedBreed, locale string) types.LookupResult {
	text := b.BredFor
	if text == "" || text == catalog.NotSpecified {
		text = b.Description
	}
	if text == "" {
		text = catalog.NoDescription
	}
	return types.LookupResult{
		Title:       b.Name,
		Text:        text,
		Temperament: b.Temperament,
		LifeSpan:    b.LifeSpan,
		Image:       b.ImageURL,
		URL:         b.WikipediaURL,
		Source:      types.SourceCache,
		Locale:      locale,
	}
}
