// Package narrative asks the generative text API for a Markdown description of
// a breed and resolves the image it references.
package narrative

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/metrics"
	"github.com/LavishGent/breedbase/internal/resilience"
	"github.com/LavishGent/breedbase/internal/types"
	"github.com/LavishGent/breedbase/internal/upstream"
)

const op = "narrate"

// Completer sends a chat completion request. *upstream.Chat satisfies it.
type Completer interface {
	Complete(ctx context.Context, messages []upstream.ChatMessage, jsonMode bool) (string, error)
}

// ImageResolver maps an encyclopedia file name to an image URL. *upstream.Wiki satisfies it.
type ImageResolver interface {
	ImageInfo(ctx context.Context, fileName string) (string, error)
}

// Service generates breed narratives through a Completer.
type Service struct {
	chat       Completer
	images     ImageResolver
	validator  *types.InputValidator
	timeout    *resilience.Timeout
	structured bool
	mode       string
	metrics    types.MetricsRecorder
	logger     *slog.Logger
}

// NewService creates a narrative service. The timeout is clamped to the
// 10 to 15 second window. images may be nil, which disables file-name resolution.
func NewService(chat Completer, images ImageResolver, cfg config.NarrativeConfig, recorder types.MetricsRecorder, logger *slog.Logger) *Service {
	if recorder == nil {
		recorder = metrics.NewNoOpTracker()
	}
	if logger == nil {
		logger = slog.Default()
	}
	mode := cfg.Mode
	if mode == "" {
		mode = config.NarrativeModeFreeText
	}
	return &Service{
		chat:       chat,
		images:     images,
		validator:  types.DefaultInputValidator,
		timeout:    resilience.NewTimeout(clampTimeout(cfg.Timeout)),
		structured: mode == config.NarrativeModeStructured,
		mode:       mode,
		metrics:    recorder,
		logger:     logger.With("component", "narrative"),
	}
}

func clampTimeout(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return config.MaxNarrativeTimeout
	case d < config.MinNarrativeTimeout:
		return config.MinNarrativeTimeout
	case d > config.MaxNarrativeTimeout:
		return config.MaxNarrativeTimeout
	default:
		return d
	}
}

// Narrate generates the narrative for breedName. An "information absent" reply
// is returned with Missing set, not as an error.
func (s *Service) Narrate(ctx context.Context, breedName string) (types.NarrativeResult, error) {
	start := time.Now()
	res, err := s.narrate(ctx, breedName)
	s.metrics.RecordNarrative(s.mode, time.Since(start), err)
	return res, err
}

func (s *Service) narrate(ctx context.Context, breedName string) (types.NarrativeResult, error) {
	breed, err := s.validator.Validate(op, breedName)
	if err != nil {
		return types.NarrativeResult{}, err
	}

	prompt, err := renderPrompt(breed, s.structured)
	if err != nil {
		return types.NarrativeResult{}, err
	}
	messages := []upstream.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}

	var content string
	err = s.timeout.Execute(ctx, func(ctx context.Context) error {
		var completeErr error
		content, completeErr = s.chat.Complete(ctx, messages, s.structured)
		return completeErr
	})
	if err != nil {
		if errors.Is(err, types.ErrTimeout) && !errors.As(err, new(*types.Error)) {
			err = types.NewTimeoutError(op, err)
		}
		s.logger.Warn("Narrative generation failed", "breed", breed, "error", err)
		return types.NarrativeResult{}, err
	}

	if IsMissing(content) {
		return types.NarrativeResult{Markdown: strings.TrimSpace(content), Missing: true}, nil
	}

	resp, err := decodeResponse(content, s.structured)
	if err != nil {
		return types.NarrativeResult{}, err
	}

	md := resp.markdown()
	if IsMissing(md) {
		return types.NarrativeResult{Markdown: md, Missing: true}, nil
	}

	return types.NarrativeResult{
		Markdown: md,
		ImageURL: s.resolveImage(ctx, breed, resp),
	}, nil
}

// resolveImage picks the image for resp. Failures are logged and leave the URL empty
// or, when the reply held a direct URL, fall back to it.
func (s *Service) resolveImage(ctx context.Context, breed string, resp Response) string {
	if st, ok := resp.(Structured); ok && st.ImageFileName != "" {
		if u := s.lookupFile(ctx, breed, st.ImageFileName); u != "" {
			return u
		}
	}

	md := resp.markdown()
	if direct := firstImageURL(md); direct != "" {
		if name := fileNameFromURL(direct); name != "" {
			if u := s.lookupFile(ctx, breed, name); u != "" {
				return u
			}
		}
		return direct
	}

	if name := fileNameInText(md); name != "" {
		return s.lookupFile(ctx, breed, name)
	}
	return ""
}

func (s *Service) lookupFile(ctx context.Context, breed, name string) string {
	if s.images == nil {
		return ""
	}
	u, err := s.images.ImageInfo(ctx, name)
	if err != nil {
		s.logger.Debug("Image file not resolved", "breed", breed, "file", name, "error", err)
		return ""
	}
	return u
}
