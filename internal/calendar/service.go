package calendar

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/telecal/telecal/internal/shows"
)

// Service derives the episode calendar feed from the tracked shows.
type Service struct {
	shows  *shows.Service
	logger zerolog.Logger
}

// NewService creates a new calendar service.
func NewService(showService *shows.Service, logger zerolog.Logger) *Service {
	return &Service{
		shows:  showService,
		logger: logger.With().Str("component", "calendar").Logger(),
	}
}

// Feed builds the iCalendar document for all tracked shows. One event is
// emitted per episode with a resolved air date; episodes without one are
// skipped. Events appear in registry scan order, then episode order, which
// keeps the document stable between requests against an unchanged cache.
func (s *Service) Feed(ctx context.Context) (string, error) {
	payloads, err := s.shows.Payloads(ctx)
	if err != nil {
		return "", err
	}

	builder := NewBuilder()
	skipped := 0
	for _, show := range payloads {
		for _, ep := range show.Episodes {
			date, ok := NormalizeAirDate(ep.AirDate)
			if !ok {
				skipped++
				continue
			}
			builder.AddEvent(show.Name+" | "+ep.Name, date, date)
		}
	}

	s.logger.Debug().
		Int("shows", len(payloads)).
		Int("events", builder.Len()).
		Int("skipped", skipped).
		Msg("Built calendar feed")

	return builder.Build()
}
