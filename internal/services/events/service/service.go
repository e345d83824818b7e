// Package service provides the events service implementation
package service

import (
	"context"
	"strings"
	"time"

	"touchgrass/internal/modkit/repokit"
	perr "touchgrass/internal/platform/errors"
	"touchgrass/internal/platform/logger"
	"touchgrass/internal/services/events/domain"
	"touchgrass/internal/services/events/repo"
)

// Config for the events service
type Config struct {
	// SaveTimeout bounds one store write so a hung item cannot stall the batch
	SaveTimeout time.Duration

	// ListLimit caps List results when the caller asks for more or nothing
	ListLimit int
}

// Service implements domain.WriterPort and domain.QueryPort
type Service struct {
	q        repokit.Queryer
	binder   repokit.Binder[repo.Storage]
	throttle domain.ThrottlePort
	cfg      Config
}

// New constructs a new events service
func New(q repokit.Queryer, binder repokit.Binder[repo.Storage], throttle domain.ThrottlePort, cfg Config) *Service {
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = 10 * time.Second
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 100
	}
	if throttle == nil {
		throttle = NopThrottle{}
	}
	return &Service{q: q, binder: binder, throttle: throttle, cfg: cfg}
}

func (s *Service) storage() repo.Storage { return s.binder.Bind(s.q) }

// Save implements domain.WriterPort
// an identity collision is the idempotency guarantee at work, reported as
// WasNewlyCreated=false rather than an error
func (s *Service) Save(ctx context.Context, ev domain.Event) (domain.SaveResult, error) {
	ev.Title = strings.TrimSpace(ev.Title)
	if ev.Title == "" {
		return domain.SaveResult{}, perr.Validationf("event title is required")
	}

	now := time.Now().UTC()
	rec := domain.StoredEvent{
		ID:          ev.Key(),
		Event:       ev,
		CreatedAt:   now,
		CreatedAtMs: now.UnixMilli(),
		UpdatedAt:   now,
		UpdatedAtMs: now.UnixMilli(),
	}

	created, err := s.storage().InsertIfAbsent(ctx, rec)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
			// racing writers on the same key, still a clean no-op
			return domain.SaveResult{EventID: rec.ID, WasNewlyCreated: false}, nil
		}
		return domain.SaveResult{}, err
	}
	return domain.SaveResult{EventID: rec.ID, WasNewlyCreated: created}, nil
}

// SaveMany implements domain.WriterPort
// items are paced by the throttle and individually time-boxed, a failing item
// is logged and skipped so the rest of the batch still lands
func (s *Service) SaveMany(ctx context.Context, evs []domain.Event) (domain.BatchResult, error) {
	log := logger.C(ctx)

	var out domain.BatchResult
	for i, ev := range evs {
		if err := s.throttle.Wait(ctx); err != nil {
			// context cancelled while pacing, the batch is over
			return out, perr.Wrap(err, perr.ErrorCodeUnavailable, "batch cancelled")
		}

		itemCtx, cancel := context.WithTimeout(ctx, s.cfg.SaveTimeout)
		res, err := s.Save(itemCtx, ev)
		cancel()
		if err != nil {
			log.Warn().Err(err).Int("index", i).Str("title", ev.Title).Msg("event save failed, skipping")
			out.Errors = append(out.Errors, err.Error())
			continue
		}

		out.EventIDs = append(out.EventIDs, res.EventID)
		if res.WasNewlyCreated {
			out.Inserted++
		}
		rec, err := s.storage().Get(ctx, res.EventID)
		if err != nil {
			log.Warn().Err(err).Str("event_id", res.EventID).Msg("readback after save failed")
			continue
		}
		out.Saved = append(out.Saved, rec)
	}
	return out, nil
}

// Get implements domain.QueryPort
func (s *Service) Get(ctx context.Context, id string) (domain.StoredEvent, error) {
	if strings.TrimSpace(id) == "" {
		return domain.StoredEvent{}, perr.InvalidArgf("event id is required")
	}
	return s.storage().Get(ctx, id)
}

// List implements domain.QueryPort
func (s *Service) List(ctx context.Context, f domain.Filters) ([]domain.StoredEvent, error) {
	if f.Limit <= 0 || f.Limit > s.cfg.ListLimit {
		f.Limit = s.cfg.ListLimit
	}
	return s.storage().List(ctx, f)
}
