// Package services contains the application services of the cache client.
// This file defines the synchronization engine: the only component that
// calls the remote source and the only one that writes multi-table updates.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/dbcache/internal/client/client"
	"github.com/dmitrijs2005/dbcache/internal/client/mapper"
	"github.com/dmitrijs2005/dbcache/internal/client/models"
	"github.com/dmitrijs2005/dbcache/internal/client/store"
	"github.com/dmitrijs2005/dbcache/internal/common"
	"github.com/dmitrijs2005/dbcache/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultPageSize is the number of records requested by a collection refresh.
const DefaultPageSize = 100

// SyncService defines the write-side operations of the cache.
//
// Contract:
//   - Refresh / RefreshByID: fetch from the remote source and write origin
//     planets, then characters, then transformations in one transaction.
//     A remote failure writes nothing.
//   - SetFavorite / Delete / AddCharacter / AddPlanet: local-only writes.
//   - RefreshAll: refresh every kind concurrently.
//   - PruneOrphans: drop transformations whose owner was deleted.
//
// Every operation returns an Outcome; no error or panic escapes without one.
type SyncService interface {
	Refresh(ctx context.Context, kind models.Kind) models.Outcome
	RefreshByID(ctx context.Context, kind models.Kind, id int64) models.Outcome
	RefreshAll(ctx context.Context) map[models.Kind]models.Outcome
	SetFavorite(ctx context.Context, kind models.Kind, id int64, favorite bool) models.Outcome
	Delete(ctx context.Context, kind models.Kind, id int64) models.Outcome
	AddCharacter(ctx context.Context, c models.Character) models.Outcome
	AddPlanet(ctx context.Context, p models.Planet) models.Outcome
	PruneOrphans(ctx context.Context) models.Outcome
	LastSynced(ctx context.Context, kind models.Kind) (time.Time, error)
	Ping(ctx context.Context) error
}

type syncService struct {
	client   client.Client
	store    *store.Store
	log      logging.Logger
	pageSize int
	now      func() time.Time

	flights singleflight.Group
}

type Option func(*syncService)

func WithPageSize(n int) Option {
	return func(s *syncService) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(s *syncService) { s.log = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *syncService) { s.now = now }
}

// NewSyncService constructs a SyncService over the given remote client and store.
func NewSyncService(c client.Client, st *store.Store, opts ...Option) SyncService {
	s := &syncService{
		client:   c,
		store:    st,
		log:      logging.Nop(),
		pageSize: DefaultPageSize,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *syncService) Refresh(ctx context.Context, kind models.Kind) models.Outcome {
	return s.coalesce(ctx, fmt.Sprintf("all:%s", kind), kind, 0, func(ctx context.Context) models.Outcome {
		return s.refresh(ctx, kind)
	})
}

func (s *syncService) RefreshByID(ctx context.Context, kind models.Kind, id int64) models.Outcome {
	return s.coalesce(ctx, fmt.Sprintf("one:%s:%d", kind, id), kind, id, func(ctx context.Context) models.Outcome {
		return s.refreshOne(ctx, kind, id)
	})
}

// RefreshAll refreshes every kind concurrently. One failing kind does not
// stop the others; the first failure is logged and every outcome is returned.
func (s *syncService) RefreshAll(ctx context.Context) map[models.Kind]models.Outcome {
	var (
		mu  sync.Mutex
		out = make(map[models.Kind]models.Outcome, len(models.Kinds))
		g   errgroup.Group
	)
	for _, kind := range models.Kinds {
		g.Go(func() error {
			o := s.Refresh(ctx, kind)
			mu.Lock()
			out[kind] = o
			mu.Unlock()
			if !o.OK() {
				return fmt.Errorf("refresh %s: %s", kind, o.Cause())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Warn(ctx, "refresh all incomplete", "error", err)
	}
	return out
}

// coalesce joins concurrent callers of the same key onto one run. The run is
// detached from the caller's cancellation: a caller that stops waiting gets
// FailureCancelled, but the run still completes and commits.
func (s *syncService) coalesce(ctx context.Context, key string, kind models.Kind, id int64, fn func(ctx context.Context) models.Outcome) models.Outcome {
	detached := context.WithoutCancel(ctx)
	ch := s.flights.DoChan(key, func() (any, error) {
		return s.guard(kind, id, func() models.Outcome { return fn(detached) }), nil
	})

	select {
	case res := <-ch:
		return res.Val.(models.Outcome)
	case <-ctx.Done():
		return models.Failed(kind, id, models.FailureCancelled, fmt.Errorf("stopped waiting: %w", ctx.Err()))
	}
}

// guard turns a panic inside fn into a FailureInternal outcome.
func (s *syncService) guard(kind models.Kind, id int64, fn func() models.Outcome) (out models.Outcome) {
	defer func() {
		if p := recover(); p != nil {
			s.log.Error(context.Background(), "recovered panic in sync", "kind", kind, "id", id, "panic", p)
			out = models.Failed(kind, id, models.FailureInternal, fmt.Errorf("panic: %v", p))
		}
	}()
	return fn()
}

func (s *syncService) refresh(ctx context.Context, kind models.Kind) models.Outcome {
	log := s.log.With("run_id", uuid.NewString(), "kind", kind)
	start := s.now()

	var out models.Outcome
	switch kind {
	case models.KindCharacter:
		items, err := s.client.ListCharacters(ctx, s.pageSize)
		if err != nil {
			return s.remoteFailure(ctx, log, kind, 0, err)
		}
		out = s.writeCharacters(ctx, kind, 0, items, true)
	case models.KindPlanet:
		items, err := s.client.ListPlanets(ctx, s.pageSize)
		if err != nil {
			return s.remoteFailure(ctx, log, kind, 0, err)
		}
		out = s.writePlanets(ctx, kind, 0, mapper.PlanetRowsFromWire(items), true)
	default:
		return invalidKind(kind, 0)
	}

	s.logOutcome(ctx, log, out, start)
	return out
}

func (s *syncService) refreshOne(ctx context.Context, kind models.Kind, id int64) models.Outcome {
	log := s.log.With("run_id", uuid.NewString(), "kind", kind, "id", id)
	start := s.now()

	var out models.Outcome
	switch kind {
	case models.KindCharacter:
		item, err := s.client.GetCharacter(ctx, id)
		if err != nil {
			return s.remoteFailure(ctx, log, kind, id, err)
		}
		out = s.writeCharacters(ctx, kind, id, []models.WireCharacter{*item}, false)
	case models.KindPlanet:
		item, err := s.client.GetPlanet(ctx, id)
		if err != nil {
			return s.remoteFailure(ctx, log, kind, id, err)
		}
		out = s.writePlanets(ctx, kind, id, []models.PlanetRow{mapper.PlanetRowFromWire(*item)}, false)
	default:
		return invalidKind(kind, id)
	}

	s.logOutcome(ctx, log, out, start)
	return out
}

// writeCharacters stores a fetched page in referential order: origin planets,
// then characters, then transformations, all in one transaction.
func (s *syncService) writeCharacters(ctx context.Context, kind models.Kind, id int64, items []models.WireCharacter, full bool) models.Outcome {
	planets := mapper.PlanetsFromCharacters(items)
	chars := mapper.CharacterRowsFromWire(items)
	trans := mapper.TransformationsFromCharacters(items)

	err := s.store.Update(ctx, func(tx *store.Tx) error {
		if err := tx.UpsertPlanets(ctx, planets); err != nil {
			return err
		}
		if err := tx.UpsertCharacters(ctx, chars); err != nil {
			return err
		}
		if err := tx.UpsertTransformations(ctx, trans); err != nil {
			return err
		}
		if full {
			return tx.SetLastSynced(ctx, kind, s.now())
		}
		return nil
	})
	if err != nil {
		return storageFailure(kind, id, err)
	}

	out := models.Succeeded(kind, id)
	out.Planets, out.Characters, out.Transformations = len(planets), len(chars), len(trans)
	return out
}

func (s *syncService) writePlanets(ctx context.Context, kind models.Kind, id int64, rows []models.PlanetRow, full bool) models.Outcome {
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		if err := tx.UpsertPlanets(ctx, rows); err != nil {
			return err
		}
		if full {
			return tx.SetLastSynced(ctx, kind, s.now())
		}
		return nil
	})
	if err != nil {
		return storageFailure(kind, id, err)
	}

	out := models.Succeeded(kind, id)
	out.Planets = len(rows)
	return out
}

func (s *syncService) remoteFailure(ctx context.Context, log logging.Logger, kind models.Kind, id int64, err error) models.Outcome {
	failure := models.FailureTransport
	switch {
	case errors.Is(err, client.ErrDecode):
		failure = models.FailureDecode
	case errors.Is(err, client.ErrNotFound):
		failure = models.FailureNotFound
	}
	log.Warn(ctx, "remote fetch failed, cache left untouched", "failure", failure, "error", err)
	return models.Failed(kind, id, failure, err)
}

func (s *syncService) logOutcome(ctx context.Context, log logging.Logger, out models.Outcome, start time.Time) {
	elapsed := s.now().Sub(start)
	if !out.OK() {
		log.Error(ctx, "sync failed", "failure", out.Failure, "error", out.Err, "elapsed", elapsed)
		return
	}
	log.Info(ctx, "sync finished",
		"planets", out.Planets,
		"characters", out.Characters,
		"transformations", out.Transformations,
		"elapsed", elapsed,
	)
}

// storageFailure classifies an error returned by store.Update.
func storageFailure(kind models.Kind, id int64, err error) models.Outcome {
	switch {
	case errors.Is(err, common.ErrorConflict):
		return models.Failed(kind, id, models.FailureConflict, err)
	case errors.Is(err, common.ErrorInvalidRecord),
		errors.Is(err, common.ErrorMissingOrigin),
		errors.Is(err, common.ErrorUnknownKind):
		return models.Failed(kind, id, models.FailureInvalid, err)
	case errors.Is(err, common.ErrorNotFound):
		return models.Failed(kind, id, models.FailureNotFound, err)
	}
	return models.Failed(kind, id, models.FailureStorage, err)
}

func invalidKind(kind models.Kind, id int64) models.Outcome {
	return models.Failed(kind, id, models.FailureInvalid, fmt.Errorf("%w: %q", common.ErrorUnknownKind, kind))
}

func (s *syncService) LastSynced(ctx context.Context, kind models.Kind) (time.Time, error) {
	return s.store.LastSynced(ctx, kind)
}

func (s *syncService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
