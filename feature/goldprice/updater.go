package goldprice

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"goldwatch/core/apperror"
	"goldwatch/feature/server"

	"go.uber.org/zap"
)

// ErrUpdateInProgress is returned when a run is requested while another run
// of the same updater is still executing.
var ErrUpdateInProgress = errors.New("gold price update already in progress")

// Updater periodically reconciles the external gold price feed against the
// server catalog and appends one snapshot per canonical server.
type Updater struct {
	client   FeedClient
	servers  *server.Service
	repo     *Repository
	logger   *zap.Logger
	interval time.Duration

	running atomic.Bool
}

// NewUpdater creates a feed updater with the given run interval.
func NewUpdater(client FeedClient, servers *server.Service, repo *Repository, logger *zap.Logger, interval time.Duration) *Updater {
	return &Updater{
		client:   client,
		servers:  servers,
		repo:     repo,
		logger:   logger,
		interval: interval,
	}
}

// Start runs the updater loop until the context is cancelled. The next run is
// scheduled a full interval after the previous one completes, so runs never
// overlap regardless of how long a run takes.
func (u *Updater) Start(ctx context.Context) {
	u.logger.Info("starting gold price updater", zap.Duration("interval", u.interval))
	for {
		if err := u.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			u.logger.Error("gold price update failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			u.logger.Info("stopping gold price updater")
			return
		case <-time.After(u.interval):
		}
	}
}

// RunOnce executes a single fetch, parse, match, persist cycle. Any step
// failing aborts the run with nothing persisted. Concurrent invocations are
// rejected with ErrUpdateInProgress.
func (u *Updater) RunOnce(ctx context.Context) error {
	if !u.running.CompareAndSwap(false, true) {
		return ErrUpdateInProgress
	}
	defer u.running.Store(false)

	started := time.Now()
	u.logger.Info("starting gold price update")

	raw, err := u.client.FetchRaw(ctx)
	if err != nil {
		return err
	}

	quotes, err := parseQuotes(raw)
	if err != nil {
		return err
	}

	servers, err := u.servers.GetAll(ctx)
	if err != nil {
		return err
	}

	prices, err := u.matchQuotes(servers, quotes)
	if err != nil {
		return err
	}

	if err := u.repo.SaveAll(ctx, prices); err != nil {
		return err
	}

	u.logger.Info("finished gold price update",
		zap.Int("servers", len(prices)),
		zap.Duration("duration", time.Since(started)))
	return nil
}

// matchQuotes pairs every canonical server with its feed quote. The match is
// all or nothing: one server without a quote fails the whole run. Quotes for
// unknown servers are ignored; duplicate quotes for the same server keep the
// first occurrence.
func (u *Updater) matchQuotes(servers []server.Server, quotes []Quote) ([]GoldPrice, error) {
	byName := make(map[string]Quote, len(quotes))
	for _, q := range quotes {
		name := strings.ToLower(q.ServerName)
		if _, seen := byName[name]; seen {
			u.logger.Warn("duplicate gold price quote in feed", zap.String("server", q.ServerName))
			continue
		}
		byName[name] = q
	}

	prices := make([]GoldPrice, 0, len(servers))
	for _, srv := range servers {
		quote, ok := byName[srv.UniqueName()]
		if !ok {
			return nil, apperror.NewNotFound("no gold price found for server %s", srv.UniqueName())
		}
		prices = append(prices, GoldPrice{ServerID: srv.ID, Price: quote.Price})
	}
	return prices, nil
}
