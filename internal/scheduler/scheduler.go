package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"text/template"
	"time"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/social"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
	"github.com/SIMPLYBOYS/campaign_monitor/pkg/logger"
)

const (
	DefaultPollInterval        = 30 * time.Second
	DefaultCompletionTimeLimit = 6 * time.Hour
	DefaultCallTimeout         = 20 * time.Second
)

// Store is the partitioned campaign store the loop drives.
type Store interface {
	List(ctx context.Context, state types.State) ([]types.Campaign, error)
	Get(ctx context.Context, id string, state types.State) (types.Campaign, error)
	Move(ctx context.Context, id string, from, to types.State) error
}

type FundingObserver interface {
	IsFunded(ctx context.Context, c types.Campaign) (bool, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, c types.Campaign) (types.Receipt, error)
}

type Announcer interface {
	Announce(ctx context.Context, text string) error
}

type Options struct {
	Store      Store
	Observer   FundingObserver
	Dispatcher Dispatcher
	Announcer  Announcer
	Notifier   Notifier
	Guard      Guard
	Clock      Clock

	// AnnounceTemplate renders the launch post from a types.Campaign whose
	// Hashtag carries its leading '#'.
	AnnounceTemplate    *template.Template
	PollInterval        time.Duration
	CompletionTimeLimit time.Duration
	CallTimeout         time.Duration
}

// Summary counts what one tick did.
type Summary struct {
	Active    int
	Started   int
	Completed int
	Announced int
	Paid      int
	Skipped   int
	Failed    int
}

// Scheduler moves campaigns through Active, Started and Completed on a fixed
// poll interval.
type Scheduler struct {
	opts Options
}

func New(opts Options) (*Scheduler, error) {
	if opts.Store == nil || opts.Observer == nil || opts.Dispatcher == nil || opts.Announcer == nil {
		return nil, fmt.Errorf("scheduler requires store, observer, dispatcher and announcer")
	}
	if opts.AnnounceTemplate == nil {
		return nil, fmt.Errorf("scheduler requires an announcement template")
	}
	if opts.Notifier == nil {
		opts.Notifier = Notifiers(nil)
	}
	if opts.Guard == nil {
		opts.Guard = NewMemoryGuard()
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.CompletionTimeLimit <= 0 {
		opts.CompletionTimeLimit = DefaultCompletionTimeLimit
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	return &Scheduler{opts: opts}, nil
}

// Run ticks immediately and then every PollInterval until ctx is cancelled.
// Each tick runs in its own goroutine; a slow tick never delays the next one.
// Run returns once every in-flight tick has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := s.opts.Clock.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	start := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Tick(ctx)
		}()
	}

	logger.Info("Campaign scheduler started, polling every %s", s.opts.PollInterval)
	start()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Campaign scheduler stopping, waiting for in-flight work")
			return nil
		case <-ticker.C():
			start()
		}
	}
}

// Tick makes one pass over Active, Started and Completed. Campaigns are
// handled one at a time; a failing campaign is logged and the pass goes on.
// Once ctx is cancelled no further campaign is started, but the one in
// progress finishes.
func (s *Scheduler) Tick(ctx context.Context) Summary {
	var sum Summary
	work := context.WithoutCancel(ctx)

	active, err := s.list(work, types.StateActive)
	if err == nil {
		sum.Active = len(active)
		for _, c := range active {
			if ctx.Err() != nil {
				return sum
			}
			s.guarded(work, c, &sum, s.launch)
		}
	}

	started, err := s.list(work, types.StateStarted)
	if err == nil {
		sum.Started = len(started)
		now := s.opts.Clock.Now()
		for _, c := range started {
			if ctx.Err() != nil {
				return sum
			}
			if now.Sub(c.CreatedAt) < s.opts.CompletionTimeLimit {
				continue
			}
			s.guarded(work, c, &sum, s.complete)
		}
	}

	completed, err := s.list(work, types.StateCompleted)
	if err == nil {
		sum.Completed = len(completed)
	}

	logger.Debug("Tick done: %d active, %d started, %d completed, %d announced, %d paid, %d skipped, %d failed",
		sum.Active, sum.Started, sum.Completed, sum.Announced, sum.Paid, sum.Skipped, sum.Failed)
	return sum
}

func (s *Scheduler) list(ctx context.Context, state types.State) ([]types.Campaign, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	defer cancel()
	campaigns, err := s.opts.Store.List(callCtx, state)
	if err != nil {
		logger.Error("Failed to list %s campaigns: %v", state, err)
	}
	return campaigns, err
}

func (s *Scheduler) get(ctx context.Context, id string, state types.State) (types.Campaign, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	defer cancel()
	return s.opts.Store.Get(callCtx, id, state)
}

func (s *Scheduler) guarded(ctx context.Context, c types.Campaign, sum *Summary, step func(context.Context, types.Campaign, *Summary) error) {
	ok, err := s.opts.Guard.TryAcquire(ctx, c.ID)
	if err != nil {
		logger.LogError(c.ID, err)
		sum.Failed++
		return
	}
	if !ok {
		logger.Debug("Campaign %s is in flight, skipping", c.ID)
		sum.Skipped++
		return
	}
	defer func() {
		if err := s.opts.Guard.Release(ctx, c.ID); err != nil {
			logger.Warn("Failed to release claim on campaign %s: %v", c.ID, err)
		}
	}()

	// The pass listed c before claiming it; an overlapping tick may have
	// moved it since.
	current, err := s.get(ctx, c.ID, c.State)
	if errors.IsCampaignNotFound(err) {
		logger.Debug("Campaign %s already left %s, skipping", c.ID, c.State)
		sum.Skipped++
		return
	}
	if err != nil {
		logger.LogError(c.ID, err)
		sum.Failed++
		return
	}

	if err := step(ctx, current, sum); err != nil {
		logger.LogError(c.ID, err)
		sum.Failed++
	}
}

// launch announces a funded Active campaign and moves it to Started.
func (s *Scheduler) launch(ctx context.Context, c types.Campaign, sum *Summary) error {
	funded, err := s.opts.Observer.IsFunded(ctx, c)
	if err != nil {
		return err
	}
	if !funded {
		return nil
	}

	text, err := s.render(c)
	if err != nil {
		return fmt.Errorf("render announcement: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	err = s.opts.Announcer.Announce(callCtx, text)
	cancel()
	if err != nil {
		return err
	}

	if err := s.move(ctx, c, types.StateActive, types.StateStarted); err != nil {
		return err
	}
	sum.Announced++
	return nil
}

// complete pays out a Started campaign past its time limit and moves it to
// Completed.
func (s *Scheduler) complete(ctx context.Context, c types.Campaign, sum *Summary) error {
	receipt, err := s.opts.Dispatcher.Dispatch(ctx, c)
	if err != nil {
		return err
	}
	logger.Info("Campaign %s settled with receipt %s", c.ID, receipt.TxHash)

	if err := s.move(ctx, c, types.StateStarted, types.StateCompleted); err != nil {
		return err
	}
	sum.Paid++
	return nil
}

func (s *Scheduler) move(ctx context.Context, c types.Campaign, from, to types.State) error {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	defer cancel()
	if err := s.opts.Store.Move(callCtx, c.ID, from, to); err != nil {
		return err
	}

	t := types.Transition{CampaignID: c.ID, Token: c.Token, From: from, To: to, At: s.opts.Clock.Now().UTC()}
	logger.Info("Campaign %s moved %s -> %s", c.ID, from, to)
	if err := s.opts.Notifier.NotifyTransition(callCtx, t); err != nil {
		logger.Warn("Transition notification for campaign %s failed: %v", c.ID, err)
	}
	return nil
}

func (s *Scheduler) render(c types.Campaign) (string, error) {
	c.Hashtag = social.NormalizeTag(c.Hashtag)
	var buf bytes.Buffer
	if err := s.opts.AnnounceTemplate.Execute(&buf, c); err != nil {
		return "", err
	}
	return buf.String(), nil
}
