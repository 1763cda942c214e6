package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"event-sync/core/mapping"
	"event-sync/core/reconcile"
	"event-sync/core/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Runner performs one synchronization pass.
type Runner interface {
	Run(ctx context.Context, opts Options) (*reconcile.Summary, error)
}

// MappingReader lists stored mappings for inspection.
type MappingReader interface {
	Entries(ctx context.Context, kind reconcile.Kind) ([]mapping.Mapping, error)
}

// RunReport is the outcome of a finished run.
type RunReport struct {
	Summary *reconcile.Summary `json:"summary"`
	Error   string             `json:"error,omitempty"`
}

// Service serializes runs and keeps the last report.
type Service struct {
	runner   Runner
	mappings MappingReader
	client   storage.Client
	bucket   string
	prefix   string
	logger   *zap.Logger

	group   singleflight.Group
	running sync.WaitGroup
	mu      sync.RWMutex
	last    *RunReport
}

// NewService creates a new events service. client may be nil, in which case
// run reports are not archived.
func NewService(runner Runner, mappings MappingReader, client storage.Client, bucket string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		runner:   runner,
		mappings: mappings,
		client:   client,
		bucket:   bucket,
		prefix:   "reports",
		logger:   logger,
	}
}

// Sync runs one pass. Calls arriving while a pass is in flight wait for it
// and share its report instead of starting another one. The pass outlives
// the caller's context so an aborted request never leaves it half done.
func (s *Service) Sync(ctx context.Context, opts Options) (*RunReport, error) {
	// Registered before the pass starts so Wait never misses it.
	s.running.Add(1)
	ch := s.group.DoChan("sync", func() (any, error) {
		return s.run(context.WithoutCancel(ctx), opts), nil
	})

	result := make(chan singleflight.Result, 1)
	go func() {
		defer s.running.Done()
		result <- <-ch
	}()

	select {
	case res := <-result:
		if res.Shared {
			s.logger.Debug("Joined in-flight run")
		}
		return res.Val.(*RunReport), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) run(ctx context.Context, opts Options) *RunReport {
	summary, err := s.runner.Run(ctx, opts)
	report := &RunReport{Summary: summary}
	if err != nil {
		s.logger.Error("Run failed", zap.Error(err))
		report.Error = err.Error()
	}

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	s.archive(ctx, report)
	return report
}

// archive uploads the report to object storage. Failures are only logged.
func (s *Service) archive(ctx context.Context, report *RunReport) {
	if s.client == nil || report.Summary == nil {
		return
	}
	stamp := report.Summary.StartedAt.UTC().Format("20060102T150405Z")
	object := fmt.Sprintf("%s/%s_%s.json", s.prefix, stamp, report.Summary.RunID)
	if err := storage.PutJSON(ctx, s.client, s.bucket, object, report); err != nil {
		s.logger.Warn("Failed to archive run report", zap.String("object", object), zap.Error(err))
		return
	}
	s.logger.Debug("Archived run report", zap.String("object", object))
}

// Wait blocks until no run is in flight or ctx expires.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.running.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastReport returns the report of the most recent run, nil before the first.
func (s *Service) LastReport() *RunReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Mappings returns the stored mappings of a kind.
func (s *Service) Mappings(ctx context.Context, kind reconcile.Kind) ([]mapping.Mapping, error) {
	if !isKind(kind) {
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	return s.mappings.Entries(ctx, kind)
}

// ScheduledJob adapts Sync to a scheduler job.
func (s *Service) ScheduledJob(opts Options) func(ctx context.Context) {
	return func(ctx context.Context) {
		started := time.Now()
		report, err := s.Sync(ctx, opts)
		if err != nil {
			s.logger.Warn("Scheduled run interrupted", zap.Error(err))
			return
		}
		if report.Error == "" {
			s.logger.Info("Scheduled run completed", zap.Bool("full", opts.Full), zap.Duration("elapsed", time.Since(started)))
		}
	}
}

func isKind(kind reconcile.Kind) bool {
	for _, k := range reconcile.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}
