package dusage

import (
	"context"
	"time"

	"github.com/idelchi/dusage/internal/logging"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// startProgressReporter periodically invokes hook with the running entry
// count and accumulated bytes until ctx is done.
func startProgressReporter(ctx context.Context, acc *accumulator, hook func(entries, bytes int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				entries, kb := acc.snapshot()
				hook(entries, kb*1024)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Run accounts the tree described by opt, passing one Record per
// reported entry to emit, and returns the run summary.
//
// In the default mode the tree is walked depth-first on a single
// goroutine and records stream in post-order: a directory's record
// follows all of its descendants'. In summarize mode only the root
// record is emitted and the walk runs on fastwalk's worker pool.
//
// The first error aborts the traversal and is returned as is; records
// already emitted stand. Progress updates go to progressHook when it is
// non-nil.
func Run(ctx context.Context, opt Options, emit func(Record), progressHook func(entries, bytes int64)) (*Report, error) {
	if opt.Path == "" {
		opt.Path = "."
	}

	if emit == nil {
		emit = func(Record) {}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := logging.New(opt.Debug)
	acc := &accumulator{}

	startProgressReporter(ctx, acc, progressHook, opt.ProgressInterval)

	log.Debugf("accounting %s (all=%t summarize=%t max-depth=%d)", opt.Path, opt.All, opt.Summarize, opt.MaxDepth)

	engine := &walker{
		opt:  opt,
		reg:  newRegistry(defaultRegistryCapacity),
		acc:  acc,
		emit: emit,
		log:  log,
	}

	start := time.Now()

	var (
		total int64
		err   error
	)

	if opt.Summarize {
		total, err = engine.summarize(ctx)
	} else {
		total, err = engine.walk(ctx, opt.Path, 0)
	}

	if err != nil {
		return nil, err
	}

	entries, _ := acc.snapshot()

	log.Debugf("accounted %d entries, %d KB", entries, total)

	return &Report{
		TotalKB: total,
		Entries: entries,
		Elapsed: time.Since(start),
	}, nil
}
