package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/katalvlaran/polycount/checkpoint"
	"github.com/katalvlaran/polycount/polycube"
	"github.com/katalvlaran/polycount/report"
	"github.com/katalvlaran/polycount/schedule"
)

// runScheduler dispatches to the single-threaded or parallel path and,
// for parallel runs, prints periodic progress lines against the
// published expected job count at the scheduler's spawn depth.
func runScheduler(ctx context.Context, sch *schedule.Scheduler, counts []int64, resumeCP *checkpoint.Checkpoint, logger *log.Logger, progressInterval time.Duration) ([]*polycube.Store, error) {
	if sch.Threads == 0 {
		halted, err := sch.RunSingleThreaded(ctx, counts)
		if err != nil {
			return nil, err
		}
		if halted != nil {
			return []*polycube.Store{halted}, nil
		}
		return nil, nil
	}

	var seed []*polycube.Store
	if resumeCP != nil {
		restored, err := checkpoint.Restore(resumeCP)
		if err != nil {
			return nil, err
		}
		seed = restored
		logger.Info("resumed from checkpoint", "unevaluated_polycubes", len(seed))
	}

	live := &schedule.LiveProgress{}
	expected, haveExpected := schedule.ExpectedJobs(sch.SpawnAt)
	if len(seed) > 0 {
		haveExpected = false // resume bypasses the delegator; the original job count no longer applies
	}

	stopProgress := make(chan struct{})
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		start := time.Now()
		for {
			select {
			case <-stopProgress:
				return
			case <-ticker.C:
				completed := atomic.LoadInt64(&live.Completed)
				dispatched := atomic.LoadInt64(&live.Dispatched)
				currentAN := atomic.LoadInt64(&live.CurrentAN)
				outstanding := dispatched - completed
				total := int64(0)
				if haveExpected {
					total = expected
				}
				fmt.Println(report.Progress(sch.SpawnAt, sch.N, completed, outstanding, total, currentAN, time.Since(start)))
			}
		}
	}()

	unevaluated, err := sch.RunParallel(ctx, counts, seed, live)
	close(stopProgress)
	<-progressDone
	return unevaluated, err
}
