// Package schedule splits the enumeration search tree at a cutoff
// depth and runs the independent sub-searches on worker goroutines,
// aggregating per-size counts and supporting halt/resume. Go has no
// global interpreter lock, so the "OS-level worker processes" the
// spec describes are realized here as goroutines: the runtime already
// schedules them across GOMAXPROCS cores without a shared lock on the
// hot path, which is exactly what a process pool was buying the
// original implementation.
package schedule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/katalvlaran/polycount/enumerate"
	"github.com/katalvlaran/polycount/polycube"
)

// knownA000162 holds the published free-polycube counts, 1-indexed
// (index 0 unused), used only to estimate outstanding work and ETA.
var knownA000162 = []int64{
	0,
	1, 1, 2, 8, 29, 166, 1023, 6922, 48311, 346543,
	2522522, 18598427, 138462649, 1039496297, 7859514470,
	59795121480, 457409613979, 3516009200564, 27144143923583,
	210375361379518, 1636229771639924, 12766882202755783,
}

// ExpectedJobs returns the known total number of size-n canonical
// polycubes, or false if n falls outside the published table.
func ExpectedJobs(n int) (int64, bool) {
	if n < 0 || n >= len(knownA000162) {
		return 0, false
	}
	return knownA000162[n], true
}

// Scheduler owns the parameters of one enumeration run.
type Scheduler struct {
	N       int
	SpawnAt int
	Threads int
	Logger  *log.Logger
}

// New returns a Scheduler. logger may be nil.
func New(n, spawnAt, threads int, logger *log.Logger) *Scheduler {
	return &Scheduler{N: n, SpawnAt: spawnAt, Threads: threads, Logger: logger}
}

// RunSingleThreaded enumerates everything in the calling goroutine.
// If ctx is cancelled mid-run, it returns the unevaluated polycube
// that was in progress and a nil error (a clean halt).
func (sch *Scheduler) RunSingleThreaded(ctx context.Context, counts []int64) (*polycube.Store, error) {
	var halted *polycube.Store
	root := polycube.NewSingleton()
	err := enumerate.Extend(root, sch.N, counts, &enumerate.Options{
		Ctx:    ctx,
		OnHalt: func(cur *polycube.Store) { halted = cur },
	})
	if errors.Is(err, enumerate.ErrHalted) {
		return halted, nil
	}
	return nil, err
}

// jobResult is what a worker goroutine reports back through the
// response queue: exactly one per job, whether it finished or halted.
type jobResult struct {
	counts      []int64
	unevaluated *polycube.Store
	err         error
}

// LiveProgress exposes a running parallel run's state to a reporting
// goroutine without that goroutine touching counts directly (which
// RunParallel's own aggregation loop mutates concurrently). All fields
// are updated with atomic operations and should only be read with
// atomic.LoadInt64.
type LiveProgress struct {
	// Dispatched is the number of jobs ever pushed onto the submit queue.
	Dispatched int64
	// Completed is the number of jobs (success or error) drained from
	// the response queue so far.
	Completed int64
	// CurrentAN is the running total of counts at the target size N,
	// the best-known a(N) while the run is still in flight.
	CurrentAN int64
}

// RunParallel runs the delegator (unless seed is non-empty, meaning a
// resume) plus sch.Threads-1 workers, aggregating into counts. It
// returns the set of unevaluated polycubes if halted mid-run: these
// are pushed directly onto the submit queue on the next resume,
// skipping the delegator entirely, per the halt/resume design.
//
// live, if non-nil, is kept up to date as the run progresses so a
// caller can poll it from another goroutine to print progress lines.
func (sch *Scheduler) RunParallel(ctx context.Context, counts []int64, seed []*polycube.Store, live *LiveProgress) ([]*polycube.Store, error) {
	if live == nil {
		live = &LiveProgress{}
	}

	submit := make(chan *polycube.Store, 4096)
	response := make(chan jobResult, 4096)
	var closeSubmitOnce sync.Once

	atomic.AddInt64(&live.Dispatched, int64(len(seed)))
	for _, job := range seed {
		submit <- job
	}

	var delegatorCounts []int64
	var delegatorHalted *polycube.Store
	var delegatorErr error
	delegatorDone := make(chan struct{})
	if len(seed) == 0 {
		go sch.delegate(ctx, submit, &live.Dispatched, &delegatorCounts, &delegatorHalted, &delegatorErr, delegatorDone)
	} else {
		close(delegatorDone)
	}

	workerCount := sch.Threads - 1
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go sch.worker(ctx, submit, response, &wg)
	}
	go func() {
		wg.Wait()
		close(response)
	}()

	var unevaluated []*polycube.Store
	var firstErr error
	delegatorFinished := len(seed) > 0
	n := len(counts) - 1

	for response != nil || delegatorDone != nil {
		select {
		case <-delegatorDone:
			delegatorDone = nil
			delegatorFinished = true
			if delegatorErr != nil && firstErr == nil {
				firstErr = delegatorErr
			}
			if delegatorCounts != nil {
				for i := range counts {
					counts[i] += delegatorCounts[i]
				}
				atomic.StoreInt64(&live.CurrentAN, counts[n])
			}
			if delegatorHalted != nil {
				unevaluated = append(unevaluated, delegatorHalted)
			}
		case res, ok := <-response:
			if !ok {
				response = nil
				continue
			}
			// Every drained response, success or error, advances the
			// completed count: an error must still let dispatched ==
			// completed become true so the run can terminate instead
			// of blocking forever on further responses that will
			// never arrive once no job can make that ratio hold.
			atomic.AddInt64(&live.Completed, 1)
			if res.err != nil {
				if firstErr == nil {
					firstErr = res.err
				}
				// Stop dispatching new jobs the moment a worker
				// reports an uncaught error, per the error-handling
				// policy: don't wait for the dispatched/completed
				// ratio to naturally reach parity.
				closeSubmitOnce.Do(func() { close(submit) })
				continue
			}
			for i := range counts {
				counts[i] += res.counts[i]
			}
			atomic.StoreInt64(&live.CurrentAN, counts[n])
			if res.unevaluated != nil {
				unevaluated = append(unevaluated, res.unevaluated)
			}
		}
		if delegatorFinished && atomic.LoadInt64(&live.Dispatched) == atomic.LoadInt64(&live.Completed) {
			closeSubmitOnce.Do(func() { close(submit) })
		}
	}

	// Jobs still queued when a halt stopped the workers were never
	// started; they go back with the rest of the unevaluated work.
	closeSubmitOnce.Do(func() { close(submit) })
	for job := range submit {
		unevaluated = append(unevaluated, job)
	}

	return unevaluated, firstErr
}

func (sch *Scheduler) delegate(ctx context.Context, submit chan<- *polycube.Store, dispatched *int64, outCounts *[]int64, outHalted **polycube.Store, outErr *error, done chan<- struct{}) {
	defer close(done)
	delegatorCounts := make([]int64, sch.N+1)
	root := polycube.NewSingleton()
	err := enumerate.Extend(root, sch.N, delegatorCounts, &enumerate.Options{
		Ctx:     ctx,
		SpawnAt: sch.SpawnAt,
		OnSpawn: func(child *polycube.Store) {
			atomic.AddInt64(dispatched, 1)
			select {
			case submit <- child:
			case <-ctx.Done():
			}
		},
		OnHalt: func(cur *polycube.Store) { *outHalted = cur },
	})
	*outCounts = delegatorCounts
	if err != nil && !errors.Is(err, enumerate.ErrHalted) {
		*outErr = err
	}
}

func (sch *Scheduler) worker(ctx context.Context, submit <-chan *polycube.Store, response chan<- jobResult, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-submit:
			if !ok {
				return
			}
			localCounts := make([]int64, sch.N+1)
			err := enumerate.Extend(job, sch.N, localCounts, &enumerate.Options{Ctx: ctx})
			if errors.Is(err, enumerate.ErrHalted) {
				// Extend restores job to its entry state while unwinding,
				// so the whole input job goes back unevaluated and its
				// partial counts are dropped.
				response <- jobResult{counts: make([]int64, sch.N+1), unevaluated: job}
				continue
			}
			if err != nil {
				if sch.Logger != nil {
					sch.Logger.Error("worker failed", "err", err)
				}
				response <- jobResult{err: err}
				return
			}
			response <- jobResult{counts: localCounts}
		case <-time.After(time.Second):
			// idle tick: loop back around to re-check ctx/submit
		}
	}
}
