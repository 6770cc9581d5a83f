package shader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/cenkalti/backoff/v4"
)

// Loader reads program sources from disk. Stage files are read in parallel on a
// reusable worker pool, and reads that find an empty file are retried with
// exponential backoff since editors often truncate before writing.
type Loader interface {
	// Load reads every stage of one program.
	//
	// Parameters:
	//   - ctx: cancels pending retries
	//   - paths: the stage files (geometry optional)
	//
	// Returns:
	//   - Source: the stage texts
	//   - error: the first stage failure, wrapping ErrShaderNotFound or ErrEmptySource
	Load(ctx context.Context, paths Paths) (Source, error)

	// LoadAll reads several programs at once.
	//
	// Parameters:
	//   - ctx: cancels pending retries
	//   - programs: stage files keyed by program name
	//
	// Returns:
	//   - map[string]Source: sources keyed by program name
	//   - error: the joined failures of every program that could not be read
	LoadAll(ctx context.Context, programs map[string]Paths) (map[string]Source, error)
}

type loaderImpl struct {
	workers        int
	retries        uint64
	initialBackoff time.Duration
	readFile       func(string) ([]byte, error)
	logger         common.Logger

	pool   worker.DynamicWorkerPool
	taskID int
	mu     sync.Mutex
}

var _ Loader = &loaderImpl{}

// NewLoader creates a Loader with one worker per CPU (at least two), three retries
// and a 10ms initial backoff.
//
// Parameters:
//   - options: functional options to configure the loader
//
// Returns:
//   - Loader: the loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loaderImpl{
		workers:        max(runtime.NumCPU(), 2),
		retries:        3,
		initialBackoff: 10 * time.Millisecond,
		readFile:       os.ReadFile,
		logger:         common.NewNopLogger(),
	}
	for _, opt := range options {
		opt(l)
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

func (l *loaderImpl) Load(ctx context.Context, paths Paths) (Source, error) {
	all, err := l.LoadAll(ctx, map[string]Paths{"": paths})
	if err != nil {
		return Source{Paths: paths}, err
	}
	return all[""], nil
}

type stageResult struct {
	program string
	stage   Stage
	text    string
	err     error
}

func (l *loaderImpl) LoadAll(ctx context.Context, programs map[string]Paths) (map[string]Source, error) {
	var errs []error
	for name, p := range programs {
		if err := p.Validate(); err != nil {
			errs = append(errs, programError(name, err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	var (
		wg      sync.WaitGroup
		resMu   sync.Mutex
		results []stageResult
	)
	for name, p := range programs {
		for _, st := range Stages {
			path := p.Path(st)
			if path == "" {
				continue
			}
			wg.Add(1)
			l.submit(func() (any, error) {
				defer wg.Done()
				text, err := l.readStage(ctx, path)
				resMu.Lock()
				results = append(results, stageResult{program: name, stage: st, text: text, err: err})
				resMu.Unlock()
				return nil, err
			})
		}
	}
	wg.Wait()

	out := make(map[string]Source, len(programs))
	for name, p := range programs {
		out[name] = Source{Paths: p}
	}
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, programError(r.program, fmt.Errorf("%s stage: %w", r.stage, r.err)))
			continue
		}
		src := out[r.program]
		src.set(r.stage, r.text)
		out[r.program] = src
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// submit hands a task to the worker pool with a unique id.
func (l *loaderImpl) submit(do func() (any, error)) {
	l.mu.Lock()
	id := l.taskID
	l.taskID++
	l.mu.Unlock()
	l.pool.SubmitTask(worker.Task{ID: id, Do: do})
}

// readStage reads one file, retrying while it is empty or transiently unreadable.
func (l *loaderImpl) readStage(ctx context.Context, path string) (string, error) {
	var text string
	op := func() error {
		data, err := l.readFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrShaderNotFound, path))
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if len(data) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptySource, path)
		}
		text = string(data)
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.initialBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(b, l.retries), ctx)

	notify := func(err error, next time.Duration) {
		l.logger.Debugf("retrying %s in %s: %v", path, next, err)
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return "", err
	}
	return text, nil
}

func programError(name string, err error) error {
	if name == "" {
		return err
	}
	return fmt.Errorf("program %s: %w", name, err)
}
