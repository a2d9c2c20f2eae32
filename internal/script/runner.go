package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/osk/internal/logging"
	"github.com/dshills/osk/internal/loop"
)

// Host applies script commands. It is only called on the event loop.
type Host interface {
	TypeText(text string)
	PressKeyName(name string) error
}

// Result describes a finished run.
type Result struct {
	ID       uuid.UUID
	Name     string
	Commands []Command
	Err      error
	Elapsed  time.Duration
}

type job struct {
	id   uuid.UUID
	name string
	path string
}

// Runner executes scripts one at a time on its own goroutine and hands
// the results to the event loop.
type Runner struct {
	dir     string
	sched   loop.Scheduler
	host    Host
	log     *logging.Logger
	timeout time.Duration

	queue     chan job
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once

	// OnResult, if set, runs on the event loop after the commands of a run
	// were applied.
	OnResult func(Result)
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithQueueSize sets how many runs may be pending.
func WithQueueSize(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.queue = make(chan job, n)
		}
	}
}

// NewRunner creates a runner for the scripts in dir. Call Start before
// running scripts.
func NewRunner(dir string, sched loop.Scheduler, host Host, log *logging.Logger, opts ...Option) *Runner {
	r := &Runner{
		dir:     dir,
		sched:   sched,
		host:    host,
		log:     logging.OrDefault(log).WithComponent("script"),
		timeout: DefaultTimeout,
		queue:   make(chan job, 16),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the scripts directory.
func (r *Runner) Dir() string {
	return r.dir
}

// Start launches the worker goroutine. It exits when ctx is done or the
// runner is closed.
func (r *Runner) Start(ctx context.Context) {
	go r.work(ctx)
}

// Resolve maps a script name to a file in the scripts directory. The
// ".lua" extension is optional.
func (r *Runner) Resolve(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", ErrInvalidName
	}
	candidates := []string{name}
	if filepath.Ext(name) != ".lua" {
		candidates = []string{name + ".lua", name}
	}
	for _, c := range candidates {
		p := filepath.Join(r.dir, c)
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", ErrScriptNotFound
}

// Run queues the named script and returns the id of the run.
func (r *Runner) Run(name string) (uuid.UUID, error) {
	if r.closed.Load() {
		return uuid.Nil, ErrRunnerClosed
	}
	path, err := r.Resolve(name)
	if err != nil {
		return uuid.Nil, err
	}
	j := job{id: uuid.New(), name: name, path: path}
	select {
	case <-r.done:
		return uuid.Nil, ErrRunnerClosed
	case r.queue <- j:
		r.log.Debug("script queued", "name", name, "run", j.id)
		return j.id, nil
	default:
		return uuid.Nil, ErrQueueFull
	}
}

// Execute runs a script file on the calling goroutine.
func (r *Runner) Execute(ctx context.Context, path string) ([]Command, error) {
	s := newState(r.log)
	defer s.close()
	return s.doFile(ctx, path, r.timeout)
}

func (r *Runner) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case j := <-r.queue:
			start := time.Now()
			cmds, err := r.Execute(ctx, j.path)
			res := Result{ID: j.id, Name: j.name, Commands: cmds, Err: err, Elapsed: time.Since(start)}
			r.sched.Post(func() { r.apply(res) })
		}
	}
}

// apply runs on the event loop.
func (r *Runner) apply(res Result) {
	log := r.log.WithField("run", res.ID.String()).WithField("name", res.Name)
	if res.Err != nil {
		if errors.Is(res.Err, ErrTimeout) {
			log.Warn("script timed out", "timeout", r.timeout)
		} else {
			log.Error("script failed", "error", res.Err)
		}
	}
	// Commands recorded before a failure are still applied.
	for _, c := range res.Commands {
		switch c.Kind {
		case CommandType:
			r.host.TypeText(c.Text)
		case CommandKey:
			if err := r.host.PressKeyName(c.Text); err != nil {
				log.Warn("script key failed", "key", c.Text, "error", err)
			}
		}
	}
	log.Debug("script finished", "commands", len(res.Commands), "elapsed", res.Elapsed)
	if r.OnResult != nil {
		r.OnResult(res)
	}
}

// Close stops the worker. Pending runs are dropped.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		close(r.done)
	})
}
