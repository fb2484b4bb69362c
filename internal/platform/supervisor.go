package platform

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// SupervisorPolicy bounds restart behavior for supervised tasks. The
// supervisor restarts each failed task independently of its siblings.
type SupervisorPolicy struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	MaxRestarts    int
}

type RestartPolicy string

const (
	// RestartAlways restarts on any exit.
	RestartAlways RestartPolicy = "always"
	// RestartOnFailure restarts only when the task returned an error.
	RestartOnFailure RestartPolicy = "on_failure"
	// RestartNever runs the task at most once.
	RestartNever RestartPolicy = "never"
)

type TaskStatus struct {
	Name         string        `json:"name"`
	Restart      RestartPolicy `json:"restart_policy"`
	RestartCount int           `json:"restart_count"`
	LastError    string        `json:"last_error,omitempty"`
	GaveUp       bool          `json:"gave_up"`
}

func defaultSupervisorPolicy() SupervisorPolicy {
	return SupervisorPolicy{
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     200 * time.Millisecond,
		BackoffFactor:  2.0,
		MaxRestarts:    0,
	}
}

func normalizePolicy(policy SupervisorPolicy) SupervisorPolicy {
	def := defaultSupervisorPolicy()
	if policy.InitialBackoff <= 0 {
		policy.InitialBackoff = def.InitialBackoff
	}
	if policy.MaxBackoff <= 0 {
		policy.MaxBackoff = def.MaxBackoff
	}
	if policy.MaxBackoff < policy.InitialBackoff {
		policy.MaxBackoff = policy.InitialBackoff
	}
	if policy.BackoffFactor < 1 {
		policy.BackoffFactor = def.BackoffFactor
	}
	return policy
}

// Supervisor owns long-running tasks such as the auto-run loop and restarts
// them with exponential backoff when they fail.
type Supervisor struct {
	policy    SupervisorPolicy
	onRestart func(name string, err error, restarts int)

	mu     sync.Mutex
	tasks  map[string]*supervisedTask
	exited map[string]TaskStatus
}

type supervisedTask struct {
	cancel  context.CancelFunc
	done    chan struct{}
	name    string
	restart RestartPolicy

	restartCount int
	lastErr      error
	gaveUp       bool
}

func NewSupervisor(policy SupervisorPolicy) *Supervisor {
	return &Supervisor{
		policy: normalizePolicy(policy),
		tasks:  make(map[string]*supervisedTask),
		exited: make(map[string]TaskStatus),
	}
}

// OnRestart installs a restart observer. Must be called before any Start.
func (s *Supervisor) OnRestart(fn func(name string, err error, restarts int)) {
	s.onRestart = fn
}

// Start launches a named task with the given restart policy. Starting a name
// that is already running is an error.
func (s *Supervisor) Start(name string, restart RestartPolicy, run func(ctx context.Context) error) error {
	if name == "" {
		return errors.New("task name is required")
	}
	if run == nil {
		return errors.New("task runner is required")
	}
	switch restart {
	case RestartAlways, RestartOnFailure, RestartNever:
	case "":
		restart = RestartOnFailure
	default:
		return fmt.Errorf("unknown restart policy %q", restart)
	}

	s.mu.Lock()
	if _, exists := s.tasks[name]; exists {
		s.mu.Unlock()
		return fmt.Errorf("task already running: %s", name)
	}
	ctx, cancel := context.WithCancel(context.Background())
	task := &supervisedTask{
		cancel:  cancel,
		done:    make(chan struct{}),
		name:    name,
		restart: restart,
	}
	s.tasks[name] = task
	delete(s.exited, name)
	s.mu.Unlock()

	go s.runTask(ctx, task, run)
	return nil
}

func (s *Supervisor) runTask(ctx context.Context, task *supervisedTask, run func(ctx context.Context) error) {
	defer func() {
		s.mu.Lock()
		if current, ok := s.tasks[task.name]; ok && current == task {
			delete(s.tasks, task.name)
			// Keep the terminal bookkeeping so Status can report why the
			// task is gone.
			s.exited[task.name] = task.statusLocked()
		}
		s.mu.Unlock()
		close(task.done)
	}()

	backoff := s.policy.InitialBackoff
	for {
		err := run(ctx)
		if ctx.Err() != nil {
			return
		}

		switch task.restart {
		case RestartNever:
			return
		case RestartOnFailure:
			if err == nil {
				return
			}
		}

		s.mu.Lock()
		task.lastErr = err
		if s.policy.MaxRestarts > 0 && task.restartCount >= s.policy.MaxRestarts {
			task.gaveUp = true
			s.mu.Unlock()
			return
		}
		task.restartCount++
		restarts := task.restartCount
		s.mu.Unlock()

		if s.onRestart != nil {
			s.onRestart(task.name, err, restarts)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		backoff = time.Duration(float64(backoff) * s.policy.BackoffFactor)
		if backoff > s.policy.MaxBackoff {
			backoff = s.policy.MaxBackoff
		}
	}
}

// Stop cancels a task and waits for it to exit. Unknown names are a no-op.
func (s *Supervisor) Stop(name string) {
	s.mu.Lock()
	task, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return
	}
	task.cancel()
	<-task.done
}

// StopAll cancels every task and waits for all of them.
func (s *Supervisor) StopAll() {
	s.mu.Lock()
	tasks := make([]*supervisedTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task)
	}
	s.mu.Unlock()

	for _, task := range tasks {
		task.cancel()
	}
	for _, task := range tasks {
		<-task.done
	}
}

// Tasks lists the names of the currently running tasks.
func (s *Supervisor) Tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status reports a task's restart bookkeeping. Exited tasks keep their last
// recorded status until a task with the same name starts again.
func (s *Supervisor) Status(name string) (TaskStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task, ok := s.tasks[name]; ok {
		return task.statusLocked(), true
	}
	status, ok := s.exited[name]
	return status, ok
}

func (t *supervisedTask) statusLocked() TaskStatus {
	status := TaskStatus{
		Name:         t.name,
		Restart:      t.restart,
		RestartCount: t.restartCount,
		GaveUp:       t.gaveUp,
	}
	if t.lastErr != nil {
		status.LastError = t.lastErr.Error()
	}
	return status
}
