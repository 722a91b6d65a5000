package plugin

import (
	"context"
	"sync"

	"github.com/ayusman/signcam/internal/log"
)

// DefaultQueueSize bounds the number of pending plugin requests.
const DefaultQueueSize = 16

// Dispatcher runs plugins for recognized signs on its own goroutine so a
// slow plugin never stalls frame processing. Requests that arrive while the
// queue is full are dropped.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	queue    chan Request

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewDispatcher starts a dispatcher with a queue of queueSize requests.
func NewDispatcher(manager *Manager, executor *Executor, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		manager:  manager,
		executor: executor,
		queue:    make(chan Request, queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	d.wg.Add(1)
	go d.run()
	return d
}

// Dispatch enqueues req without blocking. It returns false if the request
// was dropped.
func (d *Dispatcher) Dispatch(req Request) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}

	select {
	case d.queue <- req:
		return true
	default:
		d.dropped++
		log.Warn("plugin queue full, dropping event", "action", req.Action, "label", req.Label)
		return false
	}
}

// Dropped returns the number of requests dropped because the queue was full.
func (d *Dispatcher) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Close stops accepting requests, lets queued ones finish and waits for the
// worker goroutine. Running plugins are cancelled if ctx expires first.
func (d *Dispatcher) Close(ctx context.Context) {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		d.cancel()
		<-done
	}
	d.cancel()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for req := range d.queue {
		for _, p := range d.manager.Subscribers(req.Action) {
			if d.ctx.Err() != nil {
				return
			}
			resp, err := d.executor.Execute(d.ctx, p, req)
			switch {
			case err != nil:
				log.Warn("plugin failed", "plugin", p.Manifest.Name, "err", err)
			case !resp.Success:
				log.Warn("plugin reported failure", "plugin", p.Manifest.Name, "error", resp.Error)
			default:
				log.Debug("plugin ran", "plugin", p.Manifest.Name, "label", req.Label)
			}
		}
	}
}
