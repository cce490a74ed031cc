package favourites

import (
	"log/slog"

	"github.com/sourcegraph/conc"

	"github.com/mmcdole/wubba/internal/domain"
)

const persistQueueSize = 32

type persistRequest struct {
	data []byte        // nil for a flush barrier
	done chan struct{} // closed once the request is handled
}

// persister performs durable writes on a single background goroutine,
// in the order they were queued. Write failures are logged and dropped.
type persister struct {
	kv     domain.KVStore
	key    string
	logger *slog.Logger
	reqs   chan persistRequest
	wg     conc.WaitGroup
	closed bool
}

func newPersister(kv domain.KVStore, key string, logger *slog.Logger) *persister {
	p := &persister{
		kv:     kv,
		key:    key,
		logger: logger,
		reqs:   make(chan persistRequest, persistQueueSize),
	}
	p.wg.Go(p.run)
	return p
}

func (p *persister) run() {
	for req := range p.reqs {
		if req.data != nil {
			if err := p.kv.Write(p.key, req.data); err != nil {
				p.logger.Error("failed to persist favourites", "error", err)
			}
		}
		if req.done != nil {
			close(req.done)
		}
	}
}

func (p *persister) enqueue(data []byte) {
	if p.closed {
		// Writer is gone; persist inline rather than lose the change.
		if err := p.kv.Write(p.key, data); err != nil {
			p.logger.Error("failed to persist favourites", "error", err)
		}
		return
	}
	p.reqs <- persistRequest{data: data}
}

func (p *persister) flush() {
	if p.closed {
		return
	}
	done := make(chan struct{})
	p.reqs <- persistRequest{done: done}
	<-done
}

func (p *persister) close() {
	if p.closed {
		return
	}
	p.closed = true
	close(p.reqs)
	p.wg.Wait()
}
