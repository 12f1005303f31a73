package publishers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Fanout delivers each event to all of its publishers concurrently.
// A nil *Fanout publishes nothing.
type Fanout struct {
	pubs []Publisher
	log  Logger
}

func NewFanout(pubs []Publisher, log Logger) *Fanout {
	f := &Fanout{log: orNop(log)}
	for _, p := range pubs {
		if p != nil {
			f.pubs = append(f.pubs, p)
		}
	}
	return f
}

// Publish waits for every publisher and reports how many accepted the event.
// Individual failures are joined into the returned error.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f.Size() == 0 {
		return 0, nil
	}

	errs := make([]error, len(f.pubs))
	var wg sync.WaitGroup
	for i, p := range f.pubs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.Publish(ctx, evt); err != nil {
				errs[i] = fmt.Errorf("%s publisher %q: %w", p.Type(), p.ID(), err)
			}
		}()
	}
	wg.Wait()

	delivered := 0
	for _, err := range errs {
		if err == nil {
			delivered++
		}
	}
	return delivered, errors.Join(errs...)
}

func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.pubs)
}

// Describe lists id and type of each publisher, for startup logs.
func (f *Fanout) Describe() []map[string]string {
	if f == nil {
		return nil
	}
	out := make([]map[string]string, 0, len(f.pubs))
	for _, p := range f.pubs {
		out = append(out, map[string]string{"id": p.ID(), "type": p.Type()})
	}
	return out
}

// Close releases publishers that hold connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, p := range f.pubs {
		c, ok := p.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			f.log.WarnObj("publisher close failed", "publisher_close_error", map[string]any{
				"publisher_id": p.ID(),
				"error":        err.Error(),
			})
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
