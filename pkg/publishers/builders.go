package publishers

import (
	"context"
	"fmt"
)

// Builder constructs a Publisher from a validated Config.
type Builder func(ctx context.Context, cfg Config, log Logger) (Publisher, error)

// Builders maps a publisher type to its Builder.
type Builders map[string]Builder

// DefaultBuilders knows every type accepted by LoadFile.
func DefaultBuilders() Builders {
	return Builders{
		TypeHTTP:   newHTTPPublisher,
		TypeSQS:    newSQSPublisher,
		TypeSNS:    newSNSPublisher,
		TypePubSub: newPubSubPublisher,
	}
}

func (b Builders) Build(ctx context.Context, cfg Config, log Logger) (Publisher, error) {
	build, ok := b[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("no builder for publisher type %q", cfg.Type)
	}
	return build(ctx, cfg, orNop(log))
}

// BuildFanout builds every config into one Fanout. On failure the publishers
// already built are closed.
func (b Builders) BuildFanout(ctx context.Context, cfgs []Config, log Logger) (*Fanout, error) {
	pubs := make([]Publisher, 0, len(cfgs))
	for _, cfg := range cfgs {
		p, err := b.Build(ctx, cfg, log)
		if err != nil {
			_ = NewFanout(pubs, log).Close()
			return nil, fmt.Errorf("build publisher %q: %w", cfg.ID, err)
		}
		pubs = append(pubs, p)
	}
	return NewFanout(pubs, log), nil
}
