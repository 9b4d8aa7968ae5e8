package bom

import (
	"context"
	"fmt"
	"time"

	"github.com/mearah/craftbom/internal/domain"
	"github.com/mearah/craftbom/internal/logger"
	"github.com/mearah/craftbom/internal/metrics"
)

// Request is one entry of a batch resolution. Name takes precedence when
// set; otherwise the item is addressed by ID.
type Request struct {
	Kind     domain.Kind `json:"kind"`
	ID       int         `json:"id,omitempty"`
	Name     string      `json:"name,omitempty"`
	Quantity int         `json:"quantity"`
}

func (r Request) label() string {
	if r.Name != "" {
		return fmt.Sprintf("%s %q", r.Kind, r.Name)
	}
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// ResolveBatch resolves every request and merges the totals per base
// material. Semantics are all-or-nothing: the first failing request aborts
// the batch and the error names it, since a partial requirement set would
// mislead a crafting plan.
func (s *service) ResolveBatch(ctx context.Context, requests []Request) (*Totals, error) {
	log := logger.FromContext(ctx)
	log.Debug(LogMsgResolveBatchCalled, "requests", len(requests))

	start := time.Now()
	combined := newTotals()
	for i, req := range requests {
		var totals *Totals
		var err error
		if req.Name != "" {
			totals, err = s.ResolveByName(ctx, req.Kind, req.Name, req.Quantity)
		} else {
			totals, err = s.Resolve(ctx, req.Kind, req.ID, req.Quantity)
		}
		if err != nil {
			return nil, fmt.Errorf("batch request %d (%s): %w", i, req.label(), err)
		}
		combined.Merge(totals)
	}

	metrics.BatchSize.Observe(float64(len(requests)))
	metrics.ResolutionDuration.Observe(time.Since(start).Seconds())
	return combined, nil
}
