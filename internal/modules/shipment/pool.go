// README: In-memory shipment pool publishing immutable snapshots.
package shipment

import (
	"context"
	"sync"

	"cargoshare/internal/types"
)

// Pool holds the current shipment snapshot. Published slices are never
// written again; every change publishes a fresh slice.
type Pool struct {
	mu        sync.RWMutex
	shipments []Shipment
	byID      map[types.ID]int
}

func NewPool() *Pool {
	return &Pool{byID: make(map[types.ID]int)}
}

// Snapshot returns the current pool. Callers must treat it as read-only.
func (p *Pool) Snapshot() []Shipment {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.shipments
}

func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.shipments)
}

func (p *Pool) Get(ctx context.Context, id types.ID) (Shipment, error) {
	select {
	case <-ctx.Done():
		return Shipment{}, ctx.Err()
	default:
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	i, ok := p.byID[id]
	if !ok {
		return Shipment{}, ErrNotFound
	}
	return p.shipments[i], nil
}

// Replace publishes shipments as the new snapshot. The slice is copied.
func (p *Pool) Replace(shipments []Shipment) {
	next := make([]Shipment, len(shipments))
	copy(next, shipments)
	byID := make(map[types.ID]int, len(next))
	for i, s := range next {
		byID[s.ID] = i
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shipments = next
	p.byID = byID
}

// Add publishes a snapshot with s appended, or with s replacing an entry of the same ID.
func (p *Pool) Add(s Shipment) {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := make([]Shipment, len(p.shipments), len(p.shipments)+1)
	copy(next, p.shipments)
	if i, ok := p.byID[s.ID]; ok {
		next[i] = s
		p.shipments = next
		return
	}
	byID := make(map[types.ID]int, len(p.byID)+1)
	for id, i := range p.byID {
		byID[id] = i
	}
	byID[s.ID] = len(next)
	p.shipments = append(next, s)
	p.byID = byID
}
