// README: Ranking pipeline: filter, compatibility scan with nearest fallback, score, top-N.
package matching

import (
	"cmp"
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"cargoshare/internal/modules/location"
	"cargoshare/internal/modules/shipment"
)

// ctxCheckEvery is how many candidates a scan goroutine handles between context checks.
const ctxCheckEvery = 256

// Rank returns up to p.N recommendations for q from pool, best first.
// When no compatible candidate lies within p.DestThresholdKm, the single
// nearest compatible one is returned flagged with ExceedsThreshold.
// No match is an empty slice, not an error. pool is never modified.
func Rank(ctx context.Context, pool []shipment.Shipment, q shipment.Shipment, table CompatibilityTable, p Params) ([]Result, error) {
	out, err := rank(ctx, pool, q, table, p)
	if err != nil {
		return nil, err
	}
	return out.results, nil
}

type ranking struct {
	results  []Result
	filtered int
	fallback bool
}

func rank(ctx context.Context, pool []shipment.Shipment, q shipment.Shipment, table CompatibilityTable, p Params) (ranking, error) {
	if err := p.Validate(); err != nil {
		return ranking{}, err
	}
	if err := ValidateQuery(q); err != nil {
		return ranking{}, err
	}
	if err := ctx.Err(); err != nil {
		return ranking{}, err
	}

	filtered := FilterCandidates(pool, q, p.TimeThresholdHours)
	out := ranking{results: []Result{}, filtered: len(filtered)}
	if len(filtered) == 0 {
		return out, nil
	}

	scan, err := scanCompatible(ctx, filtered, q, table, p)
	if err != nil {
		return ranking{}, err
	}

	picked := scan.accepted
	if len(picked) == 0 {
		if !scan.nearest.ok {
			return out, nil
		}
		c := scan.nearest.c
		c.exceedsThreshold = true
		picked = []candidate{c}
		out.fallback = true
	}

	weights := p.weights()
	results := make([]Result, len(picked))
	for i, c := range picked {
		results[i] = buildResult(q, c, p.DestThresholdKm, weights)
	}
	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(results) > p.N {
		results = results[:p.N]
	}
	out.results = results
	return out, nil
}

// nearest tracks the compatible candidate with the smallest destination distance.
// Ties keep the earlier scan index.
type nearest struct {
	c  candidate
	ok bool
}

func (n nearest) merge(o nearest) nearest {
	switch {
	case !o.ok:
		return n
	case !n.ok:
		return o
	}
	if o.c.distanceKm < n.c.distanceKm || (o.c.distanceKm == n.c.distanceKm && o.c.index < n.c.index) {
		return o
	}
	return n
}

type partial struct {
	accepted []candidate
	nearest  nearest
}

// scanCompatible shards the scan over p.Workers goroutines once the filtered
// set reaches p.ParallelMin. Accepted candidates keep scan order.
func scanCompatible(ctx context.Context, filtered []shipment.Shipment, q shipment.Shipment, table CompatibilityTable, p Params) (partial, error) {
	workers := min(p.Workers, len(filtered))
	if workers <= 1 || len(filtered) < p.ParallelMin {
		return scanRange(ctx, filtered, 0, q, table, p)
	}

	chunk := (len(filtered) + workers - 1) / workers
	parts := make([]partial, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(filtered))
		if lo >= hi {
			break
		}
		g.Go(func() error {
			part, err := scanRange(gctx, filtered[lo:hi], lo, q, table, p)
			if err != nil {
				return err
			}
			parts[w] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return partial{}, err
	}

	var merged partial
	for _, part := range parts {
		merged.accepted = append(merged.accepted, part.accepted...)
		merged.nearest = merged.nearest.merge(part.nearest)
	}
	return merged, nil
}

func scanRange(ctx context.Context, shipments []shipment.Shipment, offset int, q shipment.Shipment, table CompatibilityTable, p Params) (partial, error) {
	var part partial
	for i := range shipments {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return partial{}, err
			}
		}
		sh := &shipments[i]
		if !GoodsCompatible(q.GoodsType, sh.GoodsType, table) {
			continue
		}
		if !TempCompatible(q.Temp, sh.Temp, p.TempOverlap) {
			continue
		}
		c := candidate{shipment: sh, index: offset + i, distanceKm: location.DistanceKm(q.DestPos, sh.DestPos)}
		part.nearest = part.nearest.merge(nearest{c: c, ok: true})
		if c.distanceKm <= p.DestThresholdKm {
			part.accepted = append(part.accepted, c)
		}
	}
	return part, nil
}

func buildResult(q shipment.Shipment, c candidate, destThresholdKm float64, w Weights) Result {
	sh := c.shipment
	r := Result{
		ShipmentID:           sh.ID,
		Company:              sh.Company,
		TruckType:            sh.TruckType,
		GoodsType:            sh.GoodsType,
		Source:               sh.Source,
		Destination:          sh.Destination,
		StorageLeft:          sh.StorageLeft,
		Score:                Score(q, *sh, destThresholdKm, w),
		ScheduledDelivery:    cloneTime(sh.ScheduledDelivery),
		CarbonFootprintPerKm: cloneFloat(sh.CarbonFootprintPerKm),
	}
	r.CarbonSavings, r.CarbonSavingsPercent = EstimateCarbon(sh.CarbonFootprintPerKm)
	if sh.StorageLeft > 0 {
		r.SpaceUsagePercent = q.Units / sh.StorageLeft * 100
	}
	if c.exceedsThreshold {
		r.ExceedsThreshold = true
		r.Distance = c.distanceKm
	}
	return r
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
