// README: Hard-constraint candidate filter: capacity, identity and posting-time window.
package matching

import (
	"math"
	"time"

	"cargoshare/internal/modules/shipment"
)

// FilterCandidates keeps pool entries with room for q, other than q itself,
// posted within timeThresholdHours of q. Scan order is preserved.
func FilterCandidates(pool []shipment.Shipment, q shipment.Shipment, timeThresholdHours float64) []shipment.Shipment {
	out := make([]shipment.Shipment, 0, len(pool)/4)
	for i := range pool {
		c := &pool[i]
		if c.StorageLeft < q.Units {
			continue
		}
		if q.ID != "" && c.ID == q.ID {
			continue
		}
		if hoursApart(c.Timestamp, q.Timestamp) > timeThresholdHours {
			continue
		}
		out = append(out, *c)
	}
	return out
}

func hoursApart(a, b time.Time) float64 {
	return math.Abs(a.Sub(b).Hours())
}
