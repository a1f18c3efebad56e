package metrics

import (
	"go.trai.ch/zerr"
)

// Stats is a point-in-time summary of the collector's counters, summed over
// every resource.
type Stats struct {
	Hits        float64
	StaleServed float64
	Misses      float64
	Expirations float64
	Evictions   float64
	Fetches     float64
	FetchErrors float64
	Retries     float64
	Discarded   float64
}

// HitRatio is the share of reads answered from the cache, stale reads included.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.StaleServed + s.Misses
	if total == 0 {
		return 0
	}
	return (s.Hits + s.StaleServed) / total
}

// Stats gathers the registry and sums each counter.
func (c *Collector) Stats() (Stats, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return Stats{}, zerr.Wrap(err, "failed to gather metrics")
	}

	var s Stats
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			value := m.GetCounter().GetValue()
			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}

			switch mf.GetName() {
			case Namespace + "_cache_lookups_total":
				switch labels["result"] {
				case ResultHit:
					s.Hits += value
				case ResultStale:
					s.StaleServed += value
				case ResultMiss:
					s.Misses += value
				}
			case Namespace + "_cache_expirations_total":
				s.Expirations += value
			case Namespace + "_cache_evictions_total":
				s.Evictions += value
			case Namespace + "_fetches_total":
				s.Fetches += value
				if labels["outcome"] == OutcomeError {
					s.FetchErrors += value
				}
			case Namespace + "_fetch_retries_total":
				s.Retries += value
			case Namespace + "_fetch_results_discarded_total":
				s.Discarded += value
			}
		}
	}
	return s, nil
}
