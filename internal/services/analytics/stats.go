package analytics

import (
	"math"
	"sort"
	"time"

	"PriceSignal/internal/domain/models"
)

// PercentileCont is the continuous percentile (linear interpolation between closest ranks),
// matching SQL percentile_cont. p is in [0, 1]. Returns NaN for an empty input.
func PercentileCont(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	rank := p * float64(len(s)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return s[lo]
	}
	return s[lo] + (s[hi]-s[lo])*(rank-float64(lo))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// skuSeries is the windowed observations of one SKU.
type skuSeries struct {
	obs []models.Observation
}

func (s skuSeries) latest() models.Observation {
	l := s.obs[0]
	for _, o := range s.obs[1:] {
		if !o.ScrapedAt.Before(l.ScrapedAt) {
			l = o
		}
	}
	return l
}

func (s skuSeries) prices() []float64 {
	out := make([]float64, len(s.obs))
	for i, o := range s.obs {
		out[i] = o.EffectivePrice()
	}
	return out
}

// groupBySKU splits observations per SKU, ordered by SKU.
func groupBySKU(obs []models.Observation) []skuSeries {
	idx := make(map[string]int)
	var out []skuSeries
	for _, o := range obs {
		i, ok := idx[o.SKU]
		if !ok {
			i = len(out)
			idx[o.SKU] = i
			out = append(out, skuSeries{})
		}
		out[i].obs = append(out[i].obs, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].obs[0].SKU < out[j].obs[0].SKU })
	return out
}

// inWindow keeps observations with from <= scraped_at <= to.
func inWindow(obs []models.Observation, from, to time.Time) []models.Observation {
	out := make([]models.Observation, 0, len(obs))
	for _, o := range obs {
		if o.ScrapedAt.Before(from) || o.ScrapedAt.After(to) {
			continue
		}
		out = append(out, o)
	}
	return out
}
