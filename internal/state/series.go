package state

import (
	"time"

	"github.com/anishesg/a-rusty-kalshi-bot/internal/domain/models"
)

// Series folds per-model P&L samples into a bounded, chronologically ordered
// buffer and renders gap-filled, downsampled chart rows from it.
type Series struct {
	points   *Ring[models.TimeSeriesPoint]
	roster   []string
	chartCap int
}

// NewSeries creates a series buffer. capacity bounds raw samples; chartCap
// bounds rendered rows. roster fixes the chart's column set and order.
func NewSeries(capacity, chartCap int, roster []string) *Series {
	if chartCap <= 0 {
		chartCap = 300
	}
	return &Series{
		points:   NewRing[models.TimeSeriesPoint](capacity),
		roster:   append([]string(nil), roster...),
		chartCap: chartCap,
	}
}

// Append records one sample. Oldest samples are evicted past capacity.
func (s *Series) Append(p models.TimeSeriesPoint) {
	s.points.Append(p)
}

// Len returns the number of buffered samples.
func (s *Series) Len() int { return s.points.Len() }

// PointsFor returns up to limit most recent samples for one model, in
// chronological order.
func (s *Series) PointsFor(model string, limit int) []models.TimeSeriesPoint {
	all := s.points.All()
	out := make([]models.TimeSeriesPoint, 0, limit)
	for _, p := range all {
		if p.Model == model {
			out = append(out, p)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Chart renders the buffered samples: one row per distinct second, one
// column per roster model, forward-filled and downsampled to at most
// chartCap rows.
//
// Forward fill carries the most recent non-zero value into buckets where a
// model produced nothing. Zero doubles as "no data yet", so a genuine zero
// P&L is indistinguishable from unset; known limitation of the wire format.
func (s *Series) Chart() []models.ChartRow {
	all := s.points.All()
	if len(all) == 0 {
		return []models.ChartRow{}
	}

	// Group by whole second, preserving first-seen order. Within a bucket
	// the last sample per model wins.
	type bucket struct {
		at     time.Time
		latest map[string]float64
	}
	var order []int64
	buckets := make(map[int64]*bucket)
	for _, p := range all {
		sec := p.Time.Truncate(time.Second)
		key := sec.Unix()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{at: sec, latest: make(map[string]float64, len(s.roster))}
			buckets[key] = b
			order = append(order, key)
		}
		b.latest[p.Model] = p.Pnl
	}

	rows := make([]models.ChartRow, 0, len(order))
	carry := make(map[string]float64, len(s.roster))
	for _, key := range order {
		b := buckets[key]
		row := models.ChartRow{Time: b.at, Values: make(map[string]float64, len(s.roster))}
		for _, m := range s.roster {
			v, ok := b.latest[m]
			if !ok || v == 0 {
				v = carry[m]
			} else {
				carry[m] = v
			}
			row.Values[m] = v
		}
		rows = append(rows, row)
	}

	return downsample(rows, s.chartCap)
}

// downsample keeps every stride-th row by position, stride = ceil(n/cap).
// Order is preserved; exact endpoint retention is not guaranteed.
func downsample(rows []models.ChartRow, maxRows int) []models.ChartRow {
	if len(rows) <= maxRows {
		return rows
	}
	stride := (len(rows) + maxRows - 1) / maxRows
	out := make([]models.ChartRow, 0, maxRows)
	for i := 0; i < len(rows); i += stride {
		out = append(out, rows[i])
	}
	return out
}
