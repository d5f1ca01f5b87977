// Package chart implements multi-resolution OHLCV candle series with a
// cached 24-hour reference index, grounded on the original engine's
// chart.rs VecDeque-backed implementation.
package chart

import (
	"errors"
	"math"
	"sort"
)

// ErrChronologyViolation is returned by Append when the computed candle
// bucket is older than the chart's last candle.
var ErrChronologyViolation = errors.New("chart: chronology violation")

// ErrNaN is returned by Append when the price is NaN.
var ErrNaN = errors.New("chart: price is NaN")

// Candle is one OHLCV bucket.
type Candle struct {
	OpenTime uint64  `json:"open_time"`
	Open     float32 `json:"open"`
	High     float32 `json:"high"`
	Low      float32 `json:"low"`
	Close    float32 `json:"close"`
	Volume   float32 `json:"volume"`
	Trades   uint64  `json:"trades"`
}

// Chart is a single-interval OHLCV series bounded to MaxCandles entries.
type Chart struct {
	candles       []Candle
	interval      uint64
	maxCandles    int
	index24h      int // -1 means "none cached"
	candlesDropped bool
}

// New creates an empty chart bucketing trades into intervalSeconds-wide
// buckets, retaining at most maxCandles of them.
func New(intervalSeconds uint64, maxCandles int) *Chart {
	return &Chart{
		interval:   intervalSeconds,
		maxCandles: maxCandles,
		index24h:   -1,
	}
}

// Len returns the number of candles currently retained.
func (c *Chart) Len() int { return len(c.candles) }

const secondsIn24h = 86400

// Append records one trade. bucket = floor(ts/interval)*interval. A bucket
// equal to the current last candle's open time updates it in place; a
// newer bucket opens a fresh candle at the previous close; an older
// bucket is a chronology violation.
func (c *Chart) Append(ts uint64, price, volume float32) error {
	if price != price { // NaN
		return ErrNaN
	}

	bucket := (ts / c.interval) * c.interval

	if len(c.candles) == 0 {
		c.candles = append(c.candles, Candle{
			OpenTime: bucket,
			Open:     price,
			High:     price,
			Low:      price,
			Close:    price,
			Volume:   volume,
			Trades:   1,
		})
		c.index24h = 0
		c.updateIndex24h()
		return nil
	}

	last := &c.candles[len(c.candles)-1]
	switch {
	case bucket < last.OpenTime:
		return ErrChronologyViolation
	case bucket == last.OpenTime:
		if price > last.High {
			last.High = price
		}
		if price < last.Low {
			last.Low = price
		}
		last.Close = price
		last.Volume += volume
		last.Trades = saturatingAddU64(last.Trades, 1)
	default:
		newCandle := Candle{
			OpenTime: bucket,
			Open:     last.Close,
			High:     price,
			Low:      price,
			Close:    price,
			Volume:   volume,
			Trades:   1,
		}
		if price > newCandle.High {
			newCandle.High = price
		}
		if newCandle.Open > newCandle.High {
			newCandle.High = newCandle.Open
		}
		if newCandle.Open < newCandle.Low {
			newCandle.Low = newCandle.Open
		}
		c.candles = append(c.candles, newCandle)
		if len(c.candles) > c.maxCandles {
			c.candles = c.candles[1:]
			c.candlesDropped = true
			if c.index24h >= 0 {
				c.index24h--
				if c.index24h < 0 {
					c.index24h = -1
				}
			}
		}
	}

	c.updateIndex24h()
	return nil
}

func saturatingAddU64(a, b uint64) uint64 {
	s := a + b
	if s < a {
		return math.MaxUint64
	}
	return s
}

// updateIndex24h scans forward from the cached index looking for the
// newest candle whose open time is still <= last.open_time - 24h.
func (c *Chart) updateIndex24h() {
	if len(c.candles) == 0 {
		c.index24h = -1
		return
	}
	last := c.candles[len(c.candles)-1]
	var threshold uint64
	if last.OpenTime >= secondsIn24h {
		threshold = last.OpenTime - secondsIn24h
	} else {
		threshold = 0
	}

	start := c.index24h
	if start < 0 {
		start = 0
	}
	if start >= len(c.candles) {
		start = len(c.candles) - 1
	}

	best := -1
	for i := start; i < len(c.candles); i++ {
		if c.candles[i].OpenTime <= threshold {
			best = i
		} else {
			break
		}
	}
	if best >= 0 {
		c.index24h = best
	} else if start < len(c.candles) && c.candles[start].OpenTime <= threshold {
		c.index24h = start
	}
	// otherwise leave cached index as the best candidate found so far
	// (including -1, the "no reference yet" state).
	if best < 0 && c.index24h >= 0 && c.candles[c.index24h].OpenTime > threshold {
		c.index24h = -1
	}
}

// GetChangePct24h returns the percent change between the last close and
// the close of the cached 24h-reference candle. Before any candle has
// ever been dropped, the first candle stands in as the reference if no
// true 24h candle exists yet (a just-born asset reports change against
// its creation price). Once a candle has been dropped, a true 24h
// reference is required or this returns (0, false).
func (c *Chart) GetChangePct24h() (float32, bool) {
	if len(c.candles) == 0 {
		return 0, false
	}
	last := c.candles[len(c.candles)-1]

	refIdx := c.index24h
	if refIdx < 0 {
		if c.candlesDropped {
			return 0, false
		}
		refIdx = 0
	}
	ref := c.candles[refIdx]
	if ref.Close == 0 {
		return float32(math.Inf(1)), true
	}
	return (last.Close - ref.Close) / ref.Close * 100, true
}

// Query returns up to count candles with OpenTime >= afterInclusive, in
// chronological order, newest window first via a binary search over the
// chronological slice (the original's two-slice VecDeque extraction
// collapses to a single contiguous slice here since Go's slice already
// is one contiguous backing array).
func (c *Chart) Query(count int, afterInclusive uint64) []Candle {
	if count <= 0 || len(c.candles) == 0 {
		return nil
	}

	// Hot path: the common case is "give me the latest candles", so check
	// the last one or two candles before falling back to binary search.
	n := len(c.candles)
	if c.candles[n-1].OpenTime >= afterInclusive {
		if n >= 2 && c.candles[n-2].OpenTime < afterInclusive {
			return cloneCandles(c.candles[n-1:])
		}
	}

	idx := sort.Search(n, func(i int) bool {
		return c.candles[i].OpenTime >= afterInclusive
	})
	if idx >= n {
		return nil
	}

	start := idx
	if n-start > count {
		start = n - count
		if start < idx {
			start = idx
		}
	}
	return cloneCandles(c.candles[start:])
}

func cloneCandles(src []Candle) []Candle {
	out := make([]Candle, len(src))
	copy(out, src)
	return out
}
