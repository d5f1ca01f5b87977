package chart

// Kind selects one of the bundled resolutions.
type Kind int

const (
	Kind1m Kind = iota
	Kind5m
	Kind15m
	Kind1h
	Kind1d
	Kind1w
)

var kindIntervals = map[Kind]uint64{
	Kind1m:  60,
	Kind5m:  5 * 60,
	Kind15m: 15 * 60,
	Kind1h:  60 * 60,
	Kind1d:  24 * 60 * 60,
	Kind1w:  7 * 24 * 60 * 60,
}

// Charts bundles one Chart per resolution and forwards every append to
// all of them, so a single trade updates every timeframe at once.
type Charts struct {
	byKind map[Kind]*Chart
}

// NewCharts builds the six-resolution bundle, each sharing maxCandles.
func NewCharts(maxCandles int) *Charts {
	c := &Charts{byKind: make(map[Kind]*Chart, len(kindIntervals))}
	for kind, interval := range kindIntervals {
		c.byKind[kind] = New(interval, maxCandles)
	}
	return c
}

// Append records a trade on every resolution. A chronology violation on
// one resolution does not prevent the others from being updated; the
// first error encountered (if any) is returned after all have been
// attempted.
func (c *Charts) Append(ts uint64, price, volume float32) error {
	var firstErr error
	for _, ch := range c.byKind {
		if err := ch.Append(ts, price, volume); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Query dispatches to the chart of the requested resolution.
func (c *Charts) Query(kind Kind, count int, afterInclusive uint64) []Candle {
	ch, ok := c.byKind[kind]
	if !ok {
		return nil
	}
	return ch.Query(count, afterInclusive)
}

// GetChangePct24h reports the 24h change using the 1-minute resolution
// chart, which has the finest-grained reference candle.
func (c *Charts) GetChangePct24h() (float32, bool) {
	return c.byKind[Kind1m].GetChangePct24h()
}
