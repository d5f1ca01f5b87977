package aggregator

import (
	"context"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
	"github.com/R3E-Network/service_layer/internal/aggregator/state"
)

// mirrorAudit records comment and receipt events to the Postgres audit
// trail, if one is attached. A no-op when audit is nil.
func (a *Applier) mirrorAudit(evt event.Event) {
	if a.audit == nil {
		return
	}
	ctx := context.Background()
	switch data := evt.Data.(type) {
	case event.CommentEvent:
		a.audit.RecordComment(ctx, data.Game, state.Comment{
			Index:     data.CommentIndex,
			User:      data.User,
			Timestamp: data.Timestamp,
			Text:      data.Text,
		})
	case event.GameDepositEvent:
		a.audit.RecordReceipt(ctx, "deposit", data.ID, data)
	case event.GameWithdrawEvent:
		a.audit.RecordReceipt(ctx, "withdraw", data.ID, data)
	case event.GameBurnEvent:
		a.audit.RecordReceipt(ctx, "burn", data.ID, data)
	}
}

// sourceCursorState is the durable per-source position the Applier
// persists so LastSignature can report the last indexed signature after
// a restart without re-deriving it from the event log. The Scanner keeps
// its own cursor and does not read these.
type sourceCursorState struct {
	Signature event.Signature `json:"signature"`
}

// fxCursorState is a SOL/USD price the Applier has buffered but not yet
// folded into the log. It is saved at the end of any batch that leaves a
// price pending and reloaded as pending on restart, so it is applied
// before the next real event instead of being lost.
type fxCursorState struct {
	Price     float64 `json:"price"`
	Timestamp uint64  `json:"timestamp"`
}

// Applier is the single writer into state: it merges decoded events from
// the Retriever, Pricer, and Hydrator, applies each to the materialized
// view, persists the ones any component consumed, and advances the
// per-source signature cursors. Grounded on original_source/applier.rs.
type Applier struct {
	state *state.State
	log   *EventLog
	in    <-chan decodedEvent

	ivyCursor *Cursor[sourceCursorState]
	pfCursor  *Cursor[sourceCursorState]
	paCursor  *Cursor[sourceCursorState]
	fxCursor  *Cursor[fxCursorState]

	ivyLastSignature event.Signature
	pfLastSignature  event.Signature
	paLastSignature  event.Signature
	haveIvy          bool
	havePf           bool
	havePa           bool

	// pendingFx buffers the most recent SolPrice seen since the last
	// real event was applied; see processBatch for the deferral rule.
	pendingFx   fxCursorState
	havePending bool

	// audit is nil unless cfg.PostgresDSN is set; when present, every
	// comment and receipt event is mirrored to it after being applied.
	audit *AuditStore

	logger *logrus.Entry
}

// WithAuditStore attaches an audit mirror to the Applier. Comments and
// receipts processed after this call are also recorded to audit.
func (a *Applier) WithAuditStore(audit *AuditStore) {
	a.audit = audit
}

// NewApplier builds an Applier, replaying the existing event log into st
// and refreshing the hot asset list before returning, so a restart never
// serves a cold cache.
func NewApplier(st *state.State, eventLog *EventLog, eventsPath string, dataDir string, in <-chan decodedEvent) (*Applier, error) {
	a := &Applier{
		state:     st,
		log:       eventLog,
		in:        in,
		ivyCursor: NewCursor[sourceCursorState](filepath.Join(dataDir, "cursors", "applier_ivy.json")),
		pfCursor:  NewCursor[sourceCursorState](filepath.Join(dataDir, "cursors", "applier_pf.json")),
		paCursor:  NewCursor[sourceCursorState](filepath.Join(dataDir, "cursors", "applier_pa.json")),
		fxCursor:  NewCursor[fxCursorState](filepath.Join(dataDir, "cursors", "applier_fx.json")),
		logger:    logrus.WithField("component", "aggregator-applier"),
	}

	if v, ok, err := a.ivyCursor.Load(); err == nil && ok {
		a.ivyLastSignature, a.haveIvy = v.Signature, true
	}
	if v, ok, err := a.pfCursor.Load(); err == nil && ok {
		a.pfLastSignature, a.havePf = v.Signature, true
	}
	if v, ok, err := a.paCursor.Load(); err == nil && ok {
		a.paLastSignature, a.havePa = v.Signature, true
	}
	if v, ok, err := a.fxCursor.Load(); err == nil && ok {
		a.pendingFx, a.havePending = v, true
	}

	events, err := ReadEventLog(eventsPath)
	if err != nil {
		return nil, err
	}
	for _, evt := range events {
		st.ApplyEvent(evt)
	}
	st.ApplyEvent(event.Event{Data: event.InitializeEvent{}, Timestamp: uint64(time.Now().Unix())})
	st.RefreshHotList(uint64(time.Now().Unix()))

	return a, nil
}

// LastSignature reports the most recently persisted signature for src,
// if any has been recorded yet.
func (a *Applier) LastSignature(src event.Source) (event.Signature, bool) {
	switch src {
	case event.SourceIvy:
		return a.ivyLastSignature, a.haveIvy
	case event.SourcePf:
		return a.pfLastSignature, a.havePf
	case event.SourcePa:
		return a.paLastSignature, a.havePa
	default:
		return event.Signature{}, false
	}
}

// Run drains decoded events from in, batching everything immediately
// available (mirroring the Retriever's drain loop) so a burst of
// retriever/pricer/hydrator output is flushed to disk as one batch, until
// ctx is canceled or in closes.
func (a *Applier) Run(ctx context.Context) {
	for {
		var batch []decodedEvent
		select {
		case <-ctx.Done():
			return
		case d, ok := <-a.in:
			if !ok {
				return
			}
			batch = append(batch, d)
		}

	drain:
		for {
			select {
			case d, ok := <-a.in:
				if !ok {
					break drain
				}
				batch = append(batch, d)
			default:
				break drain
			}
		}

		a.processBatch(batch)
	}
}

func (a *Applier) processBatch(batch []decodedEvent) {
	var writeQueue []event.Event

	for _, d := range batch {
		if price, ok := d.data.(event.SolPriceEvent); ok {
			a.pendingFx = fxCursorState{Price: price.Price, Timestamp: d.timestamp}
			a.havePending = true
			continue
		}

		if a.havePending {
			fxEvt := event.Event{
				Data:      event.SolPriceEvent{Price: a.pendingFx.Price},
				Signature: event.Signature{},
				Timestamp: a.pendingFx.Timestamp,
			}
			a.state.ApplyEvent(fxEvt)
			writeQueue = append(writeQueue, fxEvt)
			a.havePending = false
		}

		evt := event.Event{Data: d.data, Signature: d.signature, Timestamp: d.timestamp}
		if a.state.ApplyEvent(evt) {
			writeQueue = append(writeQueue, evt)
		}
		a.mirrorAudit(evt)

		switch evt.Source() {
		case event.SourceIvy:
			a.ivyLastSignature, a.haveIvy = d.signature, true
		case event.SourcePf:
			a.pfLastSignature, a.havePf = d.signature, true
		case event.SourcePa:
			a.paLastSignature, a.havePa = d.signature, true
		}
	}

	for _, evt := range writeQueue {
		if err := a.log.Append(evt); err != nil {
			a.logger.WithError(err).Error("append event log failed; event remains in memory only")
		}
	}

	if a.haveIvy {
		if err := a.ivyCursor.Save(sourceCursorState{Signature: a.ivyLastSignature}); err != nil {
			a.logger.WithError(err).Error("save ivy cursor failed")
		}
	}
	if a.havePf {
		if err := a.pfCursor.Save(sourceCursorState{Signature: a.pfLastSignature}); err != nil {
			a.logger.WithError(err).Error("save pf cursor failed")
		}
	}
	if a.havePa {
		if err := a.paCursor.Save(sourceCursorState{Signature: a.paLastSignature}); err != nil {
			a.logger.WithError(err).Error("save pa cursor failed")
		}
	}
	if a.havePending {
		if err := a.fxCursor.Save(a.pendingFx); err != nil {
			a.logger.WithError(err).Error("save fx cursor failed")
		}
	}
}
