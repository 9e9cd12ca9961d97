package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/anishesg/a-rusty-kalshi-bot/internal/domain/models"
)

// Ledger is the bounded trade ledger with the lifecycle matching rules of
// the upstream protocol. Open events never carry a backend id, exit events
// carry an id that is not reliable, settle events carry a usable one; the
// matching heuristics below mirror the backend's own bookkeeping, including
// its known ambiguity when one model holds several open positions.
type Ledger struct {
	records *Ring[*models.TradeRecord]
}

// NewLedger creates a ledger bounded to capacity records, oldest evicted.
func NewLedger(capacity int) *Ledger {
	return &Ledger{records: NewRing[*models.TradeRecord](capacity)}
}

// Open creates a new OPEN record from a trade-opened event. The id is issued
// locally; the opening event does not carry one.
func (l *Ledger) Open(ev *models.NewTradeEvent, marketTicker string, at time.Time) *models.TradeRecord {
	rec := &models.TradeRecord{
		ID:           uuid.NewString(),
		Model:        ev.Model,
		MarketTicker: marketTicker,
		Side:         ev.Side,
		Action:       ev.Action,
		EntryPrice:   ev.Price,
		Contracts:    ev.Contracts,
		EV:           ev.EV,
		EntryTime:    at,
	}
	l.records.Append(rec)
	return rec
}

// Exit closes every currently-open record for the event's model with
// outcome "exit:<reason>". The wire trade_id is not used for matching; when
// the model holds more than one open position the close is ambiguous and
// all of them are settled against this event, matching the backend.
func (l *Ledger) Exit(ev *models.TradeExitedEvent, at time.Time) []*models.TradeRecord {
	var closed []*models.TradeRecord
	l.records.ForEachNewest(func(rec *models.TradeRecord) bool {
		if rec.Model == ev.Model && rec.IsOpen() {
			closeRecord(rec, models.OutcomeExitPrefix+ev.Reason, ev.Pnl, at)
			closed = append(closed, rec)
		}
		return true
	})
	return closed
}

// Settle closes the record named by the event's trade_id. When no record
// carries that id, the most-recently-opened open record for the model is
// closed instead; when none exists the event is a no-op. Closed records are
// immutable: a second settle for the same id does nothing.
func (l *Ledger) Settle(ev *models.TradeSettledEvent, at time.Time) *models.TradeRecord {
	var byID *models.TradeRecord
	l.records.ForEachNewest(func(rec *models.TradeRecord) bool {
		if rec.ID == ev.TradeID {
			byID = rec
			return false
		}
		return true
	})
	if byID != nil {
		if !byID.IsOpen() {
			return nil
		}
		closeRecord(byID, ev.Outcome, ev.Pnl, at)
		return byID
	}

	var fallback *models.TradeRecord
	l.records.ForEachNewest(func(rec *models.TradeRecord) bool {
		if rec.Model == ev.Model && rec.IsOpen() {
			fallback = rec
			return false
		}
		return true
	})
	if fallback == nil {
		return nil
	}
	closeRecord(fallback, ev.Outcome, ev.Pnl, at)
	return fallback
}

func closeRecord(rec *models.TradeRecord, outcome string, pnl float64, at time.Time) {
	rec.Outcome = outcome
	p := pnl
	rec.Pnl = &p
	t := at
	rec.SettleTime = &t
}

// Trades returns up to limit records, newest first, optionally filtered by
// model. Returned records are copies.
func (l *Ledger) Trades(model string, limit int) []models.TradeRecord {
	if limit <= 0 || limit > l.records.Cap() {
		limit = l.records.Cap()
	}
	out := make([]models.TradeRecord, 0, limit)
	l.records.ForEachNewest(func(rec *models.TradeRecord) bool {
		if model != "" && rec.Model != model {
			return true
		}
		out = append(out, *rec)
		return len(out) < limit
	})
	return out
}

// OpenCount returns the number of open records for a model.
func (l *Ledger) OpenCount(model string) int {
	n := 0
	l.records.ForEachNewest(func(rec *models.TradeRecord) bool {
		if rec.Model == model && rec.IsOpen() {
			n++
		}
		return true
	})
	return n
}

// Len returns the number of ledger entries.
func (l *Ledger) Len() int { return l.records.Len() }
