package state

import "github.com/R3E-Network/service_layer/internal/aggregator/event"

// ReceiptsComponent records idempotent, first-write-wins proof-of-action
// receipts for deposits, withdrawals, and burns, keyed by the caller-
// supplied opaque ID rather than by game, so a receipt can be looked up
// without knowing which game it belongs to.
type ReceiptsComponent struct {
	deposits    map[[32]byte]DepositInfo
	withdrawals map[[32]byte]WithdrawInfo
	burns       map[[32]byte]BurnInfo
}

// NewReceiptsComponent builds an empty receipts ledger.
func NewReceiptsComponent() *ReceiptsComponent {
	return &ReceiptsComponent{
		deposits:    make(map[[32]byte]DepositInfo),
		withdrawals: make(map[[32]byte]WithdrawInfo),
		burns:       make(map[[32]byte]BurnInfo),
	}
}

// OnEvent applies a deposit/withdraw/burn event. A duplicate ID is ignored:
// the first observed receipt for a given ID always wins. Returns true if
// consumed.
func (r *ReceiptsComponent) OnEvent(evt event.Event) bool {
	switch data := evt.Data.(type) {
	case event.GameDepositEvent:
		if _, exists := r.deposits[data.ID]; !exists {
			r.deposits[data.ID] = DepositInfo{Signature: evt.Signature, Timestamp: evt.Timestamp}
		}
		return true
	case event.GameWithdrawEvent:
		if _, exists := r.withdrawals[data.ID]; !exists {
			r.withdrawals[data.ID] = WithdrawInfo{
				Signature:         evt.Signature,
				Timestamp:         evt.Timestamp,
				WithdrawAuthority: data.WithdrawAuthority,
			}
		}
		return true
	case event.GameBurnEvent:
		if _, exists := r.burns[data.ID]; !exists {
			r.burns[data.ID] = BurnInfo{Signature: evt.Signature, Timestamp: evt.Timestamp}
		}
		return true
	default:
		return false
	}
}

// GetDeposit looks up a deposit receipt by its opaque ID.
func (r *ReceiptsComponent) GetDeposit(id [32]byte) (DepositInfo, bool) {
	info, ok := r.deposits[id]
	return info, ok
}

// GetWithdraw looks up a withdrawal receipt by its opaque ID.
func (r *ReceiptsComponent) GetWithdraw(id [32]byte) (WithdrawInfo, bool) {
	info, ok := r.withdrawals[id]
	return info, ok
}

// GetBurn looks up a burn receipt by its opaque ID.
func (r *ReceiptsComponent) GetBurn(id [32]byte) (BurnInfo, bool) {
	info, ok := r.burns[id]
	return info, ok
}
