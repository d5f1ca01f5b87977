package state

import (
	"testing"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
)

func TestReceiptsComponentFirstWriteWins(t *testing.T) {
	r := NewReceiptsComponent()
	id := [32]byte{1}

	first := event.Event{Data: event.GameWithdrawEvent{ID: id, WithdrawAuthority: event.Public{1}}, Signature: event.Signature{1}, Timestamp: 100}
	if !r.OnEvent(first) {
		t.Fatal("expected withdraw event to be consumed")
	}

	second := event.Event{Data: event.GameWithdrawEvent{ID: id, WithdrawAuthority: event.Public{2}}, Signature: event.Signature{2}, Timestamp: 200}
	if !r.OnEvent(second) {
		t.Fatal("expected duplicate withdraw event to still report consumed")
	}

	got, ok := r.GetWithdraw(id)
	if !ok {
		t.Fatal("expected withdraw receipt to exist")
	}
	if got.WithdrawAuthority != (event.Public{1}) || got.Timestamp != 100 {
		t.Fatalf("second write overwrote the first receipt: %+v", got)
	}
}

func TestReceiptsComponentDepositsAndBurnsAreIndependent(t *testing.T) {
	r := NewReceiptsComponent()
	id := [32]byte{7}

	r.OnEvent(event.Event{Data: event.GameDepositEvent{ID: id}, Timestamp: 1})
	r.OnEvent(event.Event{Data: event.GameBurnEvent{ID: id}, Timestamp: 2})

	if _, ok := r.GetDeposit(id); !ok {
		t.Fatal("expected a deposit receipt")
	}
	if _, ok := r.GetBurn(id); !ok {
		t.Fatal("expected a burn receipt")
	}
	if _, ok := r.GetWithdraw(id); ok {
		t.Fatal("did not expect a withdraw receipt for an ID only ever deposited/burned")
	}
}

func TestReceiptsComponentIgnoresUnrelatedEvent(t *testing.T) {
	r := NewReceiptsComponent()
	if r.OnEvent(event.Event{Data: event.CommentEvent{}}) {
		t.Fatal("expected CommentEvent to be ignored")
	}
}
