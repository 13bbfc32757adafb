package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	all := []OrderStatus{Deleted, PendingPayment, Paid, PendingShipment, Shipped, Completed, Cancelled, Refunding, Refunded}

	allowed := map[OrderStatus][]OrderStatus{
		PendingPayment:  {Paid, Cancelled},
		Paid:            {PendingShipment, Refunding},
		PendingShipment: {Shipped, Refunding},
		Shipped:         {Completed, Refunding},
		Completed:       {Refunding},
		Refunding:       {Refunded, Completed},
	}

	for _, from := range all {
		for _, to := range all {
			want := from == to
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from.Desc(), to.Desc())
		}
	}
}

func TestReflexiveTransitionAllowed(t *testing.T) {
	for _, s := range []OrderStatus{Deleted, PendingPayment, Paid, PendingShipment, Shipped, Completed, Cancelled, Refunding, Refunded} {
		assert.True(t, CanTransition(s, s))
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, Cancelled.IsTerminal())
	assert.True(t, Refunded.IsTerminal())
	assert.True(t, Deleted.IsTerminal())
	assert.False(t, Completed.IsTerminal())
	assert.False(t, Refunding.IsTerminal())
}

func TestPredicates(t *testing.T) {
	assert.True(t, PendingPayment.IsPayable())
	assert.False(t, Paid.IsPayable())

	assert.True(t, PendingPayment.IsCancellable())
	assert.False(t, Paid.IsCancellable())

	assert.True(t, Paid.IsShippable())
	assert.True(t, PendingShipment.IsShippable())
	assert.False(t, Shipped.IsShippable())

	assert.True(t, Shipped.IsConfirmable())
	assert.False(t, Completed.IsConfirmable())

	assert.True(t, Shipped.IsRefundable())
	assert.True(t, Completed.IsRefundable())
	assert.False(t, PendingPayment.IsRefundable())

	assert.True(t, Completed.IsDeletable())
	assert.True(t, Cancelled.IsDeletable())
	assert.True(t, Refunded.IsDeletable())
	assert.False(t, Shipped.IsDeletable())
}

func TestIsValid(t *testing.T) {
	assert.True(t, Paid.IsValid())
	assert.False(t, OrderStatus(99).IsValid())
	assert.Equal(t, "未知状态", OrderStatus(99).Desc())
}
