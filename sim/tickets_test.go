package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAutomaticTickets_Formula(t *testing.T) {
	tests := []struct {
		priority, wait, want int
	}{
		{1, 0, 10},
		{1, 4, 10},
		{1, 5, 11},
		{3, 12, 32},
		{5, 50, 60},
	}
	policy := &AutomaticTickets{}
	for _, tt := range tests {
		p := &Process{Priority: tt.priority, WaitTime: tt.wait, OriginalTickets: 99}
		policy.Assign(p)
		assert.Equal(t, tt.want, p.Tickets, "priority=%d wait=%d", tt.priority, tt.wait)
		assert.Equal(t, 99, p.OriginalTickets, "Assign must not touch OriginalTickets")
	}
}

func TestAutomaticTickets_HonoursOutstandingLoans(t *testing.T) {
	policy := &AutomaticTickets{}

	// GIVEN a lending client
	client := &Process{Priority: 4, WaitTime: 20, LentTickets: 40}
	policy.Assign(client)
	assert.Zero(t, client.Tickets, "a lending client holds nothing")

	// GIVEN a server holding a loan
	server := &Process{Priority: 1, WaitTime: 10, BorrowedTickets: 40}
	policy.Assign(server)
	assert.Equal(t, 10+2+40, server.Tickets)
}

func TestManualTickets_LeavesCountsAlone(t *testing.T) {
	p := &Process{Priority: 5, WaitTime: 100, Tickets: 7}
	(&ManualTickets{}).Assign(p)
	assert.Equal(t, 7, p.Tickets)
}

func TestNewTicketPolicy(t *testing.T) {
	assert.IsType(t, &AutomaticTickets{}, NewTicketPolicy(""))
	assert.IsType(t, &AutomaticTickets{}, NewTicketPolicy(TicketsAutomatic))
	assert.IsType(t, &ManualTickets{}, NewTicketPolicy(TicketsManual))
	assert.Panics(t, func() { NewTicketPolicy("weighted") })
}

func TestBaseTicketsAndWaitBonus(t *testing.T) {
	assert.Equal(t, 10, BaseTickets(MinPriority))
	assert.Equal(t, 50, BaseTickets(MaxPriority))
	assert.Equal(t, 0, WaitBonus(4))
	assert.Equal(t, 3, WaitBonus(17))
}
