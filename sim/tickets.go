package sim

import "fmt"

const (
	// TicketsPerPriority is the base ticket weight of one priority level.
	TicketsPerPriority = 10
	// WaitCyclesPerBonusTicket is how many waiting cycles earn one extra ticket.
	WaitCyclesPerBonusTicket = 5
)

// TicketPolicy recomputes a ready process's ticket count before a draw.
// Implementations write Process.Tickets in place and MUST NOT touch OriginalTickets.
type TicketPolicy interface {
	Assign(p *Process)
}

// AutomaticTickets derives tickets from priority plus an anti-starvation wait bonus.
// Formula: Priority*10 + WaitTime/5, net of any outstanding loan: a lending
// client holds nothing and a server keeps what it borrowed on top of its own.
type AutomaticTickets struct{}

func (a *AutomaticTickets) Assign(p *Process) {
	own := BaseTickets(p.Priority) + WaitBonus(p.WaitTime)
	if p.LentTickets > 0 {
		own = 0
	}
	p.Tickets = own + p.BorrowedTickets
}

// ManualTickets leaves caller-supplied counts untouched.
type ManualTickets struct{}

func (m *ManualTickets) Assign(_ *Process) {}

// BaseTickets is the ticket weight a priority level earns before any wait bonus.
func BaseTickets(priority int) int {
	return priority * TicketsPerPriority
}

// WaitBonus is the number of extra tickets earned by waiting waitTime cycles.
func WaitBonus(waitTime int) int {
	return waitTime / WaitCyclesPerBonusTicket
}

// NewTicketPolicy creates a TicketPolicy by mode.
// Empty string defaults to AutomaticTickets.
// Panics on unrecognized modes; Config.Validate rejects them first.
func NewTicketPolicy(mode TicketMode) TicketPolicy {
	if !validTicketModes[mode] {
		panic(fmt.Sprintf("unknown ticket mode %q", mode))
	}
	switch mode {
	case "", TicketsAutomatic:
		return &AutomaticTickets{}
	case TicketsManual:
		return &ManualTickets{}
	default:
		panic(fmt.Sprintf("unhandled ticket mode %q", mode))
	}
}
