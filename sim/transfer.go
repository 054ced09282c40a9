package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/lottery-sim/lottery-sim/sim/trace"
)

// Ticket transfer lets a blocked client inflate its server's odds while it
// waits, so a high-priority client is not held back by a low-priority server.
// A client lends its whole balance once, at admission; the server pays every
// client back on the cycle it is dispatched.

// lendTickets moves all of client's tickets to server. Returns false and does
// nothing unless server is currently ready and client has tickets to lend.
func (sim *Simulator) lendTickets(client *Process) bool {
	if !client.IsClient() || client.LentTickets > 0 {
		return false
	}
	server := sim.ready.Get(client.ServerID)
	if server == nil || client.Tickets == 0 {
		return false
	}
	amount := client.Tickets
	server.Tickets += amount
	server.BorrowedTickets += amount
	client.LentTickets = amount
	client.Tickets = 0

	logrus.Debugf("[tick %07d] P%d lends %d tickets to P%d", sim.Clock, client.ID, amount, server.ID)
	sim.trace.RecordTransfer(trace.TransferRecord{
		Clock: sim.Clock, Kind: trace.TransferLend, From: client.ID, To: server.ID, Amount: amount,
	})
	return true
}

// restituteTickets pays back every ready client that lent to server.
func (sim *Simulator) restituteTickets(server *Process) {
	for _, client := range sim.ready.Items() {
		if client.ServerID != server.ID || client.LentTickets == 0 {
			continue
		}
		amount := client.LentTickets
		client.Tickets += amount
		server.Tickets -= amount
		server.BorrowedTickets -= amount
		client.LentTickets = 0
		if server.Tickets < 0 || server.BorrowedTickets < 0 {
			panic("restituteTickets: server ticket balance went negative")
		}

		logrus.Debugf("[tick %07d] P%d returns %d tickets to P%d", sim.Clock, server.ID, amount, client.ID)
		sim.trace.RecordTransfer(trace.TransferRecord{
			Clock: sim.Clock, Kind: trace.TransferRestore, From: server.ID, To: client.ID, Amount: amount,
		})
	}
}
