/*
Package workshop runs the order pipeline of a welding shop.

Customers hand in orders for pieces cut from one material. Before an order
can be priced, every registered supplier must have quoted that material;
quotes are merged into a shared pricing.Book. Workers take orders from a
bounded queue, request quotes for materials that are not yet fully covered,
wait until they are, solve the cutting plan and hand the order back to its
customer.

# Pipeline

	customer ──WaitForDemand──▶ intake ──Push──▶ queue ──Pop──▶ worker
	                                                              │
	        ┌────────────── SendPriceList(material) ◀─────────────┤
	        ▼                                                      │ wait for coverage
	    supplier ──ReceivePriceList──▶ book ──Broadcast──▶ ────────┤
	                                                              │ Solve
	customer ◀────────────────── Completed ◀──────────────────────┘

# Shutdown

Stop drains before it stops: it waits for every customer to run out of
demand, closes the queue, and waits for the workers to empty it. Orders in
flight are never cancelled, and neither are coverage waits, so a supplier
that never answers keeps Stop from returning. A stall warning is logged when
a coverage wait exceeds the configured threshold.

# Failures

Errors and panics from a supplier, the solver or a customer callback fail
only the order being processed. The failure is logged, counted, passed to
the failure handler and returned, combined with all others, from Stop.
A failed order is never delivered.
*/
package workshop
