/*
Package simulation provides reference suppliers and customers for running
the workshop without external systems.

A Supplier answers every price request from a fixed catalog after an optional
delay, on its own goroutine, through the PriceSink it is bound to. Materials
missing from the catalog are answered with an empty list, so they still
count towards coverage.

A Customer replays a scripted list of orders, optionally paced by a token
bucket, and records every order handed back to it.

	sup := simulation.NewSupplier("north", catalog).WithDelay(5 * time.Millisecond)
	id, _ := coordinator.RegisterSupplier(sup)
	sup.Bind(coordinator)

	cust := simulation.NewCustomer("acme", orders).WithRate(10, 1)
	coordinator.RegisterCustomer(cust)
*/
package simulation
