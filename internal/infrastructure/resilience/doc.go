/*
Package resilience provides a circuit breaker for collaborators that can fail
repeatedly, such as the cutting-plan solver.

# States

- Closed: calls pass through and failures are counted
- Open: calls fail immediately with ErrCircuitOpen until Timeout elapses
- Half-Open: up to Probes calls are let through; that many successes close
  the breaker, a single failure opens it again

	Closed --[ReadyToTrip]-> Open --[Timeout]-> Half-Open --[Probes successes]-> Closed
	                                               |
	                                           [failure]
	                                               v
	                                             Open

# Usage

An error only counts as a failure when IsSuccessful rejects it, so callers
can keep errors caused by bad input from tripping the breaker.

	breaker := resilience.New("solver", resilience.Settings{
		Timeout:     30 * time.Second,
		ReadyToTrip: resilience.ConsecutiveFailures(5),
		IsSuccessful: func(err error) bool {
			return err == nil || solver.IsInputError(err)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker state changed", zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	err := breaker.Execute(func() error {
		return solver.Solve(items, prices)
	})
*/
package resilience
