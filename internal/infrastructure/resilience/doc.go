/*
Package resilience provides the circuit breaker that guards external programs.

A program that keeps failing to start, or keeps hanging until its timeout,
trips its breaker; further invocations fail immediately until the cooldown
passes and a probe succeeds. Which errors count as failures is decided by
Settings.IsSuccessful, so ordinary non-zero exits can be left out.

# Usage

	breaker := resilience.New("dnf", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	out, err := resilience.Call(breaker, func() (string, error) {
		return runner.Output(ctx, cmd)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
