// Package saga coordinates multi-step operations whose steps have
// external effects and cannot be wrapped in a single atomic
// transaction. When any step fails, the steps that already completed
// are unwound in reverse order by invoking their compensations, and
// the caller receives one structured error that preserves both the
// original failure and any failures that occurred while compensating.
//
// Overview
//
//  1. Define each step as an action/compensation pair of plain
//     functions. Actions receive the previous step's output as
//     positional arguments and return their own output; compensations
//     receive arguments derived from their action's output.
//  2. Assemble the saga with a Builder, appending steps in the order
//     they must run. Reusable steps can be registered once in a
//     Registry and added by name.
//  3. Call Execute. On success every step holds its result; on failure
//     the returned error is a *SagaError carrying the failed step
//     index, the original cause with its diagnostic trace, and a
//     per-index map of compensation failures.
//
// Steps run strictly sequentially. The engine never retries, never
// reorders, and never imposes timeouts; a step wanting any of those
// wraps its own callable.
//
// For runnable demonstrations, see the examples directory.
package saga
