// Package sequencer runs queued actions for each owner, one visible step
// per tick.
//
// A Sequencer is a component attached to an owner entity. It holds two
// FIFO queues: waiting actions that have been pushed but not started, and
// running handles created by the driver. Each tick the Driver moves every
// waiting action to the back of running and then invokes only the front
// handle. That invocation retries the action while it reports Pending and
// stops at the first Ready (the owner yields until the next tick) or Done
// (the handle is popped).
//
// Actions of one owner therefore execute strictly in push order and never
// interleave. Owners are independent of each other.
//
// # Failure modes
//
// A front action that never leaves Pending stalls the tick. By default this
// is not detected; WithRetryLimit installs a per-step budget that reports a
// RetryLimitError instead. A context resolution failure aborts the step
// before perform and leaves the handle at the front for the next tick.
package sequencer
