// Package ioservice
// Author: momentics <momentics@gmail.com>
//
// In-process event-loop service with a single FIFO run queue, keep-alive
// work tokens and cancellable delayed waits. One or more pool workers
// drain a service by calling Run; with a single runner, callables execute
// strictly in submission order.
// See service.go for the run loop and wait.go for the timer primitive.
package ioservice
