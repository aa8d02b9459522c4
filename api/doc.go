// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package api defines the public contracts of hioload-pool: the event-loop
// service abstraction the pool schedules onto, selector and dispatch-policy
// types, and the common error values shared across the library.
package api
