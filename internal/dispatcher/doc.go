// Package dispatcher is the appliance main loop.
//
// It owns the three alarm slots, services the once-per-second tick
// (reconcile, display, evaluate, pulse) and routes the function keys to the
// alarm editors or to the RTC-set flow. Everything runs on the calling
// goroutine; the only concurrent producer is the tick source.
package dispatcher
