// Package clock contains the time-of-day value shared by the editor,
// the reconciler and the alarm evaluator.
//
// TimeOfDay carries only hour, minute and second. Dates are owned by the RTC
// driver and never reach the core.
package clock
