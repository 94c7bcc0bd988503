// Package alarm contains the alarm slots and the per-second match rule.
//
// Matching is exact to the second; there is no tolerance window.
package alarm
