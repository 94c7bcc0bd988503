// Package logger wraps zap for the appliance:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and configuration,
//   - key-value helpers (DebugKV, InfoKV, WarnKV, ErrorKV).
//
// Components receive a context and log through the logger carried by it, so
// the dispatcher, editor and reconciler lines are tagged with their names.
package logger
