// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Inbound signals by outcome (applied, duplicate, ignored, busy, failed)
//   - Transitions by direction and result, and their duration
//   - Exchange REST requests by endpoint and status
//   - The currently accepted signal
//   - The polled exchange position and poll failures
package metrics
