// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - kalshimm_cycles_total{strategy,result}, kalshimm_cycle_duration_seconds{strategy}
//   - kalshimm_decisions_total{outcome}, kalshimm_fair_value{ticker}
//   - kalshimm_orders_total{side,result}
//   - kalshimm_http_requests_total{method,status}, kalshimm_http_request_duration_seconds{method}
//   - kalshimm_stream_events_total{type}
package metrics
