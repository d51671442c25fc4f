// Package stream maintains the optional WebSocket ticker subscription.
//
// The Client:
//   - Dials the signed /trade-api/ws/v2 endpoint
//   - Subscribes to the configured channels
//   - Decodes pushes into Events
//   - Reconnects with exponential backoff, reporting each drop as EventClosed
//
// A stream failure never affects the polling loop.
package stream
