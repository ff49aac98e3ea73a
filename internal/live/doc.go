// Package live implements the live transcription websocket client.
//
// A Client runs one session at a time:
//   - Start dials the live endpoint with merged options and headers,
//     then spawns the listen loop and, optionally, the keepalive loop
//   - the listen loop decodes inbound frames into typed events and
//     dispatches them to subscribers in arrival order
//   - the keepalive loop sends a KeepAlive frame on a fixed cadence
//   - both loops share one socket handle and one exit latch; every
//     fatal path funnels through a single idempotent shutdown sequence
//
// Subscribers register with On and observe failures as Error events;
// errors propagate to callers only via the termination_exception
// configuration options.
package live
