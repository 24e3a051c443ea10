// Package websocket is the room runtime: it hosts rooms, upgrades client
// connections into them, and serializes all room work onto one loop.
//
// Architecture:
//
// The package uses a hub-and-rooms model. The Hub owns the room registry;
// each Room is a single-writer actor with a task channel. Inbound frames,
// joins, leaves and timer firings are posted as tasks and executed in order,
// so room handlers mutate their state without locks. Two rooms progress in
// parallel.
//
// Message Protocol:
//
// Every in-room message is a JSON object carrying a "type" field. Inbound
// frames are split into the type tag and raw payload before reaching the
// handler; outbound payload structs embed their own "type".
//
// Admission:
//
// Clients connect to /ws/{roomID} with playerId and token query parameters.
// The room handler decides admission and may reject with close code 1000
// (invalid/missing player, duplicate session) or 1003 (not allowed in this
// room). Replay rooms admit anonymous viewers.
//
// Backpressure:
//
// Each client has a bounded send buffer. Frames to a slow client are
// dropped; a stalled consumer never blocks the room loop or other clients.
//
// Connection Lifecycle:
//
// 1. Client connects with identity query parameters
// 2. Handler admits or rejects on the room loop
// 3. Handler exchanges the room's join messages
// 4. Frames flow through the room loop until disconnect
// 5. Disconnect posts OnLeave; reconnects arrive as fresh sessions
package websocket
