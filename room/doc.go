// Package room implements the server's actors: lobbies that stage players,
// game rooms that run matches, and replay rooms that stream finished games.
//
// Each actor sits behind the websocket runtime's single task loop, so its
// handlers read and mutate room state without locks. All durable state
// (boards, points, events, rosters) lives in the store; the actors hold only
// presence and timers, which is what lets a restart rebuild them.
//
// The Matchmaker is the factory: it finds or creates lobbies for HTTP
// matchmaking requests, converts a ready lobby roster into a game room, and
// rehosts active games on boot.
package room
