// Package api provides the HTTP REST surface of the game server.
//
// The api package implements:
//   - Player registration and color changes
//   - Lobby matchmaking
//   - Game history retrieval
//   - WebSocket upgrade handling for rooms
//   - Health reporting
//   - Static file serving for the game client
//
// Endpoints:
//
// Identity:
//   - POST /api/register - Register a username, returns playerId + token
//   - POST /api/player/color - Change a player's color (token required)
//
// Matchmaking:
//   - POST /api/lobby - Find or create an open lobby, returns roomId
//
// History:
//   - GET /api/history?lobbyId={gameId} - Full event log of a game
//
// Realtime:
//   - GET /ws/{roomID}?playerId=...&token=... - Upgrade into a room
//
// Health:
//   - GET /health - Process, store and room status
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Authenticated endpoints take the
// playerId and token in the request body; WebSocket connections take them as
// query parameters.
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
