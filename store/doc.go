// Package store is the game data layer: every persistent domain operation
// over players, lobbies, games, hexes, points and events, expressed as pure
// functions of the KV facade.
//
// Key layout (a cross-process contract):
//
//	players:<playerId>:data      hash
//	players:<playerId>:session   string, TTL ~1h
//	players:active               zset scored by lastSeen
//	lobbies:<lobbyId>:data       hash
//	lobbies:<lobbyId>:players    set
//	lobbies:active               zset
//	games:<gameId>:data          hash (startPlayers as JSON)
//	games:<gameId>:players       set
//	games:<gameId>:hexes         hash, field "q:r", value JSON tile
//	games:<gameId>:points        hash, field playerId, value JSON
//	games:<gameId>:events        list, LPUSH + LTRIM 0 9999
//	games:active                 zset
//
// The store holds no in-memory state, so multiple server processes pointed
// at the same backend can host rooms for disjoint games concurrently.
package store
