package store

// Key layout shared across processes. These strings are a wire contract:
// any instance pointed at the same backend must produce identical keys.

const (
	keyPlayersActive = "players:active"
	keyLobbiesActive = "lobbies:active"
	keyGamesActive   = "games:active"
)

func playerDataKey(playerID string) string    { return "players:" + playerID + ":data" }
func playerSessionKey(playerID string) string { return "players:" + playerID + ":session" }

func lobbyDataKey(lobbyID string) string    { return "lobbies:" + lobbyID + ":data" }
func lobbyPlayersKey(lobbyID string) string { return "lobbies:" + lobbyID + ":players" }

func gameDataKey(gameID string) string    { return "games:" + gameID + ":data" }
func gamePlayersKey(gameID string) string { return "games:" + gameID + ":players" }
func gameHexesKey(gameID string) string   { return "games:" + gameID + ":hexes" }
func gamePointsKey(gameID string) string  { return "games:" + gameID + ":points" }
func gameEventsKey(gameID string) string  { return "games:" + gameID + ":events" }
