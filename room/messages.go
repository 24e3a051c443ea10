package room

// Wire messages exchanged inside rooms. Every frame is a JSON object whose
// "type" field routes it; outbound structs embed the tag themselves.

// Inbound message types.
const (
	msgChooseStart         = "chooseStart"
	msgFillHex             = "fillHex"
	msgBatchFillHex        = "batchFillHex"
	msgClickHex            = "clickHex"
	msgUpgradeHex          = "upgradeHex"
	msgBatchUpgradeHex     = "batchUpgradeHex"
	msgRequestHoverCost    = "requestHoverCost"
	msgRequestPointsUpdate = "requestPointsUpdate"
	msgJoinGame            = "joinGame"
	msgCreateReplay        = "createReplay"
)

// Per-hex rejection reasons (precondition failures; never close the
// connection).
const (
	reasonInsufficient   = "insufficient"
	reasonNotAdjacent    = "not_adjacent"
	reasonNotOwner       = "not_owner"
	reasonImpassable     = "impassable"
	reasonOccupied       = "occupied"
	reasonNotStarted     = "not_started"
	reasonWindowClosed   = "start_window_closed"
	reasonAlreadyStarted = "already_started"
	reasonUnavailable    = "unavailable"
)

type coordPayload struct {
	Q int `json:"q"`
	R int `json:"r"`
}

type batchFillPayload struct {
	Hexes []coordPayload `json:"hexes"`
}

// upgradePayload carries the upgrade kind under "upgradeType" because the
// envelope's "type" slot holds the message type.
type upgradePayload struct {
	Q    int    `json:"q"`
	R    int    `json:"r"`
	Kind string `json:"upgradeType"`
}

type batchUpgradePayload struct {
	Hexes []upgradeItem `json:"hexes"`
}

// upgradeItem is nested inside the batch, so "type" is free to carry the
// upgrade kind here.
type upgradeItem struct {
	Q    int    `json:"q"`
	R    int    `json:"r"`
	Kind string `json:"type"`
}

type createReplayPayload struct {
	GameID string `json:"gameId"`
}

// Outbound messages.

type assignedColorMsg struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

type historyEntry struct {
	Q       int    `json:"q"`
	R       int    `json:"r"`
	Color   string `json:"color"`
	Crown   bool   `json:"crown"`
	Upgrade string `json:"upgrade"`
	Terrain string `json:"terrain"`
}

type historyMsg struct {
	Type  string         `json:"type"`
	Hexes []historyEntry `json:"hexes"`
}

type lobbyStartTimeMsg struct {
	Type       string `json:"type"`
	Ts         int64  `json:"ts"`
	StartDelay int64  `json:"startDelay"`
}

type updateMsg struct {
	Type    string `json:"type"`
	Q       int    `json:"q"`
	R       int    `json:"r"`
	Color   string `json:"color"`
	Crown   bool   `json:"crown"`
	Upgrade string `json:"upgrade"`
	Terrain string `json:"terrain"`
}

type fillResult struct {
	Q      int    `json:"q"`
	R      int    `json:"r"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

type fillResultMsg struct {
	Type string `json:"type"`
	fillResult
}

type batchFillResultMsg struct {
	Type    string       `json:"type"`
	Results []fillResult `json:"results"`
}

type openOwnedTileMenuMsg struct {
	Type    string `json:"type"`
	Q       int    `json:"q"`
	R       int    `json:"r"`
	Upgrade string `json:"upgrade"`
}

type hoverCostMsg struct {
	Type string `json:"type"`
	Q    int    `json:"q"`
	R    int    `json:"r"`
	Cost *int   `json:"cost"`
}

type pointsUpdateMsg struct {
	Type      string `json:"type"`
	PlayerID  string `json:"playerId"`
	Points    int    `json:"points"`
	Tiles     int    `json:"tiles"`
	MaxPoints int    `json:"maxPoints"`
}

type upgradeResultMsg struct {
	Type string `json:"type"`
	OK   bool   `json:"ok"`
	// Kind echoes the purchased upgrade under "upgradeType"; the envelope
	// owns "type".
	Kind  string `json:"upgradeType,omitempty"`
	Error string `json:"error,omitempty"`
}

type upgradeBatchResult struct {
	Q     int    `json:"q"`
	R     int    `json:"r"`
	OK    bool   `json:"ok"`
	Kind  string `json:"upgradeType,omitempty"`
	Error string `json:"error,omitempty"`
}

type batchUpgradeResultMsg struct {
	Type    string               `json:"type"`
	Results []upgradeBatchResult `json:"results"`
}

type countdownMsg struct {
	Type    string `json:"type"`
	Seconds int    `json:"seconds"`
}

type startGameMsg struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

type lobbyRosterEntry struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	Color    string `json:"color"`
	Started  bool   `json:"started"`
}

type lobbyStateMsg struct {
	Type    string             `json:"type"`
	Players []lobbyRosterEntry `json:"players"`
}

type replayCreatedMsg struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

type replayInfoMsg struct {
	Type        string `json:"type"`
	GameID      string `json:"gameId"`
	TotalEvents int    `json:"totalEvents"`
}

type replayEventMsg struct {
	Type      string `json:"type"`
	PlayerID  string `json:"playerId"`
	Color     string `json:"color"`
	Q         int    `json:"q"`
	R         int    `json:"r"`
	EventType string `json:"eventType"`
	Offset    int64  `json:"offset"`
}

type replayEndMsg struct {
	Type string `json:"type"`
}
