package game

// Message types exchanged with the game server.
const (
	TypeStartGame      = "START_GAME"
	TypeUserInput      = "USER_INPUT"
	TypeJinnState      = "JINN_STATE"
	TypeGameState      = "GAME_STATE"
	TypeProgressUpdate = "PROGRESS_UPDATE"
	TypeWalletResult   = "WALLET_RESULT"
)

// UserInputPayload is sent when the player submits a Twitter handle.
type UserInputPayload struct {
	Twitter string `json:"twitter"`
}

// JinnStatePayload moves the Jinn to a new mood with an optional line.
type JinnStatePayload struct {
	State   string `json:"state"`
	Message string `json:"message"`
}

// GameStatePayload is the full game state pushed on connect.
type GameStatePayload struct {
	JinnState string `json:"jinnState"`
	Twitter   string `json:"twitter,omitempty"`
}

type ProgressPayload struct {
	Message string `json:"message"`
}

// WalletResult is the outcome of a wallet guess.
type WalletResult struct {
	TwitterHandle string   `json:"twitterHandle"`
	Addresses     []string `json:"addresses"`
	Sources       []string `json:"sources"`
	Confidence    int      `json:"confidence"` // 0-100
}
