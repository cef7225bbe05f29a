package api

const postCommandMaxSize = 64 * 1024 // 64 KiB

const (
	routeBoard    = "/api/board"
	routeStream   = "/api/board/stream"
	routeCommands = "/api/commands"
)

// /POST /api/commands response body
type postCommandResponse struct {
	Results []commandResult `json:"results,omitempty"`
	Version uint64          `json:"version,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type commandResult struct {
	IdempotencyKey string `json:"idempotencyKey"`
	Type           string `json:"type"`
	Applied        bool   `json:"applied"`
	Duplicate      bool   `json:"duplicate,omitempty"`
	ID             string `json:"id,omitempty"`
}
