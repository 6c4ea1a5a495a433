package types

// ExecuteRequest represents a service execution request
type ExecuteRequest struct {
	ToolID string                 `json:"tool_id" binding:"required"`
	Params map[string]interface{} `json:"params"`
	Client *string                `json:"client,omitempty"`
}

// InputRequest carries keystrokes for a PTY session
type InputRequest struct {
	Input string `json:"input" binding:"required"`
}

// ResizeRequest changes PTY dimensions
type ResizeRequest struct {
	Cols int `json:"cols" binding:"required,min=1"`
	Rows int `json:"rows" binding:"required,min=1"`
}

// WSMessage is a frame on the session stream
type WSMessage struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
	Cols int    `json:"cols,omitempty"`
	Rows int    `json:"rows,omitempty"`
}
