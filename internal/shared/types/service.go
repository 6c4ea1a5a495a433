package types

// Category represents service categories
type Category string

const (
	CategoryPackages   Category = "packages"
	CategoryContainers Category = "containers"
	CategorySystem     Category = "system"
)

// Service represents a service definition
type Service struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Category     Category    `json:"category"`
	Capabilities []string    `json:"capabilities"`
	Tools        []Tool      `json:"tools"`
	DataModels   []DataModel `json:"data_models,omitempty"`
}

// Tool represents a service tool
type Tool struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Returns     string      `json:"returns"`
}

// Parameter represents a tool parameter
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// DataModel represents a data structure
type DataModel struct {
	Name   string            `json:"name"`
	Fields map[string]string `json:"fields"`
}

// Context carries caller information for a tool execution
type Context struct {
	// Client is the front end that issued the call (e.g. "gtk", "cli")
	Client    *string `json:"client,omitempty"`
	RequestID *string `json:"request_id,omitempty"`
}

// Result represents a service execution result
type Result struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *string                `json:"error,omitempty"`
}
