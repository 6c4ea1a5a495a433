package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/process"
	"github.com/GriffinCanCode/SystemManager/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/SystemManager/backend/internal/shared/types"
)

// Tool is an external program the backend depends on
type Tool struct {
	Name  string `json:"name"`
	Path  string `json:"path,omitempty"`
	Found bool   `json:"found"`
}

// Provider reports host information and whether the programs the panel
// shells out to can be found
type Provider struct {
	startTime time.Time
	programs  []string
	guards    []*process.Guard
	lookPath  func(string) (string, error)
}

// NewProvider creates a system provider checking programs in order; empty
// and repeated names are skipped
func NewProvider(programs []string, guards ...*process.Guard) *Provider {
	seen := make(map[string]bool, len(programs))
	var unique []string
	for _, p := range programs {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		unique = append(unique, p)
	}
	return &Provider{
		startTime: time.Now(),
		programs:  unique,
		guards:    guards,
		lookPath:  exec.LookPath,
	}
}

// Definition returns service metadata
func (s *Provider) Definition() types.Service {
	return types.Service{
		ID:          "system",
		Name:        "System Service",
		Description: "Host information and external program availability",
		Category:    types.CategorySystem,
		Capabilities: []string{
			"info",
			"preflight",
		},
		Tools: []types.Tool{
			{
				ID:          "system.info",
				Name:        "System Info",
				Description: "Get host and backend information",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "system.tools",
				Name:        "Check Tools",
				Description: "Report whether the package manager, container tool and terminal are installed",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "system.ping",
				Name:        "Ping",
				Description: "Test service availability",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
		},
	}
}

// Execute runs a system operation
func (s *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "system.info":
		return s.info()
	case "system.tools":
		return s.tools()
	case "system.ping":
		return s.ping()
	default:
		return failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (s *Provider) info() (*types.Result, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	hostname, _ := os.Hostname()
	return success(map[string]interface{}{
		"hostname":       hostname,
		"go_version":     runtime.Version(),
		"os":             runtime.GOOS,
		"arch":           runtime.GOARCH,
		"cpus":           runtime.NumCPU(),
		"goroutines":     runtime.NumGoroutine(),
		"memory_alloc":   m.Alloc / 1024 / 1024, // MB
		"memory_sys":     m.Sys / 1024 / 1024,   // MB
		"uptime_seconds": time.Since(s.startTime).Seconds(),
	})
}

// Check resolves every configured program on PATH
func (s *Provider) Check() []Tool {
	out := make([]Tool, 0, len(s.programs))
	for _, name := range s.programs {
		tool := Tool{Name: name}
		if path, err := s.lookPath(name); err == nil {
			tool.Path, tool.Found = path, true
		}
		out = append(out, tool)
	}
	return out
}

func (s *Provider) tools() (*types.Result, error) {
	tools := s.Check()
	ready := true
	for _, t := range tools {
		ready = ready && t.Found
	}

	breakers := []resilience.Status{}
	for _, g := range s.guards {
		breakers = append(breakers, g.Status()...)
	}

	return success(map[string]interface{}{
		"tools":    tools,
		"ready":    ready,
		"breakers": breakers,
	})
}

func (s *Provider) ping() (*types.Result, error) {
	return success(map[string]interface{}{
		"pong":      true,
		"timestamp": time.Now().Unix(),
	})
}

func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

func failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg}, nil
}
