package containers

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers"
	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers/presets"
	"github.com/GriffinCanCode/SystemManager/backend/internal/shared/types"
)

// Provider exposes container lifecycle operations as service tools
type Provider struct {
	resolver    *containers.Resolver
	presets     []presets.Preset
	defaultMode containers.Mode
}

// NewProvider creates a containers provider
func NewProvider(resolver *containers.Resolver, list []presets.Preset, defaultMode containers.Mode) *Provider {
	if defaultMode == "" {
		defaultMode = containers.ModeTerminal
	}
	return &Provider{resolver: resolver, presets: list, defaultMode: defaultMode}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	nameParam := types.Parameter{
		Name:        "name",
		Type:        "string",
		Description: "Image and container name (lowercased)",
		Required:    true,
	}

	return types.Service{
		ID:          "containers",
		Name:        "Container Lifecycle",
		Description: "Resume or create interactive containers from preset images",
		Category:    types.CategoryContainers,
		Capabilities: []string{
			"count",
			"resume",
			"create",
			"launch",
			"pty",
		},
		Tools: []types.Tool{
			{
				ID:          "containers.presets",
				Name:        "List Presets",
				Description: "Container buttons offered by the panel",
				Returns:     "array",
			},
			{
				ID:          "containers.count",
				Name:        "Count Instances",
				Description: "Count local instances matching a name",
				Parameters:  []types.Parameter{nameParam},
				Returns:     "number",
			},
			{
				ID:          "containers.decide",
				Name:        "Decide Action",
				Description: "Report whether a launch would resume or create, without launching",
				Parameters:  []types.Parameter{nameParam},
				Returns:     "decision",
			},
			{
				ID:          "containers.launch",
				Name:        "Launch Container",
				Description: "Resume an existing instance or create and run a new one",
				Parameters: []types.Parameter{
					nameParam,
					{Name: "mode", Type: "string", Description: "terminal or pty", Required: false},
				},
				Returns: "launch",
			},
		},
	}
}

// Execute routes to appropriate operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "containers.presets":
		return success(map[string]interface{}{"presets": p.presets, "count": len(p.presets)})
	case "containers.count":
		return p.count(ctx, params)
	case "containers.decide":
		return p.decide(ctx, params)
	case "containers.launch":
		return p.launch(ctx, params)
	default:
		return nil, fmt.Errorf("unknown tool: %s", toolID)
	}
}

func (p *Provider) count(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	name, ok := params["name"].(string)
	if !ok || name == "" {
		return failure("name is required")
	}

	n, err := p.resolver.Count(ctx, name)
	if err != nil {
		return failure(err.Error())
	}
	return success(map[string]interface{}{"name": name, "count": n})
}

func (p *Provider) decide(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	name, ok := params["name"].(string)
	if !ok || name == "" {
		return failure("name is required")
	}

	d, err := p.resolver.Decide(ctx, name)
	if err != nil {
		return failure(err.Error())
	}
	return success(map[string]interface{}{
		"name":   d.Name,
		"action": d.Action,
		"count":  d.Count,
	})
}

func (p *Provider) launch(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	name, ok := params["name"].(string)
	if !ok || name == "" {
		return failure("name is required")
	}

	mode := p.defaultMode
	if m, _ := params["mode"].(string); m != "" {
		mode = containers.Mode(m)
	}

	launch, err := p.resolver.Resolve(ctx, name, mode)
	if err != nil {
		return failure(err.Error())
	}
	return success(map[string]interface{}{"launch": launch})
}

func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

func failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg}, nil
}
