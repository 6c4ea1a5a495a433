package packages

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/packages"
	"github.com/GriffinCanCode/SystemManager/backend/internal/shared/types"
)

// Provider exposes the repository catalog as service tools
type Provider struct {
	store   *packages.Store
	lister  packages.RepositoryLister
	querier packages.PackageQuerier
}

// NewProvider creates a packages provider
func NewProvider(store *packages.Store, lister packages.RepositoryLister, querier packages.PackageQuerier) *Provider {
	return &Provider{store: store, lister: lister, querier: querier}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "packages",
		Name:        "Package Repositories",
		Description: "Repository catalog built from the system package manager",
		Category:    types.CategoryPackages,
		Capabilities: []string{
			"catalog",
			"repositories",
			"query",
			"refresh",
		},
		Tools: []types.Tool{
			{
				ID:          "packages.catalog",
				Name:        "Get Catalog",
				Description: "Return the current repository catalog, building it if needed",
				Parameters: []types.Parameter{
					{Name: "repository", Type: "string", Description: "Only return this repository", Required: false},
				},
				Returns: "catalog",
			},
			{
				ID:          "packages.refresh",
				Name:        "Refresh Catalog",
				Description: "Rebuild the repository catalog",
				Returns:     "catalog",
			},
			{
				ID:          "packages.repositories",
				Name:        "List Repositories",
				Description: "Enumerate configured repositories",
				Returns:     "array",
			},
			{
				ID:          "packages.query",
				Name:        "Query Repository",
				Description: "List package names provided by one repository",
				Parameters: []types.Parameter{
					{Name: "repository", Type: "string", Description: "Repository id", Required: true},
				},
				Returns: "array",
			},
		},
		DataModels: []types.DataModel{
			{
				Name: "catalog",
				Fields: map[string]string{
					"repositories": "array of {id, packages}",
					"failures":     "array of {repository, kind, error}",
					"built_at":     "timestamp",
				},
			},
		},
	}
}

// Execute routes to appropriate operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "packages.catalog":
		return p.catalog(ctx, params)
	case "packages.refresh":
		return p.refresh(ctx)
	case "packages.repositories":
		return p.repositories(ctx)
	case "packages.query":
		return p.query(ctx, params)
	default:
		return nil, fmt.Errorf("unknown tool: %s", toolID)
	}
}

func (p *Provider) catalog(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	catalog, err := p.store.Get(ctx)
	if err != nil {
		return failure(err.Error())
	}

	if repo, _ := params["repository"].(string); repo != "" {
		pkgs, ok := catalog.Packages(repo)
		if !ok {
			return failure(fmt.Sprintf("repository not in catalog: %s", repo))
		}
		return success(map[string]interface{}{
			"repository": repo,
			"packages":   pkgs,
			"count":      len(pkgs),
		})
	}
	return success(catalogData(catalog))
}

func (p *Provider) refresh(ctx context.Context) (*types.Result, error) {
	catalog, err := p.store.Refresh(ctx)
	if err != nil {
		return failure(err.Error())
	}
	return success(catalogData(catalog))
}

func (p *Provider) repositories(ctx context.Context) (*types.Result, error) {
	repos, err := p.lister.List(ctx)
	if err != nil {
		return failure(err.Error())
	}
	if repos == nil {
		repos = []packages.Repository{}
	}
	return success(map[string]interface{}{
		"repositories": repos,
		"count":        len(repos),
	})
}

func (p *Provider) query(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	repo, ok := params["repository"].(string)
	if !ok || repo == "" {
		return failure("repository is required")
	}

	pkgs, err := p.querier.Query(ctx, repo)
	if err != nil {
		return failure(err.Error())
	}
	return success(map[string]interface{}{
		"repository": repo,
		"packages":   pkgs,
		"count":      len(pkgs),
	})
}

func catalogData(c *packages.Catalog) map[string]interface{} {
	return map[string]interface{}{
		"repositories":  c.Entries,
		"failures":      c.Failures,
		"excluded":      c.Excluded,
		"built_at":      c.BuiltAt,
		"package_count": c.PackageCount(),
		"partial":       c.Partial(),
	}
}

func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

func failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg}, nil
}
