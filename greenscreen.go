package greenscreen

import (
	"context"
	_ "embed"
	"strings"

	"github.com/aretw0/greenscreen/pkg/catalog"
	"github.com/aretw0/greenscreen/pkg/client"
	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/aretw0/greenscreen/pkg/host"
)

//go:embed VERSION
var version string

// Version is the release of this module.
var Version = strings.TrimSpace(version)

// Definitions is a loaded catalog and, for hosts, its navigation rules.
type Definitions struct {
	Catalog    *domain.Catalog
	Navigation *domain.NavigationConfig
}

// Load reads a catalog and, when navigationPath is non-empty, the navigation
// rules checked against it.
func Load(catalogPath, navigationPath string) (*Definitions, error) {
	cat, err := catalog.LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	defs := &Definitions{Catalog: cat}
	if navigationPath != "" {
		nav, err := catalog.LoadNavigation(navigationPath, cat)
		if err != nil {
			return nil, err
		}
		defs.Navigation = nav
	}
	return defs, nil
}

// NewHost loads definitions and returns a simulator ready to serve.
func NewHost(catalogPath, navigationPath string, opts ...host.Option) (*host.Server, error) {
	if navigationPath == "" {
		return nil, &domain.ConfigError{Source: "navigation", Problems: []string{"a navigation file is required"}}
	}
	defs, err := Load(catalogPath, navigationPath)
	if err != nil {
		return nil, err
	}
	return host.NewServer(host.NewNavigator(defs.Catalog, defs.Navigation), opts...), nil
}

// NewClient loads a catalog and returns a workflow engine for it.
func NewClient(catalogPath string, opts ...client.Option) (*client.Engine, error) {
	cat, err := catalog.LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	return client.NewEngine(cat, opts...), nil
}

// RunWorkflow loads the catalog and workflow, checks them against each other
// and runs the workflow. The error is non-nil only for configuration problems;
// run failures are reported in the Result.
func RunWorkflow(ctx context.Context, catalogPath, workflowPath string, vars map[string]string, opts ...client.Option) (*domain.Result, error) {
	cat, err := catalog.LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	wf, err := catalog.LoadWorkflow(workflowPath)
	if err != nil {
		return nil, err
	}
	if err := catalog.CheckWorkflow(wf, cat); err != nil {
		return nil, err
	}
	return client.NewEngine(cat, opts...).Run(ctx, wf, vars), nil
}
