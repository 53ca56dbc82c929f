package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/greenscreen/pkg/catalog"
)

// ValidateOptions names the definition files to check.
type ValidateOptions struct {
	Catalog    string
	Navigation string
	Workflows  []string
	Out        io.Writer
}

// Validate loads every named file, checking navigation and workflows against
// the catalog. All problems are reported, not just the first.
func Validate(opts ValidateOptions) error {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	cat, err := catalog.LoadCatalog(opts.Catalog)
	if err != nil {
		fmt.Fprintf(out, "✗ %s\n", err)
		return err
	}
	fmt.Fprintf(out, "✓ catalog %s: %d screens\n", opts.Catalog, cat.Len())

	var errs []error
	if opts.Navigation != "" {
		nav, err := catalog.LoadNavigation(opts.Navigation, cat)
		if err != nil {
			fmt.Fprintf(out, "✗ %s\n", err)
			errs = append(errs, err)
		} else {
			fmt.Fprintf(out, "✓ navigation %s: %d rules\n", opts.Navigation, len(nav.Rules))
		}
	}
	for _, path := range opts.Workflows {
		wf, err := catalog.LoadWorkflow(path)
		if err == nil {
			err = catalog.CheckWorkflow(wf, cat)
		}
		if err != nil {
			fmt.Fprintf(out, "✗ %s\n", err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "✓ workflow %s: %d steps\n", wf.Name, len(wf.Steps))
	}
	return errors.Join(errs...)
}
