package catalog

import (
	"fmt"
	"os"
	"slices"

	"github.com/aretw0/greenscreen/pkg/datastream"
	"github.com/aretw0/greenscreen/pkg/domain"
)

// LoadWorkflow reads and validates a workflow file.
func LoadWorkflow(path string) (*domain.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError(path, err)
	}
	return ParseWorkflow(data, path)
}

// ParseWorkflow decodes and validates a workflow source.
func ParseWorkflow(data []byte, source string) (*domain.Workflow, error) {
	docs, err := documents(data)
	if err != nil {
		return nil, configError(source, err)
	}
	if len(docs) != 1 {
		return nil, &domain.ConfigError{Source: source, Problems: []string{"expected exactly one workflow document"}}
	}
	var wf domain.Workflow
	if err := decodeInto(docs[0], &wf); err != nil {
		return nil, configError(source, err)
	}
	if err := wf.Validate(); err != nil {
		return nil, err
	}
	var problems []string
	for _, step := range wf.Steps {
		if step.Navigate == nil {
			continue
		}
		if _, err := datastream.ParseAID(step.Navigate.Key); err != nil {
			problems = append(problems, fmt.Sprintf("step %q: %v", step.Name, err))
		}
	}
	if len(problems) > 0 {
		return nil, &domain.ConfigError{Source: source, Problems: problems}
	}
	return &wf, nil
}

// CheckWorkflow cross-checks a workflow against a catalog, following the screens
// the steps expect in order. Fields on navigate steps whose screen is not yet
// known are checked against the whole catalog.
func CheckWorkflow(wf *domain.Workflow, cat *domain.Catalog) error {
	var problems []string
	add := func(format string, args ...any) { problems = append(problems, fmt.Sprintf(format, args...)) }

	var current *domain.ScreenDefinition
	lookup := func(step, id string) *domain.ScreenDefinition {
		s, ok := cat.Screen(id)
		if !ok {
			add("step %q: screen %q is not in the catalog", step, id)
			return nil
		}
		return s
	}
	checkFields := func(step string, on *domain.ScreenDefinition, names []string) {
		for _, name := range names {
			if on != nil {
				if _, ok := on.Field(name); !ok {
					add("step %q: field %q is not on screen %q", step, name, on.ID)
				}
				continue
			}
			if !slices.ContainsFunc(cat.Screens(), func(s *domain.ScreenDefinition) bool {
				_, ok := s.Field(name)
				return ok
			}) {
				add("step %q: field %q is not on any screen", step, name)
			}
		}
	}

	for _, step := range wf.Steps {
		switch step.Kind() {
		case domain.StepNavigate:
			names := make([]string, 0, len(step.Navigate.Fields))
			for name := range step.Navigate.Fields {
				names = append(names, name)
			}
			slices.Sort(names)
			checkFields(step.Name, current, names)
			current = nil
			if step.Navigate.Expect != "" {
				current = lookup(step.Name, step.Navigate.Expect)
			}
		case domain.StepScrape:
			on := current
			if step.Scrape.Screen != "" {
				on = lookup(step.Name, step.Scrape.Screen)
				if on == nil {
					continue
				}
			}
			checkFields(step.Name, on, step.Scrape.Fields)
		case domain.StepAssert:
			if step.Assert.Screen != "" {
				current = lookup(step.Name, step.Assert.Screen)
			}
			names := make([]string, 0, len(step.Assert.Fields))
			for _, fa := range step.Assert.Fields {
				names = append(names, fa.Field)
			}
			checkFields(step.Name, current, names)
		}
	}
	if len(problems) > 0 {
		return &domain.ConfigError{Source: "workflow " + wf.Name, Problems: problems}
	}
	return nil
}
