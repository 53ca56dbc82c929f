package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/greenscreen/internal/presentation/tui"
	"github.com/aretw0/greenscreen/pkg/catalog"
	"github.com/aretw0/greenscreen/pkg/datastream"
	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/aretw0/greenscreen/pkg/host"
)

// Preview paints a catalog screen the way the simulator sends it and draws
// the decoded buffer. data fills display fields; errText goes on the error row.
func Preview(w io.Writer, catalogPath, screenID string, data map[string]string, errText string) error {
	cat, err := catalog.LoadCatalog(catalogPath)
	if err != nil {
		return err
	}
	def, ok := cat.Screen(screenID)
	if !ok {
		return fmt.Errorf("screen %q is not in the catalog", screenID)
	}
	state := domain.NewSessionState("preview", def.ID)
	state.Merge(data)

	buf, err := datastream.DecodeScreen(host.Render(def, state, errText), nil)
	if err != nil {
		return err
	}
	tui.DumpScreen(w, buf)
	return nil
}
