package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/studiowebux/inplace/internal/keybinds"
)

// KeybindsOptions contains options for the keybinds command
type KeybindsOptions struct {
	Path   string
	Export bool // write the defaults to Path
}

// Keybinds validates a key binding file, or writes the defaults to it
func Keybinds(w io.Writer, opts KeybindsOptions) error {
	if opts.Export {
		if err := keybinds.SaveConfig(keybinds.ExportConfig(keybinds.NewDefaultRegistry()), opts.Path); err != nil {
			return err
		}
		fmt.Fprintf(w, "Default key bindings written to %s\n", opts.Path)
		return nil
	}

	if _, err := os.Stat(opts.Path); os.IsNotExist(err) {
		fmt.Fprintf(w, "%s not found, using default key bindings\n", opts.Path)
		return nil
	}
	cfg, err := keybinds.LoadConfig(opts.Path)
	if err != nil {
		return err
	}

	result := keybinds.NewValidator().ValidateConfig(cfg)
	if result.HasErrors() || result.HasWarnings() {
		fmt.Fprint(w, result.String())
	}
	if result.HasErrors() {
		return fmt.Errorf("invalid key bindings in %s", opts.Path)
	}
	fmt.Fprintf(w, "%s%s is valid%s\n", colorGreen, opts.Path, colorReset)
	return nil
}
