// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/huangsam/chartaxis/internal/contract"
	"golang.org/x/term"
)

// getMaxTableTextWidth calculates the maximum width for free-text cells (series names, times)
// in table output based on terminal width.
func getMaxTableTextWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Change + Rows + Index + Value + Edge columns with borders/padding
	baseWidth := 60

	available := (termWidth - baseWidth) / 2 // series name and time share the rest
	if available < 10 {
		return 10
	}
	if available > 40 {
		return 40
	}
	return available
}
