package outwriter

import (
	"os"

	"github.com/huangsam/trackstat/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableNameWidth calculates the maximum width for feature names in table output
// based on terminal width and the width taken by the other columns.
func GetMaxTableNameWidth(cfg *contract.Config, otherColumns int) int {
	termWidth := cfg.Width
	if termWidth <= 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Borders, separators and padding
	available := termWidth - otherColumns - 10
	if available < 12 {
		return 12
	}
	if available > 48 {
		return 48
	}
	return available
}
