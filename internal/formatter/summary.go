package formatter

import (
	"bytes"
	"fmt"

	"github.com/desertthunder/tunedex/internal/models"
)

// SummaryText renders a run's tallies as the plain-text block printed when
// a command finishes.
func SummaryText(stats models.RunStats) []byte {
	var buf bytes.Buffer

	buf.WriteString("Run summary\n")
	buf.WriteString(fmt.Sprintf("  Processed: %d\n", stats.Processed))
	buf.WriteString(fmt.Sprintf("  Matched:   %d\n", stats.Matched))
	buf.WriteString(fmt.Sprintf("  Expanded:  %d\n", stats.Expanded))
	buf.WriteString(fmt.Sprintf("  Unmatched: %d\n", stats.Unmatched))
	buf.WriteString(fmt.Sprintf("  Filtered:  %d\n", stats.Filtered))
	buf.WriteString(fmt.Sprintf("  Rows out:  %d\n", stats.Rows))

	return buf.Bytes()
}
