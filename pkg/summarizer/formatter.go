// Package summarizer provides summary generation for recording results.
package summarizer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Formatter defines the interface for formatting a Summary.
type Formatter interface {
	// Format converts a Summary to a formatted string.
	Format(summary *Summary) string
}

// FormatFunc is a function adapter for the Formatter interface.
type FormatFunc func(summary *Summary) string

// Format implements the Formatter interface.
func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// Text formats a summary as a few plain lines for the terminal:
// one per written file, failed files marked with their error.
var Text Formatter = FormatFunc(formatText)

func formatText(s *Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, %s)\n", s.Session.ID, s.Session.Mode, formatDuration(s.Session.Duration))
	for _, a := range s.Artifacts {
		fmt.Fprintf(&b, "  %s  %s  %d frames  %s", filepath.Base(a.Path), strings.Join(a.Devices, ", "), a.Frames, formatBytes(a.Bytes))
		if a.Error != "" {
			fmt.Fprintf(&b, "  FAILED: %s", a.Error)
		}
		b.WriteString("\n")
	}
	return b.String()
}
