package summarizer

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// MarkdownFormatter formats a Summary as Markdown.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate labels.
func WithTranslator(translate func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = translate
	}
}

// WithVersion adds the program version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter. Labels are English unless a translator is set.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Recording Summary"))

	if s.Session.ID != "" {
		fmt.Fprintf(&b, "- **%s**: %s\n", t("Session"), s.Session.ID)
	}
	if s.Session.Mode != "" {
		fmt.Fprintf(&b, "- **%s**: %s\n", t("Mode"), s.Session.Mode)
	}
	if !s.Session.StartedAt.IsZero() {
		fmt.Fprintf(&b, "- **%s**: %s\n", t("Started"), s.Session.StartedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(&b, "- **%s**: %s\n\n", t("Duration"), formatDuration(s.Session.Duration))

	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	if s.Settings.Backend != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Backend"), s.Settings.Backend)
	}
	if s.Settings.Format != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Format"), s.Settings.Format)
	}
	fmt.Fprintf(&b, "| %s | %s |\n", t("Capture"), f.formatCapture(s.Settings))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Codec"), orDefault(s.Settings.Codec, t("default")))
	if s.Settings.Bitrate > 0 {
		fmt.Fprintf(&b, "| %s | %d kbps |\n", t("Bitrate"), s.Settings.Bitrate)
	}
	if s.Settings.Quality > 0 {
		fmt.Fprintf(&b, "| %s | CRF %d |\n", t("Quality"), s.Settings.Quality)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Files"))
	if len(s.Artifacts) == 0 {
		fmt.Fprintf(&b, "%s\n\n", t("No files were written"))
	} else {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n|---|---|---:|---:|---|\n",
			t("File"), t("Cameras"), t("Frames"), t("Size"), t("Status"))
		for _, a := range s.Artifacts {
			status := t("OK")
			if a.Error != "" {
				status = strings.ReplaceAll(a.Error, "|", "\\|")
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %s | %s |\n",
				filepath.Base(a.Path), strings.Join(a.Devices, ", "), a.Frames, formatBytes(a.Bytes), status)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	if f.version != "" {
		fmt.Fprintf(&b, "%s duocam %s, %s\n", t("Generated by"), f.version, s.GeneratedAt.Format(time.RFC3339))
	} else {
		fmt.Fprintf(&b, "%s duocam, %s\n", t("Generated by"), s.GeneratedAt.Format(time.RFC3339))
	}

	return b.String()
}

func (f *MarkdownFormatter) formatCapture(s Settings) string {
	size := f.translate("device default")
	if s.Width > 0 && s.Height > 0 {
		size = fmt.Sprintf("%dx%d", s.Width, s.Height)
	}
	if s.FPS > 0 {
		return fmt.Sprintf("%s @ %.4g fps", size, s.FPS)
	}
	return size
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatBytes(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.2f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.2f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

var _ Formatter = (*MarkdownFormatter)(nil)
