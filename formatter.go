package harvest

import "strings"

// FormatPages renders pages as one markdown stream, each under a "## <url>"
// heading. Pages with no content keep their heading so gaps stay visible.
func FormatPages(pages []*Page) string {
	if len(pages) == 0 {
		return ""
	}

	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		section := "## " + p.URL
		if content := strings.TrimSpace(p.Content); content != "" {
			section += "\n\n" + content
		}
		parts = append(parts, section)
	}

	return strings.Join(parts, "\n\n")
}
