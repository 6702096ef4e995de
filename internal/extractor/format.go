package extractor

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

const pageSeparator = "\n\n"

var (
	pageMarker = regexp.MustCompile(`(?m)^=== PAGE (\d+) ===\n`)

	// Page text lines that look like a marker, with any backslashes already
	// prefixed, get one more backslash so they never split a page.
	markerLine  = regexp.MustCompile(`(?m)^(\\*=== PAGE \d+ ===)$`)
	escapedLine = regexp.MustCompile(`(?m)^\\(\\*=== PAGE \d+ ===)$`)
)

// Format writes pages as "=== PAGE <n> ===" sections, each followed by a blank
// line. Lines of page text that match a marker are escaped with a leading
// backslash; ParseFormatted removes it.
func Format(w io.Writer, pages []Page) error {
	for _, p := range pages {
		text := markerLine.ReplaceAllString(p.Text, `\${1}`)
		if _, err := fmt.Fprintf(w, "=== PAGE %d ===\n%s%s", p.Number, text, pageSeparator); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormatted splits text produced by Format back into pages.
func ParseFormatted(r io.Reader) ([]Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read formatted text: %w", err)
	}
	text := string(data)

	locs := pageMarker.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		if strings.TrimSpace(text) != "" {
			return nil, fmt.Errorf("no page markers found")
		}
		return nil, nil
	}
	if lead := text[:locs[0][0]]; strings.TrimSpace(lead) != "" {
		return nil, fmt.Errorf("text before first page marker")
	}

	pages := make([]Page, 0, len(locs))
	for i, loc := range locs {
		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			return nil, fmt.Errorf("page marker %q: %w", text[loc[0]:loc[1]], err)
		}
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimSuffix(text[loc[1]:end], pageSeparator)
		body = escapedLine.ReplaceAllString(body, "${1}")
		pages = append(pages, Page{Number: n, Text: body})
	}
	return pages, nil
}

// FormatJSON writes the result as an indented JSON object.
func FormatJSON(w io.Writer, res *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
