package report

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/sizewatch/pkg/sizewatch/types"
)

// Section pairs a display label with the diff result for one directory.
type Section struct {
	Name   string
	Result *Result
}

// outputDirNames are conventional build-output directory names. A
// directory with one of these base names is labeled after its parent,
// which is the more meaningful name in a monorepo ("web" rather than five
// sections all called "dist").
var outputDirNames = map[string]bool{
	"dist":   true,
	"build":  true,
	"out":    true,
	"output": true,
	"public": true,
}

// SectionName derives the display label for a scanned directory.
func SectionName(dir string) string {
	clean := filepath.ToSlash(filepath.Clean(dir))
	base := path.Base(clean)
	if outputDirNames[base] {
		parent := path.Base(path.Dir(clean))
		if parent != "." && parent != "/" && parent != "" {
			return parent
		}
	}
	return base
}

// Markdown renders the result as a GitHub-flavored Markdown table. Without
// a baseline the table has two columns (File, Size); with one it has four
// (File, Base, Head, Delta). When withTotal is set a bolded totals row is
// appended.
func (r *Result) Markdown(withTotal bool) string {
	var b strings.Builder

	if r.HasBaseline {
		b.WriteString("| File | Base | Head | Delta |\n")
		b.WriteString("|------|------|------|-------|\n")
		for _, row := range r.Rows {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				row.File,
				types.FormatSize(row.BaseSize),
				types.FormatSize(row.HeadSize),
				row.Delta)
		}
		if withTotal {
			fmt.Fprintf(&b, "| **Total** | **%s** | **%s** | **%s** |\n",
				types.FormatSize(r.TotalBase),
				types.FormatSize(r.TotalHead),
				FormatDelta(r.TotalHead, r.TotalBase))
		}
		return b.String()
	}

	b.WriteString("| File | Size |\n")
	b.WriteString("|------|------|\n")
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "| %s | %s |\n", row.File, types.FormatSize(row.HeadSize))
	}
	if withTotal {
		fmt.Fprintf(&b, "| **Total** | **%s** |\n", types.FormatSize(r.TotalHead))
	}
	return b.String()
}

// Document assembles the full report body posted to pull requests and job
// summaries. A single section renders as one table; multiple sections get
// a top-level summary table with one totals row per directory, followed by
// a collapsible per-directory table each. The hidden Marker prefix lets a
// later run find and update the comment.
func Document(sections []Section) string {
	var b strings.Builder
	b.WriteString(Marker)
	b.WriteString("\n\n## 📦 Build size report\n\n")

	if len(sections) == 1 {
		b.WriteString(sections[0].Result.Markdown(true))
		return b.String()
	}

	hasBaseline := false
	for _, s := range sections {
		if s.Result.HasBaseline {
			hasBaseline = true
			break
		}
	}

	if hasBaseline {
		b.WriteString("| Directory | Base | Head | Delta |\n")
		b.WriteString("|-----------|------|------|-------|\n")
		for _, s := range sections {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				s.Name,
				types.FormatSize(s.Result.TotalBase),
				types.FormatSize(s.Result.TotalHead),
				FormatDelta(s.Result.TotalHead, s.Result.TotalBase))
		}
	} else {
		b.WriteString("| Directory | Size |\n")
		b.WriteString("|-----------|------|\n")
		for _, s := range sections {
			fmt.Fprintf(&b, "| %s | %s |\n", s.Name, types.FormatSize(s.Result.TotalHead))
		}
	}

	for _, s := range sections {
		fmt.Fprintf(&b, "\n<details>\n<summary>%s</summary>\n\n", s.Name)
		b.WriteString(s.Result.Markdown(true))
		b.WriteString("\n</details>\n")
	}
	return b.String()
}
