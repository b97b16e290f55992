package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/sizewatch/pkg/sizewatch/types"
)

func TestSectionName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dir  string
		want string
	}{
		{"dist", "dist"},
		{"packages/web/dist", "web"},
		{"packages/api/build", "api"},
		{"frontend/out", "frontend"},
		{"docs/public", "docs"},
		{"apps/site", "site"},
		{"./dist", "dist"},
		{"monorepo/packages/admin/dist", "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SectionName(tt.dir))
		})
	}
}

func TestMarkdown_NoBaseline(t *testing.T) {
	t.Parallel()

	res := Diff(types.Snapshot{{File: "a.js", Size: 100}}, nil, "assets")
	md := res.Markdown(true)

	lines := strings.Split(strings.TrimSpace(md), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| File | Size |", lines[0])
	assert.Equal(t, "|------|------|", lines[1])
	assert.Equal(t, "| a.js | 100 B |", lines[2])
	assert.Equal(t, "| **Total** | **100 B** |", lines[3])
}

func TestMarkdown_WithBaseline(t *testing.T) {
	t.Parallel()

	current := types.Snapshot{{File: "a.js", Size: 200}}
	base := types.Snapshot{{File: "a.js", Size: 100}}
	md := Diff(current, base, "assets").Markdown(true)

	lines := strings.Split(strings.TrimSpace(md), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| File | Base | Head | Delta |", lines[0])
	assert.Equal(t, "| a.js | 100 B | 200 B | +100 B (+100.00%) 📈 |", lines[2])
	assert.Equal(t, "| **Total** | **100 B** | **200 B** | **+100 B (+100.00%) 📈** |", lines[3])
}

func TestMarkdown_WithoutTotal(t *testing.T) {
	t.Parallel()

	md := Diff(types.Snapshot{{File: "a.js", Size: 100}}, nil, "assets").Markdown(false)
	assert.NotContains(t, md, "Total")
}

func TestMarkdown_RowsInPriorityOrder(t *testing.T) {
	t.Parallel()

	current := types.Snapshot{
		{File: "readme.txt", Size: 1},
		{File: "assets/app.js", Size: 2},
		{File: "index.js", Size: 3},
	}
	md := Diff(current, nil, "assets").Markdown(false)

	appIdx := strings.Index(md, "assets/app.js")
	indexIdx := strings.Index(md, "index.js")
	readmeIdx := strings.Index(md, "readme.txt")
	assert.Less(t, appIdx, indexIdx)
	assert.Less(t, indexIdx, readmeIdx)
}

func TestDocument_SingleSection(t *testing.T) {
	t.Parallel()

	res := Diff(types.Snapshot{{File: "a.js", Size: 100}}, nil, "assets")
	doc := Document([]Section{{Name: "web", Result: res}})

	assert.True(t, strings.HasPrefix(doc, Marker))
	assert.Contains(t, doc, "## 📦 Build size report")
	assert.Contains(t, doc, "| a.js | 100 B |")
	assert.NotContains(t, doc, "<details>")
}

func TestDocument_MultipleSections(t *testing.T) {
	t.Parallel()

	web := Diff(
		types.Snapshot{{File: "a.js", Size: 200}},
		types.Snapshot{{File: "a.js", Size: 100}},
		"assets")
	api := Diff(
		types.Snapshot{{File: "b.js", Size: 50}},
		types.Snapshot{{File: "b.js", Size: 50}},
		"assets")

	doc := Document([]Section{
		{Name: "web", Result: web},
		{Name: "api", Result: api},
	})

	assert.True(t, strings.HasPrefix(doc, Marker))

	// Summary table has one totals row per directory.
	assert.Contains(t, doc, "| Directory | Base | Head | Delta |")
	assert.Contains(t, doc, "| web | 100 B | 200 B | +100 B (+100.00%) 📈 |")
	assert.Contains(t, doc, "| api | 50 B | 50 B | no change |")

	// Each directory table is wrapped in a collapsible section.
	assert.Equal(t, 2, strings.Count(doc, "<details>"))
	assert.Contains(t, doc, "<summary>web</summary>")
	assert.Contains(t, doc, "<summary>api</summary>")
}

func TestDocument_MultipleSectionsNoBaseline(t *testing.T) {
	t.Parallel()

	web := Diff(types.Snapshot{{File: "a.js", Size: 100}}, nil, "assets")
	api := Diff(types.Snapshot{{File: "b.js", Size: 50}}, nil, "assets")

	doc := Document([]Section{
		{Name: "web", Result: web},
		{Name: "api", Result: api},
	})

	assert.Contains(t, doc, "| Directory | Size |")
	assert.Contains(t, doc, "| web | 100 B |")
	assert.Contains(t, doc, "| api | 50 B |")
}

func TestTerminal_RendersRowsAndTotal(t *testing.T) {
	t.Parallel()

	current := types.Snapshot{{File: "a.js", Size: 200}}
	base := types.Snapshot{{File: "a.js", Size: 100}}
	out := Diff(current, base, "assets").Terminal("dist")

	assert.Contains(t, out, "dist")
	assert.Contains(t, out, "a.js")
	assert.Contains(t, out, "Total")
}
