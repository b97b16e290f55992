package normalize

import "testing"

func TestName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"eight char hash", "app-Ckdnwnhq.js", "app.js"},
		{"ten char hash", "app-Ckdnwnhq12.js", "app.js"},
		{"hash with underscore", "vendor-a_b1c2d3e4.js", "vendor.js"},
		{"hash with hyphen inside", "chunk-ab-cd-ef12.js", "chunk.js"},
		{"seven chars too short", "app-abcdefg.js", "app-abcdefg.js"},
		{"eleven chars too long", "app-abcdefghijk.js", "app-abcdefghijk.js"},
		{"no hyphen", "application.js", "application.js"},
		{"no extension", "app-Ckdnwnhq", "app-Ckdnwnhq"},
		{"css asset", "index-B2kfpW3q.css", "index.css"},
		{"dot in token breaks match", "app-abcd1234.min.js", "app-abcd1234.min.js"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Name(tt.in); got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestName_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"app-Ckdnwnhq.js",
		"app.js",
		"app-abcdefgh-ijklmnop.js",
		"vendor-a_b1c2d3e4.css",
		"plain",
		"my-file-name.js",
	}

	for _, in := range inputs {
		once := Name(in)
		if twice := Name(once); twice != once {
			t.Errorf("Name not idempotent for %q: Name(%q) = %q", in, once, twice)
		}
	}
}

func TestPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		relPath   string
		assetsDir string
		want      string
	}{
		{"asset file normalized", "assets/app-Ckdnwnhq.js", "assets", "assets/app.js"},
		{"root file untouched", "app-Ckdnwnhq.js", "assets", "app-Ckdnwnhq.js"},
		{"nested asset normalized", "static/assets/js/app-Ckdnwnhq.js", "assets", "static/assets/js/app.js"},
		{"non-asset dir untouched", "vendor/app-Ckdnwnhq.js", "assets", "vendor/app-Ckdnwnhq.js"},
		{"empty assets dir disables", "assets/app-Ckdnwnhq.js", "", "assets/app-Ckdnwnhq.js"},
		{"file named like assets dir", "assets.js", "assets", "assets.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Path(tt.relPath, tt.assetsDir); got != tt.want {
				t.Errorf("Path(%q, %q) = %q, want %q", tt.relPath, tt.assetsDir, got, tt.want)
			}
		})
	}
}

func TestInAssets(t *testing.T) {
	t.Parallel()

	if InAssets("assets/app.js", "") {
		t.Error("InAssets with empty assetsDir = true, want false")
	}
	if !InAssets("assets/app.js", "assets") {
		t.Error("InAssets(assets/app.js, assets) = false, want true")
	}
	if InAssets("app.js", "assets") {
		t.Error("InAssets(app.js, assets) = true, want false")
	}
}
