package architecture_test

import (
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/mod/modfile"
)

// layer groups directories under internal/. Files may import their own layer
// and the layers named in may; nothing else under internal/.
type layer struct {
	name string
	dirs []string
	may  []string
}

var layers = []layer{
	{name: "domain", dirs: []string{"domain"}},
	{name: "platform", dirs: []string{"platform", "normalization", "observability"}},
	{name: "data", dirs: []string{"data"}, may: []string{"domain", "platform"}},
	{name: "services", dirs: []string{"services"}, may: []string{"domain", "platform", "data"}},
	{name: "http", dirs: []string{"http"}, may: []string{"domain", "platform", "data", "services"}},
	{name: "app", dirs: []string{"app"}, may: []string{"domain", "platform", "data", "services", "http"}},
}

// layerOf maps a slash path relative to internal/ ("services/course.go" or
// "data/repos/directory") to its layer. Unlisted directories return nil.
func layerOf(rel string) *layer {
	top, _, _ := strings.Cut(rel, "/")
	for i := range layers {
		if slices.Contains(layers[i].dirs, top) {
			return &layers[i]
		}
	}
	return nil
}

func (l *layer) allows(other *layer) bool {
	return other == nil || other.name == l.name || slices.Contains(l.may, other.name)
}

func TestImportBoundaries(t *testing.T) {
	root, modulePath := moduleRoot(t)
	prefix := modulePath + "/internal/"
	fset := token.NewFileSet()

	var violations []string
	err := filepath.WalkDir(filepath.Join(root, "internal"), func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(p, ".go") {
			return err
		}
		rel, err := filepath.Rel(filepath.Join(root, "internal"), p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		from := layerOf(rel)
		if from == nil {
			return nil
		}

		f, err := parser.ParseFile(fset, p, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil || !strings.HasPrefix(imp, prefix) {
				continue
			}
			if to := layerOf(strings.TrimPrefix(imp, prefix)); !from.allows(to) {
				violations = append(violations, "internal/"+rel+" ("+from.name+") imports "+imp+" ("+to.name+")")
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk internal/: %v", err)
	}
	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n  %s", strings.Join(violations, "\n  "))
	}
}

func TestLayerOf(t *testing.T) {
	cases := map[string]string{
		"domain/bootcamp.go":               "domain",
		"domain/aggregates/rollup.go":      "domain",
		"platform/geocode/cache.go":        "platform",
		"observability/metrics.go":         "platform",
		"normalization/slug.go":            "platform",
		"data/repos/directory/bootcamp.go": "data",
		"services/course.go":               "services",
		"http/handlers/course.go":          "http",
		"app/app.go":                       "app",
		"architecture/imports_test.go":     "",
	}
	for rel, want := range cases {
		got := ""
		if l := layerOf(rel); l != nil {
			got = l.name
		}
		if got != want {
			t.Fatalf("layerOf(%q) = %q, want %q", rel, got, want)
		}
	}
}

func TestLayerRules(t *testing.T) {
	domain, platform, services, http := layerOf("domain"), layerOf("platform"), layerOf("services"), layerOf("http")
	switch {
	case domain.allows(platform):
		t.Fatalf("domain must not import platform")
	case platform.allows(domain):
		t.Fatalf("platform must not import domain")
	case services.allows(http):
		t.Fatalf("services must not import http")
	case !http.allows(services):
		t.Fatalf("http must be able to import services")
	}
}

func moduleRoot(t *testing.T) (string, string) {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
		if err == nil {
			mp := modfile.ModulePath(data)
			if mp == "" {
				t.Fatalf("no module directive in %s", filepath.Join(dir, "go.mod"))
			}
			return dir, mp
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("go.mod not found above working directory")
		}
		dir = parent
	}
}
