package locator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"utoipauto/internal/core/errors"
	"utoipauto/internal/engine/discover"
	"utoipauto/internal/engine/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocator(t *testing.T, opts Options) *Locator {
	t.Helper()
	loader, err := parser.NewGrammarLoader()
	require.NoError(t, err)
	p := parser.NewParser(loader)
	require.NoError(t, p.RegisterDefaultExtractors())
	l, err := New(p, opts)
	require.NoError(t, err)
	return l
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLocateDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "lib.rs"), "pub mod api;\n")
	writeFile(t, filepath.Join(src, "api", "mod.rs"), "pub mod pets;\n")
	writeFile(t, filepath.Join(src, "api", "pets.rs"), "#[utoipa::path(get)]\npub fn list() {}\n")
	writeFile(t, filepath.Join(src, "api", "notes.txt"), "not rust")
	writeFile(t, filepath.Join(src, "target", "gen.rs"), "fn generated() {}\n")
	writeFile(t, filepath.Join(src, "api", "pets_test.rs"), "fn t() {}\n")

	l := newLocator(t, Options{ExcludeDirs: []string{"target"}, ExcludeFiles: []string{"*_test.rs"}, Workers: 3})
	files, err := l.Locate(context.Background(), discover.Root{Path: src})
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, filepath.Join(src, "api", "mod.rs"), files[0].Path)
	assert.Equal(t, "crate::api", files[0].Module)
	assert.Equal(t, filepath.Join(src, "api", "pets.rs"), files[1].Path)
	assert.Equal(t, "crate::api::pets", files[1].Module)
	assert.Equal(t, "crate", files[2].Module)

	require.NotNil(t, files[1].Tree)
	require.Len(t, files[1].Tree.Items, 1)
	assert.Equal(t, "list", files[1].Tree.Items[0].Name)
	assert.NotEmpty(t, files[1].Source)
}

func TestLocateNamespacedRoots(t *testing.T) {
	dir := t.TempDir()
	controllers := filepath.Join(dir, "tests", "controllers")
	writeFile(t, filepath.Join(controllers, "controller1.rs"), "fn a() {}\n")
	writeFile(t, filepath.Join(controllers, "nested", "controller2.rs"), "fn b() {}\n")

	l := newLocator(t, Options{})

	files, err := l.Locate(context.Background(), discover.Root{Namespace: "crate::controllers", Path: controllers})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "crate::controllers::controller1", files[0].Module)
	assert.Equal(t, "crate::controllers::nested::controller2", files[1].Module)

	single := filepath.Join(controllers, "controller1.rs")
	files, err = l.Locate(context.Background(), discover.Root{Namespace: "crate::one", Path: single})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "crate::one", files[0].Module)
}

func TestLocateErrors(t *testing.T) {
	dir := t.TempDir()
	l := newLocator(t, Options{})

	_, err := l.Locate(context.Background(), discover.Root{Path: filepath.Join(dir, "missing")})
	assert.True(t, errors.IsCode(err, errors.CodeNotFound), "got %v", err)

	txt := filepath.Join(dir, "readme.md")
	writeFile(t, txt, "# readme")
	_, err = l.Locate(context.Background(), discover.Root{Path: txt})
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported), "got %v", err)

	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "good.rs"), "fn ok() {}\n")
	writeFile(t, filepath.Join(src, "bad.rs"), "pub struct {\n")
	_, err = l.Locate(context.Background(), discover.Root{Path: src})
	assert.True(t, errors.IsCode(err, errors.CodeParseFailure), "got %v", err)
}

func TestNewRejectsBadGlob(t *testing.T) {
	loader, err := parser.NewGrammarLoader()
	require.NoError(t, err)
	_, err = New(parser.NewParser(loader), Options{ExcludeDirs: []string{"["}})
	assert.Error(t, err)
}

func TestModuleName(t *testing.T) {
	tests := []struct {
		name      string
		root      discover.Root
		rootIsDir bool
		file      string
		want      string
	}{
		{name: "LibFile", root: discover.Root{Path: "./src/lib.rs"}, file: "./src/lib.rs", want: "crate"},
		{name: "MainFile", root: discover.Root{Path: "src"}, rootIsDir: true, file: "src/main.rs", want: "crate"},
		{name: "NestedFile", root: discover.Root{Path: "./src"}, rootIsDir: true, file: "src/routes/pets.rs", want: "crate::routes::pets"},
		{name: "ModFile", root: discover.Root{Path: "./src"}, rootIsDir: true, file: "src/routes/mod.rs", want: "crate::routes"},
		{name: "LastSrcWins", root: discover.Root{Path: "crates/src/api/src"}, rootIsDir: true, file: "crates/src/api/src/v1.rs", want: "crate::v1"},
		{name: "Hyphen", root: discover.Root{Path: "src"}, rootIsDir: true, file: "src/pet-store.rs", want: "crate::pet_store"},
		{name: "NoSrcDir", root: discover.Root{Path: "handlers"}, rootIsDir: true, file: "handlers/users.rs", want: "crate::users"},
		{name: "NoSrcFile", root: discover.Root{Path: "handlers/users.rs"}, file: "handlers/users.rs", want: "crate::users"},
		{name: "NamespaceFile", root: discover.Root{Namespace: "crate::api", Path: "src/api.rs"}, file: "src/api.rs", want: "crate::api"},
		{name: "NamespaceDir", root: discover.Root{Namespace: "crate::api", Path: "src/api"}, rootIsDir: true, file: "src/api/v1/mod.rs", want: "crate::api::v1"},
		{name: "NamespaceDirRootMod", root: discover.Root{Namespace: "crate::api", Path: "src/api"}, rootIsDir: true, file: "src/api/mod.rs", want: "crate::api"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ModuleName(tt.root, tt.rootIsDir, tt.file))
		})
	}
}
