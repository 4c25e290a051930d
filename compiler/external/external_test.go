package external

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/optimizer"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/symtab"
)

func TestZipArchiverWritesManifestAndFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Main.class"), []byte("classfile"), 0o644))

	out := filepath.Join(t.TempDir(), "out.jar")

	a := ZipArchiver{}
	err := a.Archive(context.Background(), dir, Manifest{ManifestVersion: "1.0", MainClass: "Main", Producer: "ilc"}, out)
	require.NoError(t, err)

	r, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer r.Close()

	names := map[string]bool{}
	for _, f := range r.File {
		names[f.Name] = true
	}

	require.True(t, names["META-INF/MANIFEST.json"])
	require.True(t, names["Main.class"])
}

func TestHTMLDotReporterRendersBoth(t *testing.T) {
	table := symtab.New()
	table.DeclareRoutine(symtab.Routine{Name: "add", Params: nil, ReturnType: nil})

	res := optimizer.Result{
		Details: []optimizer.Detail{
			{Kind: "constant-fold", Description: "folded 1 + 2", Before: "1 + 2", After: "3", Line: 4},
		},
		Count: 1,
	}

	var html, dot bytes.Buffer

	rep := HTMLDotReporter{}
	err := rep.Report(context.Background(), res, table, &html, &dot)
	require.NoError(t, err)

	require.True(t, strings.Contains(html.String(), "constant-fold"))
	require.True(t, strings.Contains(dot.String(), "digraph routines"))
	require.True(t, strings.Contains(dot.String(), `"add"`))
}
