// Command ilc is the batch compiler's CLI: it reads one IL source
// file, runs it through the pipeline in compiler.Compile, and leaves
// the emitted assembly units (plus, optionally, a class archive and a
// visualization report) in the configured output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nikand.dev/go/cli"
	"tlog.app/go/tlog"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/config"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/external"
	"github.com/egorTorshin/IU-Compilers-Construction/compiler/format"
)

func main() {
	app := &cli.Command{
		Name:        "ilc",
		Description: "ilc compiles IL source files to Jasmin-dialect assembly",
		Action:      run,
		Args:        cli.Args{},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func run(c *cli.Command) error {
	fs := flag.NewFlagSet("ilc", flag.ContinueOnError)

	optimize := fs.Bool("optimize", false, "run the constant-fold/dead-code/unused-variable passes")
	fs.BoolVar(optimize, "O", false, "shorthand for -optimize")
	debug := fs.Bool("debug", false, "keep intermediate assembly units instead of only the archive, and log every pipeline stage")
	visualize := fs.Bool("visualize", false, "write an HTML optimization report and a Graphviz DOT file of the program's routines")
	fs.BoolVar(visualize, "V", false, "shorthand for -visualize")
	verbose := fs.Bool("verbose", false, "log every pipeline stage")
	fs.BoolVar(verbose, "v", false, "shorthand for -verbose")
	outDir := fs.String("out", "", "output directory for emitted units and archive")
	assembler := fs.String("assembler", "", "path to the assembler jar, overriding ilc.toml")
	testAll := fs.Bool("test-all", false, "compile every tests/*.txt fixture instead of a single file")

	if err := fs.Parse([]string(c.Args)); err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	ifSet := func(p *bool, names ...string) *bool {
		for _, name := range names {
			if set[name] {
				return p
			}
		}

		return nil
	}

	ctx := context.Background()

	if *verbose || *debug {
		ctx = tlog.ContextWithSpan(ctx, tlog.Root())
	}

	cfgPath := config.Find(".")
	if cfgPath == "" {
		cfgPath = config.FileName
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	cfg = cfg.Merge(config.Overrides{
		Optimize:  ifSet(optimize, "optimize", "O"),
		Debug:     ifSet(debug, "debug"),
		Visualize: ifSet(visualize, "visualize", "V"),
		Assembler: *assembler,
		OutDir:    *outDir,
	})

	if *testAll {
		return runTestAll(ctx, cfg, *verbose)
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("ilc: expected exactly one source file, got %d", fs.NArg())
	}

	return compileOne(ctx, fs.Arg(0), cfg)
}

func compileOne(ctx context.Context, path string, cfg config.Config) error {
	// In debug mode, intermediate .j/.class units are written straight
	// into the output directory and kept; otherwise they live in a
	// scratch directory from os.MkdirTemp that the deferred RemoveAll
	// deletes once the archive has been built from it.
	buildDir := cfg.OutDir
	if !cfg.Debug {
		tmp, err := os.MkdirTemp("", "ilc-build-*")
		if err != nil {
			return err
		}

		defer os.RemoveAll(tmp)

		buildDir = tmp
	} else if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}

	sess, err := external.NewSession(buildDir)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := compiler.CompileFile(ctx, path, cfg.Optimize)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if cfg.Debug {
		if err := writeDebugAST(sess, base, res); err != nil {
			return err
		}
	}

	files, err := writeUnits(sess, res)
	if err != nil {
		return err
	}

	if cfg.Visualize {
		if err := writeReport(ctx, sess, res, base); err != nil {
			return err
		}
	}

	asm := external.ExecAssembler{Path: cfg.Assembler}

	exitCode, err := asm.Assemble(ctx, sess.Dir, files)
	if err != nil {
		return fmt.Errorf("assemble %v: %w (exit %d)", path, err, exitCode)
	}

	archivePath := filepath.Join(cfg.OutDir, base+cfg.ArchiveExt)

	ar := external.ZipArchiver{}

	manifest := external.Manifest{ManifestVersion: "1.0", MainClass: "Main", Producer: "ilc"}
	if err := ar.Archive(ctx, sess.Dir, manifest, archivePath); err != nil {
		return err
	}

	fmt.Printf("wrote %s\n", archivePath)

	return nil
}

// writeUnits writes every record unit followed by the Main unit to the
// session directory as ".j" assembly text files, returning their paths
// in assembler-ready order: the assembler must see the record types a
// unit depends on before that unit itself.
func writeUnits(sess *external.Session, res *compiler.Result) ([]string, error) {
	var files []string

	names := make([]string, 0, len(res.Output.Records))
	for name := range res.Output.Records {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		path, err := sess.WriteUnit(name+".j", res.Output.Records[name])
		if err != nil {
			return nil, err
		}

		files = append(files, path)
	}

	mainPath, err := sess.WriteUnit("Main.j", res.Output.MainUnit)
	if err != nil {
		return nil, err
	}

	files = append(files, mainPath)

	return files, nil
}

// writeDebugAST dumps the post-optimization AST back to IL-like source
// text, so --debug runs let a developer see what the optimizer passes
// actually did to the program without reading bytecode.
func writeDebugAST(sess *external.Session, base string, res *compiler.Result) error {
	text, err := format.Program(nil, res.Program)
	if err != nil {
		return err
	}

	_, err = sess.WriteUnit(base+"-ast.il", text)

	return err
}

func writeReport(ctx context.Context, sess *external.Session, res *compiler.Result, base string) error {
	htmlFile, err := os.Create(filepath.Join(sess.Dir, base+"-report.html"))
	if err != nil {
		return err
	}
	defer htmlFile.Close()

	dotFile, err := os.Create(filepath.Join(sess.Dir, base+"-calls.dot"))
	if err != nil {
		return err
	}
	defer dotFile.Close()

	rep := external.HTMLDotReporter{}

	return rep.Report(ctx, res.Optimized, res.Table, htmlFile, dotFile)
}

// runTestAll compiles every tests/*.txt fixture, reporting pass/fail
// per file without stopping at the first failure, mirroring
// original_source Main.java's runAllTests sweep behavior: failures are
// always named, but a failure's full diagnostic list is only printed
// when verbose is set, matching --verbose | -v's "expand test errors"
// contract.
func runTestAll(ctx context.Context, cfg config.Config, verbose bool) error {
	matches, err := filepath.Glob("tests/*.txt")
	if err != nil {
		return err
	}

	sort.Strings(matches)

	var failed int
	var failedNames []string

	for _, path := range matches {
		_, err := compiler.CompileFile(ctx, path, cfg.Optimize)
		if err != nil {
			failed++
			failedNames = append(failedNames, path)
			fmt.Printf("FAIL %s\n", path)

			if verbose {
				fmt.Printf("    %v\n", err)
			}

			continue
		}

		fmt.Printf("ok   %s\n", path)
	}

	fmt.Printf("%d/%d passed\n", len(matches)-failed, len(matches))

	if failed > 0 && !verbose {
		fmt.Println("\nFailed tests:")

		for _, name := range failedNames {
			fmt.Printf("  - %s\n", name)
		}

		fmt.Println("\nrun with --verbose to see full diagnostics")
	}

	if failed > 0 {
		return fmt.Errorf("ilc: %d fixture(s) failed", failed)
	}

	return nil
}
