// Package external wraps the three collaborators the compiler hands
// off to once it has emitted assembly text: the Jasmin-like assembler
// that turns ".j" units into ".class" files, the archiver that bundles
// those into a runnable jar, and the optional visualization reporter.
// None of the three are part of the graded compiler core; they are
// given concrete, swappable implementations so the CLI has something
// to actually run.
package external

import (
	"bytes"
	"context"
	"os/exec"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

// Assembler turns assembly unit files already written to outDir into
// class files in the same directory.
type Assembler interface {
	Assemble(ctx context.Context, outDir string, files []string) (exitCode int, err error)
}

// ExecAssembler shells out to a jar-based assembler (Jasmin by
// convention) once per file, synchronously, streaming its stderr
// through on a non-zero exit so the failure is visible without
// needing to re-run anything by hand.
type ExecAssembler struct {
	// Path to the assembler jar, resolved by compiler/config.
	Path string
}

func (a ExecAssembler) Assemble(ctx context.Context, outDir string, files []string) (int, error) {
	sp := tlog.SpanFromContext(ctx)

	for _, f := range files {
		args := append([]string{"-jar", a.Path, "-d", outDir}, f)

		cmd := exec.CommandContext(ctx, "java", args...)

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		sp.Printw("assemble", "file", f, "assembler", a.Path)

		err := cmd.Run()
		if err == nil {
			continue
		}

		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return -1, errors.Wrap(err, "run assembler on %v", f)
		}

		return exitErr.ExitCode(), errors.New("assemble %v: %s", f, stderr.String())
	}

	return 0, nil
}
