package external

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"

	"github.com/segmentio/encoding/json"
	"tlog.app/go/errors"
)

// Manifest is the jar manifest entry the archiver writes alongside the
// class files it collects.
type Manifest struct {
	ManifestVersion string `json:"manifest-version"`
	MainClass       string `json:"main-class"`
	Producer        string `json:"producer"`
}

// Archiver bundles a directory tree of class files plus a manifest
// into a single runnable archive.
type Archiver interface {
	Archive(ctx context.Context, dir string, manifest Manifest, out string) error
}

// ZipArchiver walks dir and writes every regular file it finds into a
// zip archive at out, with the manifest encoded as a
// META-INF/MANIFEST.json entry (a jar's manifest is normally a text
// file, but this compiler's own archive format keeps the manifest as
// JSON so the reporter and the archiver share one encoding).
type ZipArchiver struct{}

func (ZipArchiver) Archive(ctx context.Context, dir string, manifest Manifest, out string) error {
	f, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "create archive %v", out)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	manifestData, err := json.Marshal(manifest)
	if err != nil {
		return errors.Wrap(err, "marshal manifest")
	}

	if err := writeZipEntry(zw, "META-INF/MANIFEST.json", manifestData); err != nil {
		return err
	}

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		return writeZipEntry(zw, filepath.ToSlash(rel), data)
	})
	if err != nil {
		return errors.Wrap(err, "walk output directory %v", dir)
	}

	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "close archive %v", out)
	}

	return nil
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return errors.Wrap(err, "create archive entry %v", name)
	}

	_, err = w.Write(data)
	if err != nil {
		return errors.Wrap(err, "write archive entry %v", name)
	}

	return nil
}
