package extract

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/schollz/progressbar/v3"
	"github.com/ulikunitz/xz"

	"github.com/felixgeelhaar/qtforge/internal/domain/stage"
	"github.com/felixgeelhaar/qtforge/internal/ports"
)

// Builtin unpacks zip and tar archives (plain, gzip, xz or zstd) without an
// external tool. 7z archives are not supported.
type Builtin struct {
	progress io.Writer
	logger   ports.Logger
}

// NewBuiltin creates a Builtin extractor. Progress is drawn on progress;
// pass nil to disable it.
func NewBuiltin(progress io.Writer, logger ports.Logger) *Builtin {
	return &Builtin{progress: progress, logger: logger}
}

// Format names an archive format understood by Builtin.
type Format string

const (
	FormatZip    Format = "zip"
	FormatTar    Format = "tar"
	FormatTarGz  Format = "tar.gz"
	FormatTarXz  Format = "tar.xz"
	FormatTarZst Format = "tar.zst"
)

// DetectFormat returns the format of archive from its extension.
func DetectFormat(archive string) (Format, error) {
	name := strings.ToLower(filepath.Base(archive))
	switch {
	case strings.HasSuffix(name, ".zip"):
		return FormatZip, nil
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return FormatTarGz, nil
	case strings.HasSuffix(name, ".tar.xz"), strings.HasSuffix(name, ".txz"):
		return FormatTarXz, nil
	case strings.HasSuffix(name, ".tar.zst"):
		return FormatTarZst, nil
	case strings.HasSuffix(name, ".tar"):
		return FormatTar, nil
	default:
		return "", fmt.Errorf("unsupported archive format: %s", filepath.Base(archive))
	}
}

// Extract unpacks archive into destination, creating it if needed.
func (b *Builtin) Extract(ctx context.Context, archive, destination string) stage.Result {
	b.logger.Info(ctx, "extracting sources natively",
		ports.F("archive", archive),
		ports.F("destination", destination))

	err := b.extract(ctx, archive, destination)
	if err != nil {
		e := stage.New(stage.KindExtractionFailed, "native extraction failed: %v", err).
			WithPath(archive).
			WithUnderlying(err)
		if _, ferr := DetectFormat(archive); ferr != nil {
			e = e.WithSuggestion("use the external extractor (7-Zip) for this archive")
		}
		return stage.Failed(stage.Unpacked, e)
	}
	return stage.Succeeded(stage.Unpacked)
}

func (b *Builtin) extract(ctx context.Context, archive, destination string) error {
	format, err := DetectFormat(archive)
	if err != nil {
		return err
	}

	dest, err := filepath.Abs(destination)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create destination %s: %w", dest, err)
	}

	info, err := os.Stat(archive)
	if err != nil {
		return err
	}
	bar := b.newBar(info.Size(), filepath.Base(archive))
	defer func() { _ = bar.Close() }()

	if format == FormatZip {
		return unzip(ctx, archive, dest, bar)
	}

	f, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archive, err)
	}
	defer f.Close()

	var r io.Reader = io.TeeReader(f, bar)
	switch format {
	case FormatTarGz:
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	case FormatTarXz:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return fmt.Errorf("failed to create xz reader: %w", err)
		}
		r = xzr
	case FormatTarZst:
		zst, err := zstd.NewReader(r)
		if err != nil {
			return fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer zst.Close()
		r = zst
	}

	return untar(ctx, tar.NewReader(r), dest)
}

func (b *Builtin) newBar(size int64, description string) *progressbar.ProgressBar {
	w := b.progress
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
}

// target returns the path of an archive entry inside dest, rejecting
// entries that would escape it.
func target(dest, name string) (string, error) {
	path := filepath.Join(dest, name)
	if path != dest && !strings.HasPrefix(path, dest+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal file path in archive: %s", name)
	}
	return path, nil
}

func unzip(ctx context.Context, archive, dest string, bar *progressbar.ProgressBar) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		path, err := target(dest, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := writeZipEntry(f, path); err != nil {
			return err
		}
		_ = bar.Add64(int64(f.CompressedSize64))
	}
	return nil
}

func writeZipEntry(f *zip.File, path string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return writeFile(path, rc, f.Mode().Perm())
}

func untar(ctx context.Context, tr *tar.Reader, dest string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading tar header: %w", err)
		}

		if hdr.Typeflag == tar.TypeXHeader || hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}

		path, err := target(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, 0o755); err != nil {
				return fmt.Errorf("failed to create dir %s: %w", path, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("failed to create parent dir for %s: %w", path, err)
			}
			if err := writeFile(path, tr, os.FileMode(hdr.Mode).Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(hdr.Linkname) {
				return fmt.Errorf("illegal absolute symlink in archive: %s -> %s", hdr.Name, hdr.Linkname)
			}
			if _, err := target(dest, filepath.Join(filepath.Dir(hdr.Name), hdr.Linkname)); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, path); err != nil && !os.IsExist(err) {
				return fmt.Errorf("failed to create symlink %s -> %s: %w", path, hdr.Linkname, err)
			}
		}
	}
}

func writeFile(path string, r io.Reader, perm os.FileMode) error {
	if perm == 0 {
		perm = 0o644
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return out.Close()
}

var _ Extractor = (*Builtin)(nil)
