package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/zstd"
)

var (
	// ErrUnsupportedFormat is returned for archives with an unknown extension
	ErrUnsupportedFormat = errors.New("unsupported archive format")

	// ErrUnsafePath is returned when an archive entry would escape the target directory
	ErrUnsafePath = errors.New("archive entry escapes target directory")
)

// extractors maps archive filename extensions to extraction functions.
// Longer extensions must be checked first, so the dispatch iterates this
// slice instead of a map.
var extractors = []struct {
	ext     string
	extract func(archivePath, destDir string) error
}{
	{".tar.gz", extractTarGz},
	{".tar.zst", extractTarZst},
	{".tgz", extractTarGz},
	{".7z", extract7z},
	{".zip", extractZip},
}

// Extract unpacks the archive at archivePath into destDir, detecting the
// format from the filename extension. Supported formats: .7z, .zip,
// .tar.gz/.tgz, .tar.zst.
func Extract(archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create extraction directory %s: %w", destDir, err)
	}

	name := strings.ToLower(filepath.Base(archivePath))
	for _, e := range extractors {
		if strings.HasSuffix(name, e.ext) {
			return e.extract(archivePath, destDir)
		}
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(archivePath))
}

func extract7z(archivePath, destDir string) error {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open 7z archive %s: %w", archivePath, err)
	}
	defer r.Close()

	for _, file := range r.File {
		if err := write7zEntry(file, destDir); err != nil {
			return err
		}
	}

	return nil
}

func write7zEntry(file *sevenzip.File, destDir string) error {
	target, err := safeJoin(destDir, file.Name)
	if err != nil {
		return err
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(target, 0755)
	}

	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open 7z entry %s: %w", file.Name, err)
	}
	defer rc.Close()

	return writeFile(target, rc, file.Mode())
}

func extractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open zip archive %s: %w", archivePath, err)
	}
	defer r.Close()

	for _, file := range r.File {
		if err := writeZipEntry(file, destDir); err != nil {
			return err
		}
	}

	return nil
}

func writeZipEntry(file *zip.File, destDir string) error {
	target, err := safeJoin(destDir, file.Name)
	if err != nil {
		return err
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(target, 0755)
	}

	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open zip entry %s: %w", file.Name, err)
	}
	defer rc.Close()

	return writeFile(target, rc, file.Mode())
}

func extractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read gzip stream of %s: %w", archivePath, err)
	}
	defer gz.Close()

	return extractTar(tar.NewReader(gz), destDir)
}

func extractTarZst(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read zstd stream of %s: %w", archivePath, err)
	}
	defer zr.Close()

	return extractTar(tar.NewReader(zr), destDir)
}

func extractTar(tr *tar.Reader, destDir string) error {
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar stream: %w", err)
		}

		target, err := safeJoin(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, os.FileMode(header.Mode)); err != nil {
				return err
			}
		default:
			// Symlinks and special files are not expected in patch archives
			continue
		}
	}
}

// safeJoin joins an archive entry name onto the destination directory and
// rejects entries that would resolve outside of it (zip-slip).
func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))

	base := filepath.Clean(destDir)
	if target != base && !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}

	return target, nil
}

func writeFile(target string, src io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}

	if mode.Perm() == 0 {
		mode = 0644
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("failed to write file %s: %w", target, err)
	}

	return out.Close()
}
