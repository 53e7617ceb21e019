package zip

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
)

// MaxEntryBytes bounds a single extracted file.
const MaxEntryBytes = 32 << 20

var ErrNotArchive = errors.New("zip: not a zip archive")

type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// ArchiveAssets packs assets into a zip. Duplicate names are suffixed so no
// entry shadows another.
func ArchiveAssets(assets []Asset) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	seen := make(map[string]int, len(assets))
	for _, asset := range assets {
		name := uniqueName(path.Base(asset.Filename), seen)
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("zip: create %s: %w", name, err)
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtractAssets returns the regular files of an archive with their MIME type
// guessed from the extension, falling back to content sniffing. Directory
// entries and macOS resource forks are skipped.
func ExtractAssets(data []byte) ([]Asset, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotArchive, err)
	}
	assets := make([]Asset, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX/") || strings.HasPrefix(path.Base(f.Name), ".") {
			continue
		}
		if f.UncompressedSize64 > MaxEntryBytes {
			return nil, fmt.Errorf("zip: %s exceeds %d bytes", f.Name, MaxEntryBytes)
		}
		content, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		assets = append(assets, Asset{
			Filename: path.Base(f.Name),
			MIME:     detectMIME(f.Name, content),
			Data:     content,
		})
	}
	return assets, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("zip: open %s: %w", f.Name, err)
	}
	defer rc.Close()
	content, err := io.ReadAll(io.LimitReader(rc, MaxEntryBytes+1))
	if err != nil {
		return nil, fmt.Errorf("zip: read %s: %w", f.Name, err)
	}
	if len(content) > MaxEntryBytes {
		return nil, fmt.Errorf("zip: %s exceeds %d bytes", f.Name, MaxEntryBytes)
	}
	return content, nil
}

func detectMIME(name string, content []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(name))); t != "" {
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = t[:i]
		}
		return t
	}
	t := http.DetectContentType(content)
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return t
}

func uniqueName(name string, seen map[string]int) string {
	if name == "" || name == "." || name == "/" {
		name = "file"
	}
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
}
