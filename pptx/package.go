package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
)

// maxZipEntrySize is the maximum allowed size for a single file extracted from a ZIP.
// This prevents zip bomb attacks. 50 MB is generous for any legitimate PPTX part.
const maxZipEntrySize = 50 << 20 // 50 MB

// maxZipTotalSize is the cumulative limit for all extracted content from a single ZIP.
const maxZipTotalSize = 200 << 20 // 200 MB

// maxZipEntries is the maximum number of files allowed in a ZIP archive.
const maxZipEntries = 10000

// opcPackage holds the parts of an Open Packaging Conventions container in
// their original order. Parts this package does not understand are written
// back untouched.
type opcPackage struct {
	names []string
	parts map[string][]byte
}

func newPackage() *opcPackage {
	return &opcPackage{parts: make(map[string][]byte)}
}

func readPackage(r io.ReaderAt, size int64) (*opcPackage, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid reader size: %d", size)
	}
	if size > int64(maxZipTotalSize) {
		return nil, fmt.Errorf("file size %d exceeds maximum allowed (%d bytes)", size, maxZipTotalSize)
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	if len(zr.File) > maxZipEntries {
		return nil, fmt.Errorf("zip archive contains too many entries (%d > %d)", len(zr.File), maxZipEntries)
	}

	pkg := newPackage()
	var total int64
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		total += int64(len(data))
		if total > maxZipTotalSize {
			return nil, fmt.Errorf("extracted content exceeds maximum allowed (%d bytes)", maxZipTotalSize)
		}
		pkg.put(f.Name, data)
	}
	return pkg, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > maxZipEntrySize {
		return nil, fmt.Errorf("file %s exceeds maximum allowed size (%d bytes)", f.Name, maxZipEntrySize)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in zip: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, int64(maxZipEntrySize)+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from zip: %w", f.Name, err)
	}
	if int64(len(data)) > int64(maxZipEntrySize) {
		return nil, fmt.Errorf("file %s actual size exceeds maximum allowed size", f.Name)
	}
	return data, nil
}

func (p *opcPackage) get(name string) ([]byte, bool) {
	data, ok := p.parts[name]
	return data, ok
}

// put replaces a part, or appends it when new.
func (p *opcPackage) put(name string, data []byte) {
	if _, ok := p.parts[name]; !ok {
		p.names = append(p.names, name)
	}
	p.parts[name] = data
}

func (p *opcPackage) has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// findData returns the first part under prefix holding exactly data.
func (p *opcPackage) findData(prefix string, data []byte) (string, bool) {
	for _, name := range p.names {
		if strings.HasPrefix(name, prefix) && bytes.Equal(p.parts[name], data) {
			return name, true
		}
	}
	return "", false
}

// uniqueName returns the first free name produced by format with an index >= 1.
func (p *opcPackage) uniqueName(format string) string {
	for i := 1; ; i++ {
		name := fmt.Sprintf(format, i)
		if !p.has(name) {
			return name
		}
	}
}

func (p *opcPackage) writeTo(w io.Writer) error {
	zw := zip.NewWriter(w)
	names := append([]string(nil), p.names...)
	// [Content_Types].xml goes first so sniffers recognise the container.
	sort.SliceStable(names, func(i, j int) bool {
		return names[i] == "[Content_Types].xml" && names[j] != "[Content_Types].xml"
	})
	for _, name := range names {
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("failed to create %s in zip: %w", name, err)
		}
		if _, err := fw.Write(p.parts[name]); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return zw.Close()
}
