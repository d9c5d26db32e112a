package domain

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SourceFile is a handle to a user-chosen lab manual. The bytes are read
// lazily through Open so the handle stays cheap to copy around.
type SourceFile struct {
	Name string
	Size int64

	open func() (io.ReadCloser, error)
}

// FileFromPath builds a handle for a document on the local filesystem.
func FileFromPath(path string) (SourceFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return SourceFile{}, fmt.Errorf("stat source file: %w", err)
	}
	if info.IsDir() {
		return SourceFile{}, fmt.Errorf("source file is a directory: %s", path)
	}
	return SourceFile{
		Name: filepath.Base(path),
		Size: info.Size(),
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// FileFromBytes builds a handle over an in-memory document.
func FileFromBytes(name string, data []byte) SourceFile {
	return SourceFile{
		Name: name,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func (f SourceFile) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("source file %q has no content", f.Name)
	}
	return f.open()
}

// Extension returns the lower-cased extension without the leading dot.
func (f SourceFile) Extension() string {
	return FileExtension(f.Name)
}

func FileExtension(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}
