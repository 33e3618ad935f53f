package model

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// File extensions
const (
	// ExtCSV is the CSV file extension
	ExtCSV = ".csv"
	// ExtTSV is the TSV file extension
	ExtTSV = ".tsv"
	// ExtGZ is the gzip compression extension
	ExtGZ = ".gz"
	// ExtBZ2 is the bzip2 compression extension
	ExtBZ2 = ".bz2"
	// ExtXZ is the xz compression extension
	ExtXZ = ".xz"
	// ExtZSTD is the zstd compression extension
	ExtZSTD = ".zst"
)

// File represents a CSV source on disk, possibly compressed.
type File struct {
	path string
}

// NewFile creates a new File.
func NewFile(path string) *File {
	return &File{path: path}
}

// IsSupportedFile checks if the file has a supported extension: .csv or
// .tsv, optionally wrapped in one compression extension.
func IsSupportedFile(fileName string) bool {
	fileName = strings.ToLower(fileName)
	fileName = strings.TrimSuffix(fileName, CompressionFromPath(fileName).Extension())
	return strings.HasSuffix(fileName, ExtCSV) || strings.HasSuffix(fileName, ExtTSV)
}

// IsTSV reports whether the file carries tab-separated values, judged by
// extension after stripping any compression extension.
func (f *File) IsTSV() bool {
	name := strings.ToLower(f.path)
	name = strings.TrimSuffix(name, CompressionFromPath(name).Extension())
	return filepath.Ext(name) == ExtTSV
}

// Open opens the file and returns a reader that transparently handles
// compression, plus a close function for every resource it acquired.
func (f *File) Open() (io.Reader, func() error, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, nil, err
	}

	reader, closeCodec, err := CompressionFromPath(f.path).NewReader(file)
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}

	return reader, func() error {
		codecErr := closeCodec()
		if err := file.Close(); err != nil {
			return err
		}
		return codecErr
	}, nil
}
