// Package documents loads resume and job description text from disk.
// Only plain text formats are read; anything else is reported per file.
package documents

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedFormat is returned for files whose format cannot be decoded.
var ErrUnsupportedFormat = errors.New("unsupported document format")

var supportedExtensions = map[string]struct{}{
	".txt":  {},
	".text": {},
	".md":   {},
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is the text of one file. Err is set when the file could not be read.
type Document struct {
	Path string
	Text string
	Err  error
}

// Supported reports whether the file extension is a readable text format.
func Supported(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ReadText returns the text of a supported file. Invalid UTF-8 sequences are
// replaced with U+FFFD.
func ReadText(path string) (string, error) {
	if !Supported(path) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), "�"), nil
	}
	return string(data), nil
}

// Expand resolves files and directories into a list of file paths. Directories
// contribute their regular, non-hidden files in lexical order; nested
// directories are not descended into. Argument order is preserved.
func Expand(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	return files, nil
}

// LoadAll expands paths and reads every file. Read failures are kept on the
// document so that one bad file does not stop the others.
func LoadAll(paths []string) ([]Document, error) {
	files, err := Expand(paths)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(files))
	for _, file := range files {
		text, err := ReadText(file)
		docs = append(docs, Document{Path: file, Text: text, Err: err})
	}
	return docs, nil
}
