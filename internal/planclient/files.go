package planclient

import (
	"fmt"
	"math"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSizeMB is the largest accepted upload, in megabytes.
const MaxFileSizeMB = 10

const maxFileSize = MaxFileSizeMB * 1024 * 1024

// Accepted upload content types.
const (
	TypePDF  = "application/pdf"
	TypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypeTXT  = "text/plain"
)

var allowedTypes = map[string]bool{TypePDF: true, TypeDOCX: true, TypeTXT: true}

var extTypes = map[string]string{
	".pdf":  TypePDF,
	".docx": TypeDOCX,
	".txt":  TypeTXT,
}

// File is a local file to upload.
type File struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
}

// LoadFile stats path and detects its content type from the extension,
// falling back to sniffing the first bytes.
func LoadFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	return File{
		Path:        path,
		Name:        filepath.Base(path),
		ContentType: detectType(path),
		Size:        info.Size(),
	}, nil
}

func detectType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := extTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return mediaType(t)
	}

	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	if n == 0 {
		return ""
	}
	return mediaType(http.DetectContentType(buf[:n]))
}

func mediaType(t string) string {
	mt, _, err := mime.ParseMediaType(t)
	if err != nil {
		return t
	}
	return mt
}

// FileError lists every file rejected by ValidateFiles.
type FileError struct {
	Kind    string
	Invalid []string
}

func (e *FileError) Error() string {
	return fmt.Sprintf("Invalid %s file(s): %s. Allowed types: PDF, DOCX, TXT. Max size: %dMB.",
		e.Kind, strings.Join(e.Invalid, ", "), MaxFileSizeMB)
}

// ValidateFiles checks type and size of every file. kind names the group
// in the error, e.g. "notes" or "question". All rejected files are
// reported together.
func ValidateFiles(kind string, files []File) error {
	var invalid []string
	for _, f := range files {
		switch {
		case !allowedTypes[f.ContentType]:
			t := f.ContentType
			if t == "" {
				t = "unknown"
			}
			invalid = append(invalid, fmt.Sprintf("%s (type: %s)", f.Name, t))
		case f.Size > maxFileSize:
			mb := math.Round(float64(f.Size) / (1024 * 1024))
			invalid = append(invalid, fmt.Sprintf("%s (size: %.0fMB - exceeds %dMB)", f.Name, mb, MaxFileSizeMB))
		}
	}
	if len(invalid) > 0 {
		return &FileError{Kind: kind, Invalid: invalid}
	}
	return nil
}
