package corpus

import (
	"path/filepath"
	"strings"
)

// FileKind enumerates the supported corpus file formats. Dispatch is by kind,
// not by extension string, so a new format is a compile-time-checked addition.
type FileKind int

const (
	KindUnknown FileKind = iota
	KindPDF
	KindCSV
	KindXLSX
	KindText
	KindImage
)

func KindForExt(ext string) FileKind {
	switch strings.ToLower(ext) {
	case ".pdf":
		return KindPDF
	case ".csv":
		return KindCSV
	case ".xlsx":
		return KindXLSX
	case ".txt":
		return KindText
	case ".jpg", ".jpeg", ".png":
		return KindImage
	default:
		return KindUnknown
	}
}

// SourceType is the provenance tag stamped onto chunks.
func (k FileKind) SourceType() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindCSV:
		return "csv"
	case KindXLSX:
		return "xlsx"
	case KindText:
		return "txt"
	case KindImage:
		return "image-ocr"
	default:
		return ""
	}
}

// SourceFile is a corpus file discovered during a load pass.
type SourceFile struct {
	AbsPath  string
	RelPath  string
	Name     string
	Ext      string
	Category string
	Kind     FileKind
}

// categoryFor derives the category from the enclosing subfolder of the
// relative path; files directly under the corpus root belong to "root".
func categoryFor(relPath string) string {
	dir := filepath.Dir(relPath)
	if dir == "." || dir == string(filepath.Separator) {
		return "root"
	}
	return dir
}

// Chunk is the unit indexed and retrieved. Never mutated after creation.
type Chunk struct {
	ID         int
	Content    string
	SourceFile string
	SourcePath string
	Category   string
	SourceType string
}

// Snapshot is the ordered chunk collection produced by one load pass. Chunk
// IDs are contiguous from 0 within a snapshot; a re-load gets a fresh ID
// space.
type Snapshot struct {
	Chunks []Chunk
	Counts map[string]int
}

func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Chunks) == 0
}
