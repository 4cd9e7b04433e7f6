package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"nurseaid/internal/extract"
	"nurseaid/internal/textsplit"
)

// Loader walks a document root, extracts text per file kind and splits it
// into chunks. Loading is best-effort at the corpus level: a file that fails
// to extract is logged and skipped, never aborting the pass.
type Loader struct {
	extractor *extract.Extractor
	splitter  *textsplit.Splitter
}

func NewLoader(extractor *extract.Extractor, splitter *textsplit.Splitter) *Loader {
	return &Loader{extractor: extractor, splitter: splitter}
}

// Load produces a fresh Snapshot from everything under root. A missing root
// is created and yields an empty snapshot; that is a valid terminal state,
// not an error. Chunk IDs come from a single counter scoped to this call.
func (l *Loader) Load(ctx context.Context, root string) (*Snapshot, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		slog.WarnContext(ctx, "corpus root not found, creating it", "path", root)
		if err := os.MkdirAll(root, 0o750); err != nil {
			return nil, fmt.Errorf("create corpus root: %w", err)
		}
		return &Snapshot{Counts: map[string]int{}}, nil
	}

	files, err := l.discover(ctx, root)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Counts: map[string]int{}}
	nextID := 0
	for _, file := range files {
		text, err := l.extractText(file)
		if err != nil {
			slog.WarnContext(ctx, "skipping file, extraction failed", "file", file.Name, "error", err)
			continue
		}
		pieces := l.splitter.Split(text)
		for _, piece := range pieces {
			snap.Chunks = append(snap.Chunks, Chunk{
				ID:         nextID,
				Content:    piece,
				SourceFile: file.Name,
				SourcePath: file.RelPath,
				Category:   file.Category,
				SourceType: file.Kind.SourceType(),
			})
			nextID++
		}
		snap.Counts[file.Kind.SourceType()] += len(pieces)
		slog.InfoContext(ctx, "loaded file", "file", file.Name, "chunks", len(pieces), "source_type", file.Kind.SourceType())
	}

	slog.InfoContext(ctx, "corpus loaded", "files", len(files), "chunks", len(snap.Chunks), "by_type", snap.Counts)
	return snap, nil
}

// discover recursively enumerates supported files. Unrecognized extensions
// are skipped silently apart from a log line.
func (l *Loader) discover(ctx context.Context, root string) ([]SourceFile, error) {
	var files []SourceFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(d.Name())
		kind := KindForExt(ext)
		if kind == KindUnknown {
			slog.DebugContext(ctx, "skipping unsupported file type", "file", d.Name())
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, SourceFile{
			AbsPath:  path,
			RelPath:  rel,
			Name:     d.Name(),
			Ext:      ext,
			Category: categoryFor(rel),
			Kind:     kind,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus root: %w", err)
	}
	return files, nil
}

func (l *Loader) extractText(file SourceFile) (string, error) {
	switch file.Kind {
	case KindPDF:
		// The PDF chain degrades internally; the worst case is a placeholder.
		return extract.CleanClinicalText(l.extractor.PDFText(file.AbsPath)), nil
	case KindCSV:
		return l.extractor.CSVText(file.AbsPath, file.Name, file.Category)
	case KindXLSX:
		return l.extractor.XLSXText(file.AbsPath, file.Name, file.Category)
	case KindText:
		return l.extractor.PlainText(file.AbsPath, file.Name, file.Category)
	case KindImage:
		text, err := l.extractor.ImageText(file.AbsPath)
		if err != nil {
			return "", err
		}
		return extract.CleanClinicalText(text), nil
	default:
		return "", fmt.Errorf("unsupported file kind %d", file.Kind)
	}
}
