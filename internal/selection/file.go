package selection

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/strucbio/motifq/internal/motif"
)

// DocumentVersion is the interchange format version this package reads and
// writes.
const DocumentVersion = 1

// Document is the on-disk interchange form of a selection history. Viewers
// export it after every pick; motifq reads it back and rewrites it on move
// and remove so both sides stay on one ordered record.
type Document struct {
	Version int           `json:"version"`
	Entries []motif.Entry `json:"entries"`
}

// DecodeDocument parses an interchange document. Entry ids are the join key
// for all pick state, so entries without an id, or with a duplicated id,
// make the document unusable and are rejected here.
func DecodeDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode selection document: %w", err)
	}
	if doc.Version != 0 && doc.Version != DocumentVersion {
		return nil, fmt.Errorf("unsupported selection document version %d", doc.Version)
	}

	seen := make(map[motif.EntryID]struct{}, len(doc.Entries))
	for i, e := range doc.Entries {
		if e.ID == "" {
			return nil, fmt.Errorf("selection entry %d has no id", i)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("selection entry id %s appears more than once", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	doc.Version = DocumentVersion
	return &doc, nil
}

// EncodeDocument writes the document in the indented form viewers expect.
func EncodeDocument(w io.Writer, doc *Document) error {
	out := Document{Version: DocumentVersion, Entries: doc.Entries}
	if out.Entries == nil {
		out.Entries = []motif.Entry{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode selection document: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write selection document: %w", err)
	}
	return nil
}

// ReadDocument loads and decodes the document at path.
func ReadDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open selection document: %w", err)
	}
	defer f.Close()

	doc, err := DecodeDocument(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// WriteDocument replaces the document at path atomically, writing a sibling
// temp file and renaming it over the target. Watchers of the parent
// directory see a single rename instead of a partially-written file.
func WriteDocument(path string, doc *Document) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".motifq-selection-*")
	if err != nil {
		return fmt.Errorf("create temp selection document: %w", err)
	}
	tmpName := tmp.Name()

	if err := EncodeDocument(tmp, doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp selection document: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace selection document: %w", err)
	}
	return nil
}

// FileHistory is a History backed by the viewer's exported selection
// document. Every operation reads the file fresh; the viewer may rewrite it
// at any time, so nothing is cached between calls.
type FileHistory struct {
	path string
}

func NewFileHistory(path string) *FileHistory {
	return &FileHistory{path: path}
}

// Path returns the document location this history reads and rewrites.
func (h *FileHistory) Path() string {
	return h.path
}

// Entries returns the current document's picks. A document that does not
// exist yet is an empty history, not an error: the watcher starts before the
// viewer's first export.
func (h *FileHistory) Entries() ([]motif.Entry, error) {
	doc, err := ReadDocument(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

func (h *FileHistory) Move(id motif.EntryID, dir MoveDirection, cap int) error {
	doc, err := ReadDocument(h.path)
	if err != nil {
		return err
	}
	changed, err := reorder(doc.Entries, id, dir, cap)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return WriteDocument(h.path, doc)
}

func (h *FileHistory) Remove(id motif.EntryID) error {
	doc, err := ReadDocument(h.path)
	if err != nil {
		return err
	}
	entries, err := removeEntry(doc.Entries, id)
	if err != nil {
		return err
	}
	doc.Entries = entries
	return WriteDocument(h.path, doc)
}
