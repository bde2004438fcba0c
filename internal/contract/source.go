// Package contract holds the data model shared by the editor, the session
// controller and the network clients: the authoritative input source, the
// selected upload, the analysis payload and the error taxonomy.
package contract

// SourceKind identifies which input currently determines the buffer
type SourceKind int

const (
	SourceManual SourceKind = iota
	SourceFile
	SourceImported
)

// String returns a human-readable label
func (k SourceKind) String() string {
	switch k {
	case SourceManual:
		return "manual"
	case SourceFile:
		return "file"
	case SourceImported:
		return "github"
	default:
		return "unknown"
	}
}

// Source is the authoritative contract input. Exactly one variant is held at a time.
type Source interface {
	Kind() SourceKind
	// Text is the content shown in the editor
	Text() string
	isSource()
}

// Manual is text typed or pasted into the editor
type Manual struct {
	Content string
}

func (Manual) Kind() SourceKind { return SourceManual }
func (m Manual) Text() string   { return m.Content }
func (Manual) isSource()        {}

// File is a chosen upload. Decoded mirrors its bytes for display once decoding finishes.
type File struct {
	File    *SelectedFile
	Decoded string
	Pending bool
	// DecodeErr is set when the bytes could not be shown as text
	DecodeErr error
}

func (File) Kind() SourceKind { return SourceFile }
func (f File) Text() string   { return f.Decoded }
func (File) isSource()        {}

// Imported is content fetched from a code-hosting URL
type Imported struct {
	URL     string
	Content string
}

func (Imported) Kind() SourceKind { return SourceImported }
func (i Imported) Text() string   { return i.Content }
func (Imported) isSource()        {}

// SelectedFileOf returns the selected upload when src is a File source
func SelectedFileOf(src Source) *SelectedFile {
	if f, ok := src.(File); ok {
		return f.File
	}
	return nil
}
