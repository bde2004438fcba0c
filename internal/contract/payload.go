package contract

import (
	"strings"
)

// DefaultFileName names the synthetic part built from editor text
const DefaultFileName = "contract.cpp"

// TextContentType is the declared type of the synthetic part
const TextContentType = "text/plain"

// Payload is the single file part of an analysis request
type Payload struct {
	FileName    string
	ContentType string
	Data        []byte
	// Origin records which source produced the part
	Origin SourceKind
}

// Size returns the part size in bytes
func (p *Payload) Size() int {
	return len(p.Data)
}

// BuildPayload selects exactly one part from src: the selected file verbatim,
// or the source text wrapped as fileName. Blank text with no file is rejected.
func BuildPayload(src Source, fileName string) (*Payload, error) {
	if f := SelectedFileOf(src); f != nil {
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		return &Payload{
			FileName:    f.Name,
			ContentType: contentType,
			Data:        f.Data,
			Origin:      SourceFile,
		}, nil
	}

	text := ""
	origin := SourceManual
	if src != nil {
		text = src.Text()
		origin = src.Kind()
	}
	if strings.TrimSpace(text) == "" {
		return nil, NewValidationError("submit", "provide contract source by typing, choosing a file, or importing from GitHub")
	}

	if fileName == "" {
		fileName = DefaultFileName
	}

	return &Payload{
		FileName:    fileName,
		ContentType: TextContentType,
		Data:        []byte(text),
		Origin:      origin,
	}, nil
}
