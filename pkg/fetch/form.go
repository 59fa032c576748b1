package fetch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
)

// Form is multipart form data. Fields and files are written in the order
// they were added.
type Form struct {
	parts []formPart
}

type formPart struct {
	name     string
	value    string
	filename string
	file     io.Reader
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Add appends a text field.
func (f *Form) Add(name, value string) *Form {
	f.parts = append(f.parts, formPart{name: name, value: value})
	return f
}

// AddFile appends a file field read from r when the request is sent.
func (f *Form) AddFile(name, filename string, r io.Reader) *Form {
	f.parts = append(f.parts, formPart{name: name, filename: filename, file: r})
	return f
}

// Len returns the number of parts.
func (f *Form) Len() int {
	return len(f.parts)
}

// encode writes the multipart body. The returned content type carries the
// boundary chosen by the encoder.
func (f *Form) encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range f.parts {
		if p.name == "" {
			return nil, "", errors.New("form part has no name")
		}
		if p.file == nil {
			if err := w.WriteField(p.name, p.value); err != nil {
				return nil, "", fmt.Errorf("field %q: %w", p.name, err)
			}
			continue
		}
		fw, err := w.CreateFormFile(p.name, p.filename)
		if err != nil {
			return nil, "", fmt.Errorf("file %q: %w", p.name, err)
		}
		if _, err := io.Copy(fw, p.file); err != nil {
			return nil, "", fmt.Errorf("file %q: %w", p.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
