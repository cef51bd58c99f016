package client

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// Multipart field names expected by the backend.
const (
	FieldImage     = "image"
	FieldImages    = "images"
	FieldTree      = "tree"
	FieldOrchardID = "orchard_id"
	FieldMessage   = "message"
)

// File is an in-memory file to upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReadFile loads path into a File, sniffing its content type.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", path, err)
	}
	return File{
		Name:        filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

// Empty reports whether there is nothing to upload.
func (f File) Empty() bool {
	return len(f.Data) == 0
}

// Form is a multipart/form-data body. Fields and files are written in the
// order they were added.
type Form struct {
	parts []formPart
}

type formPart struct {
	name  string
	value string
	file  *File
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Field adds a scalar form field.
func (f *Form) Field(name, value string) *Form {
	f.parts = append(f.parts, formPart{name: name, value: value})
	return f
}

// File adds a file part under name. Repeating name adds another part.
func (f *Form) File(name string, file File) *Form {
	f.parts = append(f.parts, formPart{name: name, file: &file})
	return f
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encode writes the form to w and returns the content type to send.
func (f *Form) encode(w io.Writer) (string, error) {
	mw := multipart.NewWriter(w)
	for _, p := range f.parts {
		if p.file == nil {
			if err := mw.WriteField(p.name, p.value); err != nil {
				return "", err
			}
			continue
		}

		contentType := p.file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(p.name), quoteEscaper.Replace(p.file.Name)))
		h.Set("Content-Type", contentType)

		pw, err := mw.CreatePart(h)
		if err != nil {
			return "", err
		}
		if _, err := io.Copy(pw, bytes.NewReader(p.file.Data)); err != nil {
			return "", err
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	return mw.FormDataContentType(), nil
}
