package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/spec-kit/retailer-dashboard/internal/domain"
)

type formFile struct {
	field  string
	upload *domain.Upload
}

// form is a multipart body built field by field.
type form struct {
	fields [][2]string
	files  []formFile
}

func newForm() *form {
	return &form{}
}

func (f *form) set(name, value string) *form {
	f.fields = append(f.fields, [2]string{name, value})
	return f
}

// setOptional adds the field only when value is non-nil and non-empty.
func (f *form) setOptional(name string, value *string) *form {
	if value != nil && *value != "" {
		f.set(name, *value)
	}
	return f
}

func (f *form) file(name string, upload *domain.Upload) *form {
	if upload != nil && upload.Body != nil {
		f.files = append(f.files, formFile{field: name, upload: upload})
	}
	return f
}

func (f *form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range f.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", kv[0], err)
		}
	}

	for _, file := range f.files {
		contentType := file.upload.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(file.field), escapeQuotes(file.upload.Filename)))
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", file.field, err)
		}
		if _, err := io.Copy(part, file.upload.Body); err != nil {
			return nil, "", fmt.Errorf("copy %s: %w", file.field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
