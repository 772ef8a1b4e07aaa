package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	pdfHeader = []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n")
)

// fileHeader builds a real multipart.FileHeader holding content.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func newTestValidator() *FileValidator {
	return NewFileValidator(
		[]string{".jpg", ".jpeg", ".png", "pdf"},
		[]string{"image/jpeg", "image/png", "application/pdf"},
		1,
	)
}

func TestValidateFile_Accepts(t *testing.T) {
	v := newTestValidator()

	mt, err := v.ValidateFile(fileHeader(t, "sketch.png", pngHeader))
	require.NoError(t, err)
	require.Equal(t, "image/png", mt)

	mt, err = v.ValidateFile(fileHeader(t, "Quote.PDF", pdfHeader))
	require.NoError(t, err)
	require.Equal(t, "application/pdf", mt)
}

func TestValidateFile_Rejects(t *testing.T) {
	v := newTestValidator()

	_, err := v.ValidateFile(fileHeader(t, "notes.txt", []byte("hello")))
	require.ErrorContains(t, err, "extension")

	// extension lies about the content
	_, err = v.ValidateFile(fileHeader(t, "fake.png", []byte("<html><body>hi</body></html>")))
	require.ErrorContains(t, err, "invalid file type")

	_, err = v.ValidateFile(fileHeader(t, "empty.png", nil))
	require.Error(t, err)

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2<<20)...)
	_, err = v.ValidateFile(fileHeader(t, "big.png", big))
	require.ErrorContains(t, err, "too large")
}
