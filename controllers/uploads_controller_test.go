package controllers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/cncdesign/cncbackend/storage"
	"github.com/cncdesign/cncbackend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	fail    bool
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjects) Upload(_ context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	if f.fail {
		return "", errors.New("bucket unreachable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.types[key] = contentType
	return "https://files.example.com/" + key, nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	if f.fail {
		return errors.New("bucket unreachable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func uploadRouter(store storage.ObjectStore) *gin.Engine {
	v := utils.NewFileValidator(
		[]string{".jpg", ".jpeg", ".png", ".pdf"},
		[]string{"image/jpeg", "image/png", "application/pdf"},
		1,
	)
	r := gin.New()
	r.POST("/uploads", UploadAttachment(store, v))
	r.DELETE("/admin/uploads/*key", DeleteUpload(store))
	return r
}

func postFile(t *testing.T, r http.Handler, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadAttachment_Image(t *testing.T) {
	objects := newFakeObjects()
	r := uploadRouter(objects)

	w := postFile(t, r, "file", "Kitchen.PNG", pngHeader)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[map[string]any](t, w)
	assert.Equal(t, "image", resp["kind"])
	assert.Equal(t, "image/png", resp["contentType"])

	key := resp["key"].(string)
	assert.True(t, strings.HasPrefix(key, "submissions/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, "https://files.example.com/"+key, resp["url"])
	assert.Equal(t, pngHeader, objects.objects[key])

	// the returned reference classifies as an image when sent back as an attachment
	images, files, err := utils.NewAttachmentPolicy(defaultAttachmentTypes).Classify([]string{resp["url"].(string)})
	require.NoError(t, err)
	assert.Len(t, images, 1)
	assert.Empty(t, files)
}

func TestUploadAttachment_PDF(t *testing.T) {
	r := uploadRouter(newFakeObjects())
	w := postFile(t, r, "file", "plan.pdf", []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "file", decode[map[string]any](t, w)["kind"])
}

func TestUploadAttachment_Rejects(t *testing.T) {
	objects := newFakeObjects()
	r := uploadRouter(objects)

	require.Equal(t, http.StatusBadRequest, postFile(t, r, "other", "a.png", pngHeader).Code)
	require.Equal(t, http.StatusBadRequest, postFile(t, r, "file", "script.exe", pngHeader).Code)
	// extension says png, content is html
	require.Equal(t, http.StatusBadRequest, postFile(t, r, "file", "fake.png", []byte("<html><script>alert(1)</script></html>")).Code)

	assert.Empty(t, objects.objects)
}

func TestUploadAttachment_TooLarge(t *testing.T) {
	r := uploadRouter(newFakeObjects())
	big := append(append([]byte{}, pngHeader...), make([]byte, 2<<20)...)
	w := postFile(t, r, "file", "huge.png", big)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadAttachment_NotConfigured(t *testing.T) {
	r := uploadRouter(nil)
	w := postFile(t, r, "file", "a.png", pngHeader)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUploadAttachment_StorageFailure(t *testing.T) {
	objects := newFakeObjects()
	objects.fail = true
	r := uploadRouter(objects)

	w := postFile(t, r, "file", "a.png", pngHeader)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "bucket unreachable")
}

func TestUploadAttachment_KeyFollowsSniffedType(t *testing.T) {
	objects := newFakeObjects()
	r := uploadRouter(objects)

	// a pdf renamed to .jpg passes the extension check but is stored as a pdf
	w := postFile(t, r, "file", "photo.jpg", []byte("%PDF-1.4\n1 0 obj\n"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[map[string]any](t, w)
	assert.Equal(t, "application/pdf", resp["contentType"])
	assert.Equal(t, "file", resp["kind"])
	assert.True(t, strings.HasSuffix(resp["key"].(string), ".pdf"))

	images, files, err := utils.NewAttachmentPolicy(defaultAttachmentTypes).Classify([]string{resp["url"].(string)})
	require.NoError(t, err)
	assert.Empty(t, images)
	assert.Len(t, files, 1)
}

func TestDeleteUpload(t *testing.T) {
	objects := newFakeObjects()
	r := uploadRouter(objects)

	w := postFile(t, r, "file", "a.png", pngHeader)
	require.Equal(t, http.StatusCreated, w.Code)
	key := decode[map[string]any](t, w)["key"].(string)
	require.Contains(t, objects.objects, key)

	w = doJSON(t, r, http.MethodDelete, "/admin/uploads/"+key, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, objects.objects, key)

	// already gone
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodDelete, "/admin/uploads/"+key, nil).Code)
}

func TestDeleteUpload_RejectsForeignKeys(t *testing.T) {
	objects := newFakeObjects()
	objects.objects["config/secret.json"] = []byte("{}")
	r := uploadRouter(objects)

	require.Equal(t, http.StatusBadRequest, doJSON(t, r, http.MethodDelete, "/admin/uploads/config/secret.json", nil).Code)
	require.Equal(t, http.StatusBadRequest, doJSON(t, r, http.MethodDelete, "/admin/uploads/submissions/../config/secret.json", nil).Code)
	assert.Contains(t, objects.objects, "config/secret.json")
}

func TestDeleteUpload_Failures(t *testing.T) {
	require.Equal(t, http.StatusServiceUnavailable, doJSON(t, uploadRouter(nil), http.MethodDelete, "/admin/uploads/submissions/2026/01/x.png", nil).Code)

	objects := newFakeObjects()
	objects.fail = true
	w := doJSON(t, uploadRouter(objects), http.MethodDelete, "/admin/uploads/submissions/2026/01/x.png", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "bucket unreachable")
}
