package services

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalStorage_UploadAndGet(t *testing.T) {
	storage := NewLocalStorage(t.TempDir())

	result, err := storage.UploadReader(context.Background(),
		bytes.NewBufferString("passport scan bytes"), "clients/c1/passport/scan.pdf", "application/pdf", 19)
	assert.NoError(t, err)
	assert.Equal(t, "clients/c1/passport/scan.pdf", result.Key)
	assert.Equal(t, "scan.pdf", result.FileName)
	assert.Equal(t, int64(19), result.FileSize)

	reader, contentType, err := storage.Get(context.Background(), result.Key)
	assert.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, "application/pdf", contentType)

	content, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Equal(t, "passport scan bytes", string(content))
}

func TestLocalStorage_Delete(t *testing.T) {
	storage := NewLocalStorage(t.TempDir())

	result, err := storage.UploadReader(context.Background(),
		bytes.NewBufferString("x"), "clients/c1/profile/pic.png", "image/png", 1)
	assert.NoError(t, err)

	assert.NoError(t, storage.Delete(context.Background(), result.Key))
	_, _, err = storage.Get(context.Background(), result.Key)
	assert.Error(t, err)

	// Deleting a missing key is not an error
	assert.NoError(t, storage.Delete(context.Background(), "does/not/exist"))
}

func TestGenerateProfilePictureKey(t *testing.T) {
	key := GenerateProfilePictureKey("client-1", "selfie.JPG")
	assert.True(t, strings.HasPrefix(key, filepath.Join("clients", "client-1", "profile")))
	assert.Equal(t, ".JPG", filepath.Ext(key))

	// Keys are unique per upload
	assert.NotEqual(t, key, GenerateProfilePictureKey("client-1", "selfie.JPG"))
}

func TestGeneratePassportDocumentKey(t *testing.T) {
	key := GeneratePassportDocumentKey("client-1", "passport.pdf")
	assert.True(t, strings.HasPrefix(key, filepath.Join("clients", "client-1", "passport")))
	assert.Equal(t, ".pdf", filepath.Ext(key))
}
