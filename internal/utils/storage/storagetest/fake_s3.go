// Package storagetest provides an in-memory storage.AwsS3 for tests.
package storagetest

import (
	"context"
	"farmket/internal/utils/storage"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync"
)

const baseURL = "https://bucket.test"

type FakeS3 struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
}

func NewFakeS3() *FakeS3 {
	return &FakeS3{Objects: map[string][]byte{}}
}

func (f *FakeS3) UploadFile(_ context.Context, fileName string, file *multipart.FileHeader, folder string, allowed ...string) (string, error) {
	if file == nil || file.Size == 0 {
		return "", storage.ErrEmptyFile
	}
	contentType := file.Header.Get("Content-Type")
	if !storage.IsAllowed(contentType, allowed) {
		return "", storage.ErrContentTypeNotAllowed
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	key := storage.ObjectKey(folder, fileName, contentType, filepath.Ext(file.Filename))
	f.store(key, data)
	return key, nil
}

func (f *FakeS3) UploadBytes(_ context.Context, fileName string, data []byte, contentType string, folder string, allowed ...string) (string, error) {
	if len(data) == 0 {
		return "", storage.ErrEmptyFile
	}
	if !storage.IsAllowed(contentType, allowed) {
		return "", storage.ErrContentTypeNotAllowed
	}

	key := storage.ObjectKey(folder, fileName, contentType, "")
	f.store(key, data)
	return key, nil
}

func (f *FakeS3) GetPublicLinkKey(objectKey string) string {
	return baseURL + "/" + objectKey
}

func (f *FakeS3) GetObjectKeyFromLink(link string) string {
	if !strings.HasPrefix(link, baseURL+"/") {
		return ""
	}
	return strings.TrimPrefix(link, baseURL+"/")
}

func (f *FakeS3) DeleteFile(_ context.Context, objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Objects, objectKey)
	f.Deleted = append(f.Deleted, objectKey)
	return nil
}

func (f *FakeS3) Has(objectKey string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Objects[objectKey]
	return ok
}

func (f *FakeS3) store(key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Objects[key] = data
}

// FileHeader builds a multipart.FileHeader holding content, as parsed
// from a real multipart form.
func FileHeader(fieldName, fileName, contentType string, content []byte) (*multipart.FileHeader, error) {
	var body strings.Builder
	w := multipart.NewWriter(&body)

	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="` + fieldName + `"; filename="` + fileName + `"`}
	h["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	form, err := multipart.NewReader(strings.NewReader(body.String()), w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		return nil, err
	}
	return form.File[fieldName][0], nil
}
