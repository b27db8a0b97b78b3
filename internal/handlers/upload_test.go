package handlers

import (
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
)

func header(filename, contentType string, size int64) *multipart.FileHeader {
	h := &multipart.FileHeader{
		Filename: filename,
		Size:     size,
		Header:   textproto.MIMEHeader{},
	}
	if contentType != "" {
		h.Header.Set("Content-Type", contentType)
	}
	return h
}

func TestValidateModelFile(t *testing.T) {
	if err := validateModelFile(header("chair.glb", "", 1024)); err != nil {
		t.Fatalf("valid glb rejected: %v", err)
	}
	if err := validateModelFile(header("chair.gltf", "", 1024)); err == nil {
		t.Fatal("gltf must be rejected, only glb is allowed")
	}
	if err := validateModelFile(header("chair.glb", "", maxModelSize+1)); err == nil {
		t.Fatal("oversized model must be rejected")
	}
	if err := validateModelFile(header("chair.exe", "", 10)); err == nil {
		t.Fatal("non-model extension must be rejected")
	}
}

func TestValidateImageFile(t *testing.T) {
	if err := validateImageFile(header("thumb.png", "image/png", 1024)); err != nil {
		t.Fatalf("valid png rejected: %v", err)
	}
	if err := validateImageFile(header("thumb.jpg", "", 1024)); err != nil {
		t.Fatalf("jpg without declared type rejected: %v", err)
	}
	if err := validateImageFile(header("thumb.png", "application/octet-stream", 1024)); err == nil {
		t.Fatal("non-image content type must be rejected")
	}
	if err := validateImageFile(header("payload.html", "image/png", 1024)); err == nil {
		t.Fatal("non-image extension must be rejected")
	}
	if err := validateImageFile(header("thumb.png", "image/png", maxImageSize+1)); err == nil {
		t.Fatal("oversized image must be rejected")
	}
}

func TestGenerateUploadName_KeepsExtensionAndVaries(t *testing.T) {
	a := generateUploadName("Original Photo.PNG")
	b := generateUploadName("Original Photo.PNG")

	if filepath.Ext(a) != ".png" {
		t.Fatalf("extension not preserved lowercase: %s", a)
	}
	if a == b {
		t.Fatalf("two generated names collided: %s", a)
	}
	if strings.Contains(a, " ") {
		t.Fatalf("generated name must not contain the original name: %s", a)
	}
}

func TestUploadDirFor(t *testing.T) {
	cases := map[string]string{
		uploadFieldModel:     "uploads/models",
		uploadFieldThumbnail: "uploads/thumbnails",
		uploadFieldAvatar:    "uploads/avatars",
		uploadFieldImage:     "uploads/images",
		"anything-else":      "uploads/images",
	}
	for field, want := range cases {
		if got := uploadDirFor(field); got != want {
			t.Errorf("uploadDirFor(%s) = %s, want %s", field, got, want)
		}
	}
}
