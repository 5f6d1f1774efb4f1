package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func TestLocalStorageRoundtrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create local storage: %v", err)
	}

	ctx := context.Background()
	data := []byte("%PDF-1.4 test content")

	url, err := store.Upload(ctx, "contracts/abc.pdf", bytes.NewReader(data), int64(len(data)), "application/pdf")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !strings.HasPrefix(url, "file://") {
		t.Errorf("Expected file URL, got %s", url)
	}

	reader, err := store.Download(ctx, "contracts/abc.pdf")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	defer reader.Close()

	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("Downloaded content does not match uploaded content")
	}

	signed, err := store.SignedURL(ctx, "contracts/abc.pdf", time.Minute)
	if err != nil {
		t.Fatalf("SignedURL failed: %v", err)
	}
	if signed == "" {
		t.Error("Expected non-empty signed URL")
	}

	if err := store.Delete(ctx, "contracts/abc.pdf"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Download(ctx, "contracts/abc.pdf"); err == nil {
		t.Error("Expected error downloading deleted object")
	}

	// Deleting a missing object is not an error.
	if err := store.Delete(ctx, "contracts/missing.pdf"); err != nil {
		t.Errorf("Delete of missing object should be a no-op, got %v", err)
	}
}
