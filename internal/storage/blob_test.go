package storage

import (
	"strings"
	"testing"
)

func TestBuildObjectKey_NamespacesByUserAndKeepsExtension(t *testing.T) {
	key := buildObjectKey("My Photo.JPG", 42)

	if !strings.HasPrefix(key, "42/") {
		t.Fatalf("expected user namespace prefix, got %q", key)
	}
	if !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("expected lowercased extension, got %q", key)
	}

	other := buildObjectKey("My Photo.JPG", 42)
	if key == other {
		t.Fatal("expected unique keys for repeated uploads")
	}
}

func TestBuildObjectKey_NoExtension(t *testing.T) {
	key := buildObjectKey("snapshot", 7)
	if strings.Contains(key[len("7/"):], ".") {
		t.Fatalf("expected no extension, got %q", key)
	}
}

func TestContentTypeForExtension(t *testing.T) {
	testCases := map[string]string{
		"1/a.jpg":  "image/jpeg",
		"1/a.jpeg": "image/jpeg",
		"1/a.png":  "image/png",
		"1/a.webp": "image/webp",
		"1/a.bin":  "application/octet-stream",
	}
	for key, expected := range testCases {
		if got := contentTypeForExtension(key); got != expected {
			t.Fatalf("%s: expected %s, got %s", key, expected, got)
		}
	}
}

func TestKeyFromURL(t *testing.T) {
	store := &S3Store{baseURL: "https://images.example.com"}

	key, err := store.keyFromURL("https://images.example.com/42/abc.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "42/abc.jpg" {
		t.Fatalf("unexpected key %q", key)
	}

	if _, err := store.keyFromURL("https://elsewhere.example.com/42/abc.jpg"); err == nil {
		t.Fatal("expected foreign url to be rejected")
	}
}
