package qr

import (
	"bytes"
	"testing"
)

func TestVerificationURL(t *testing.T) {
	got := VerificationURL("https://lost2found.example.edu", "item-42")
	want := "https://lost2found.example.edu/items/item-42/verify"
	if got != want {
		t.Errorf("VerificationURL = %q, want %q", got, want)
	}
}

func TestPNG(t *testing.T) {
	png, err := PNG("https://lost2found.example.edu", "item-42", 0)
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("output is not a PNG image")
	}
}
