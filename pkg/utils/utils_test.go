package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
	}{
		{"bare bytes", "1024", 1024},
		{"bytes suffix", "10B", 10},
		{"IEC KiB", "64KiB", 64 * KiB},
		{"IEC MiB", "100MiB", 100 * MiB},
		{"IEC GiB", "2GiB", 2 * GiB},
		{"SI MB", "1MB", 1000 * 1000},
		{"lowercase", "1mib", MiB},
		{"surrounding space", " 1MiB ", MiB},
		{"zero", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if err != nil {
				t.Fatalf("ParseSize(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseSizeInvalid(t *testing.T) {
	for _, input := range []string{"", "   ", "-1MB", "abc", "12XB"} {
		t.Run(input, func(t *testing.T) {
			if _, err := ParseSize(input); err == nil {
				t.Errorf("ParseSize(%q) expected error", input)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{-5, "0 B"},
		{0, "0 B"},
		{512, "512 B"},
		{KiB, "1.0 KiB"},
		{MiB, "1.0 MiB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.input); got != tt.expected {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestHashFileKnownDigests(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.txt")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		algorithm string
		expected  string
	}{
		{AlgorithmMD5, "5d41402abc4b2a76b9719d911017c592"},
		{AlgorithmSHA256, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			got, err := HashFile(path, tt.algorithm)
			if err != nil {
				t.Fatalf("HashFile failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("HashFile(%s) = %s, want %s", tt.algorithm, got, tt.expected)
			}
		})
	}
}

func TestHashFileXXHashStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(path, []byte("some content"), 0644); err != nil {
		t.Fatal(err)
	}

	first, err := HashFile(path, AlgorithmXXHash)
	if err != nil {
		t.Fatal(err)
	}
	second, err := HashFile(path, AlgorithmXXHash)
	if err != nil {
		t.Fatal(err)
	}
	if first != second || len(first) != 16 {
		t.Errorf("xxhash digests %q and %q, want equal 16-char digests", first, second)
	}
}

func TestValidateAlgorithm(t *testing.T) {
	for _, name := range []string{"md5", "MD5", "sha256", "xxhash"} {
		if err := ValidateAlgorithm(name); err != nil {
			t.Errorf("ValidateAlgorithm(%q) = %v, want nil", name, err)
		}
	}
	if err := ValidateAlgorithm("crc32"); err == nil {
		t.Error("ValidateAlgorithm(crc32) expected error")
	}
}
