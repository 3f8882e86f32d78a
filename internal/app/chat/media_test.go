package chat

import "testing"

func TestValidateFileSize(t *testing.T) {
	tests := []struct {
		name string
		size int64
		ok   bool
	}{
		{"zero", 0, false},
		{"negative", -1, false},
		{"one byte", 1, true},
		{"at limit", MaxMediaSize, true},
		{"over limit", MaxMediaSize + 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileSize(tt.size)
			if (err == nil) != tt.ok {
				t.Errorf("ValidateFileSize(%d) error = %v, want ok=%v", tt.size, err, tt.ok)
			}
		})
	}
}

func TestValidateFileType(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		mimeType string
		ok       bool
	}{
		{"jpeg", "photo.jpg", "image/jpeg", true},
		{"jpeg alt ext", "photo.jpeg", "image/jpeg", true},
		{"png", "shot.png", "image/png", true},
		{"webp", "pic.webp", "image/webp", true},
		{"gif", "anim.gif", "image/gif", true},
		{"mime case insensitive", "photo.jpg", "IMAGE/JPEG", true},
		{"disallowed mime", "doc.pdf", "application/pdf", false},
		{"no extension", "photo", "image/jpeg", false},
		{"extension mime mismatch", "photo.png", "image/jpeg", false},
		{"unknown extension", "photo.bmp", "image/png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileType(tt.fileName, tt.mimeType)
			if (err == nil) != tt.ok {
				t.Errorf("ValidateFileType(%q, %q) error = %v, want ok=%v", tt.fileName, tt.mimeType, err, tt.ok)
			}
		})
	}
}
