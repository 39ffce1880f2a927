package constants

import "testing"

func TestIsAllowedContentType(t *testing.T) {
	tests := []struct {
		ct   string
		want bool
	}{
		{"application/pdf", true},
		{"image/png", true},
		{"image/jpeg", true},
		{"image/jpg", true},
		{"image/gif", false},
		{"text/plain", false},
		{"", false},
		{"application/pdf; charset=binary", false},
	}
	for _, tt := range tests {
		if got := IsAllowedContentType(tt.ct); got != tt.want {
			t.Errorf("IsAllowedContentType(%q) = %v, want %v", tt.ct, got, tt.want)
		}
	}
}

func TestMapExtToFormat(t *testing.T) {
	tests := map[string]string{
		".pdf":  PDF,
		"PDF":   PDF,
		".png":  IMAGE,
		"jpeg":  IMAGE,
		"":      IMAGE,
		".tiff": IMAGE,
	}
	for ext, want := range tests {
		if got := MapExtToFormat(ext); got != want {
			t.Errorf("MapExtToFormat(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestContentTypeForExt(t *testing.T) {
	if got := ContentTypeForExt(".JPG"); got != "image/jpeg" {
		t.Errorf("got %q", got)
	}
	if got := ContentTypeForExt(".txt"); got != "" {
		t.Errorf("expected empty content type, got %q", got)
	}
}
