package constants

import "strings"

// Document formats recognised by the OCR extractor.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// AllowedContentTypes holds the upload content types accepted by the extraction endpoint.
// Order matters: it is echoed back in the validation error.
var AllowedContentTypes = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
	"image/jpg",
}

// AllowedExtensions holds the file extensions picked up by the batch runner.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// IsAllowedContentType reports whether ct is in AllowedContentTypes. Parameters such as
// "; charset=binary" are not stripped: the match is exact.
func IsAllowedContentType(ct string) bool {
	for _, a := range AllowedContentTypes {
		if ct == a {
			return true
		}
	}
	return false
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to PDF or IMAGE. Anything that is not
// a PDF is handed to the image decoder.
func MapExtToFormat(ext string) string {
	if NormalizeExt(ext) == "pdf" {
		return PDF
	}
	return IMAGE
}

// ContentTypeForExt returns the upload content type for a known extension, or "".
func ContentTypeForExt(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return "application/pdf"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	}
	return ""
}
