package constants

import "strings"

const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// FileTypes holds the allowed values for the format column in extract_job.
var FileTypes = []string{PDF}

// AllowedExtensions holds the file extensions accepted for bill uploads.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// XLSXMimeType is the content type used when serving the spreadsheet.
const XLSXMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DefaultSheetPath is where the session spreadsheet lives unless configured otherwise.
const DefaultSheetPath = "bill_data.xlsx"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to a FileTypes value, or "" when unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "png", "jpg", "jpeg", "tif", "tiff":
		return IMAGE
	default:
		return ""
	}
}
