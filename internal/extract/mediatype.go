package extract

import (
	"mime"
	"path/filepath"
	"sort"
	"strings"
)

// Media type labels understood by the extractor.
const (
	MediaTypePlain       = "text/plain"
	MediaTypeCSV         = "text/csv"
	MediaTypeOctetStream = "application/octet-stream"
	MediaTypePCAP        = "application/vnd.tcpdump.pcap"
	MediaTypePDF         = "application/pdf"
	MediaTypeDOCX        = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypePPTX        = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// extensionMediaTypes is the upload allow-list of extensions.
var extensionMediaTypes = map[string]string{
	".txt":  MediaTypePlain,
	".log":  MediaTypePlain,
	".csv":  MediaTypeCSV,
	".pdf":  MediaTypePDF,
	".pptx": MediaTypePPTX,
	".docx": MediaTypeDOCX,
	".pcap": MediaTypePCAP,
}

// NormalizeMediaType lowercases a media type and drops any parameters.
func NormalizeMediaType(mediaType string) string {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
		return mt
	}
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// IsSupportedMediaType reports whether mediaType has an extraction strategy.
func IsSupportedMediaType(mediaType string) bool {
	_, ok := strategies[NormalizeMediaType(mediaType)]
	return ok
}

// SupportedMediaTypes returns the media types that have an extraction strategy, sorted.
func SupportedMediaTypes() []string {
	out := make([]string, 0, len(strategies))
	for mt := range strategies {
		out = append(out, mt)
	}
	sort.Strings(out)
	return out
}

// AllowedExtensions returns the accepted upload extensions (with leading dot), sorted.
func AllowedExtensions() []string {
	out := make([]string, 0, len(extensionMediaTypes))
	for ext := range extensionMediaTypes {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// IsAllowedExtension reports whether the file name carries an accepted extension.
func IsAllowedExtension(filename string) bool {
	_, ok := extensionMediaTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// MediaTypeForExtension maps an accepted extension (".pdf" or "pdf") to its media type label.
// Returns "" when the extension is not in the allow-list.
func MediaTypeForExtension(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return extensionMediaTypes[ext]
}
