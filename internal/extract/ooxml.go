package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"
)

// contentTypesPath is the path to [Content_Types].xml in OOXML packages.
const contentTypesPath = "[Content_Types].xml"

// openZip opens OOXML package bytes.
func openZip(content []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("not a zip: %w", err)
	}
	return zr, nil
}

// readZipFile returns the contents of one zip entry.
func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return buf.Bytes(), nil
}

// findZipFile returns the entry named name, or nil.
func findZipFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// overridePartName returns the PartName of the Override whose ContentType is contentType,
// without leading slash. Both attribute orders are accepted. Returns "" if absent.
func overridePartName(zr *zip.Reader, contentType string) string {
	f := findZipFile(zr, contentTypesPath)
	if f == nil {
		return ""
	}
	data, err := readZipFile(f)
	if err != nil {
		return ""
	}
	ct := regexp.QuoteMeta(contentType)
	for _, re := range []*regexp.Regexp{
		regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + ct + `"`),
		regexp.MustCompile(`<Override[^>]+ContentType="` + ct + `"[^>]+PartName="([^"]+)"`),
	} {
		if m := re.FindSubmatch(data); len(m) > 1 {
			return strings.TrimPrefix(string(m[1]), "/")
		}
	}
	return ""
}

// joinRuns concatenates the inner text of every match of textRe in xml, unescaping entities.
func joinRuns(textRe *regexp.Regexp, xml string) string {
	var b strings.Builder
	for _, m := range textRe.FindAllStringSubmatch(xml, -1) {
		b.WriteString(html.UnescapeString(m[1]))
	}
	return b.String()
}
