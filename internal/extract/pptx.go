package extract

import (
	"archive/zip"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// slideName matches slide parts and captures the slide number.
	slideName = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	// spTag matches one shape; p:spTree and p:spPr do not match.
	spTag = regexp.MustCompile(`(?s)<p:sp(?:\s[^>]*[^/])?>(.*?)</p:sp>`)
	// apTag matches one text paragraph inside a shape.
	apTag = regexp.MustCompile(`(?s)<a:p(?:\s[^>]*[^/])?>(.*?)</a:p>`)
	// atTag matches <a:t>text</a:t> with any attributes.
	atTag = regexp.MustCompile(`<a:t(?:\s[^>]*)?>([^<]*)</a:t>`)
	// sldIDTag matches one entry of p:sldIdLst and captures its relationship ID.
	sldIDTag = regexp.MustCompile(`<p:sldId\s[^>]*\br:id="([^"]+)"`)
	// relTag matches one Relationship element; relID and relTarget read its attributes.
	relTag    = regexp.MustCompile(`<Relationship\s[^>]*>`)
	relID     = regexp.MustCompile(`\sId="([^"]+)"`)
	relTarget = regexp.MustCompile(`\sTarget="([^"]+)"`)
)

const (
	presentationPath     = "ppt/presentation.xml"
	presentationRelsPath = "ppt/_rels/presentation.xml.rels"
)

type slidePart struct {
	num  int
	file *zip.File
}

// extractPPTX returns the text of every shape with text, slides in presentation order,
// one shape per line. A shape's paragraphs are separated by newlines.
func extractPPTX(content []byte) (string, error) {
	zr, err := openZip(content)
	if err != nil {
		return "", err
	}
	slides := presentationOrder(zr)
	if slides == nil {
		slides = numericOrder(zr)
	}

	var shapes []string
	for _, f := range slides {
		data, err := readZipFile(f)
		if err != nil {
			return "", err
		}
		for _, sp := range spTag.FindAllStringSubmatch(string(data), -1) {
			if text := shapeText(sp[1]); text != "" {
				shapes = append(shapes, text)
			}
		}
	}
	return strings.Join(shapes, "\n"), nil
}

// presentationOrder returns the slides listed in p:sldIdLst, resolved through the
// presentation relationships. It returns nil when the list cannot be resolved.
func presentationOrder(zr *zip.Reader) []*zip.File {
	pres := findZipFile(zr, presentationPath)
	rels := findZipFile(zr, presentationRelsPath)
	if pres == nil || rels == nil {
		return nil
	}
	presXML, err := readZipFile(pres)
	if err != nil {
		return nil
	}
	relsXML, err := readZipFile(rels)
	if err != nil {
		return nil
	}
	targets := make(map[string]string)
	for _, tag := range relTag.FindAll(relsXML, -1) {
		id, target := relID.FindSubmatch(tag), relTarget.FindSubmatch(tag)
		if id == nil || target == nil {
			continue
		}
		targets[string(id[1])] = resolveTarget(string(target[1]))
	}
	var slides []*zip.File
	for _, m := range sldIDTag.FindAllSubmatch(presXML, -1) {
		name, ok := targets[string(m[1])]
		if !ok {
			return nil
		}
		f := findZipFile(zr, name)
		if f == nil {
			return nil
		}
		slides = append(slides, f)
	}
	return slides
}

// resolveTarget turns a relationship target of ppt/presentation.xml into a zip entry name.
func resolveTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join("ppt", target)
}

// numericOrder returns ppt/slides/slideN.xml parts sorted by N.
func numericOrder(zr *zip.Reader) []*zip.File {
	var parts []slidePart
	for _, f := range zr.File {
		m := slideName.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		parts = append(parts, slidePart{num: n, file: f})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].num < parts[j].num })
	slides := make([]*zip.File, 0, len(parts))
	for _, p := range parts {
		slides = append(slides, p.file)
	}
	return slides
}

func shapeText(shapeXML string) string {
	matches := apTag.FindAllStringSubmatch(shapeXML, -1)
	if len(matches) == 0 {
		return ""
	}
	lines := make([]string, 0, len(matches))
	for _, p := range matches {
		lines = append(lines, joinRuns(atTag, p[1]))
	}
	text := strings.Join(lines, "\n")
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}
