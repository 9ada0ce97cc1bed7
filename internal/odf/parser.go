// Package odf parses OpenDocument containers into a normalized structural
// profile. An ODF file is a ZIP archive whose first entry declares the
// mimetype and whose XML parts (meta.xml, styles.xml, content.xml) carry the
// metadata, style and font declarations the compliance rules operate on.
package odf

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrMalformed indicates the bytes are not a structurally valid ODF document.
// Parsing is deterministic, so the same bytes always fail the same way; the
// error is never worth retrying.
var ErrMalformed = errors.New("malformed odf document")

const odfMimePrefix = "application/vnd.oasis.opendocument"

// Parse reads an ODF container and extracts its structural profile.
// It returns an error wrapping ErrMalformed for anything that is not a
// well-formed ODF document, including PDF and OOXML uploads.
func Parse(content []byte) (*Profile, error) {
	if bytes.HasPrefix(content, []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: PDF content, structural standards apply to ODF only", ErrMalformed)
	}

	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip container: %v", ErrMalformed, err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	hasMacros := false
	for _, f := range zr.File {
		files[f.Name] = f
		if strings.HasPrefix(f.Name, "Basic/") || strings.HasPrefix(f.Name, "Scripts/") {
			hasMacros = true
		}
	}

	if _, ok := files["word/document.xml"]; ok {
		return nil, fmt.Errorf("%w: OOXML content, structural standards apply to ODF only", ErrMalformed)
	}

	mimetype, err := readEntry(files, "mimetype")
	if err != nil {
		return nil, fmt.Errorf("%w: missing mimetype entry", ErrMalformed)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(mimetype)), odfMimePrefix) {
		return nil, fmt.Errorf("%w: unexpected mimetype %q", ErrMalformed, strings.TrimSpace(string(mimetype)))
	}

	contentXML, err := readEntry(files, "content.xml")
	if err != nil {
		return nil, fmt.Errorf("%w: missing content.xml", ErrMalformed)
	}

	p := &Profile{
		Metadata:  map[string]string{},
		Styles:    map[string]Style{},
		Fonts:     []string{},
		HasMacros: hasMacros,
	}

	version, err := parseDocumentPart(contentXML, p)
	if err != nil {
		return nil, fmt.Errorf("%w: content.xml: %v", ErrMalformed, err)
	}
	p.SchemaVersion = version

	// styles.xml holds the named (common) styles; automatic styles live in
	// content.xml and were collected above. styles.xml is optional.
	if stylesXML, err := readEntry(files, "styles.xml"); err == nil {
		if _, err := parseDocumentPart(stylesXML, p); err != nil {
			return nil, fmt.Errorf("%w: styles.xml: %v", ErrMalformed, err)
		}
	}

	// meta.xml is optional; a flat document keeps metadata in content.xml and
	// the walk above already collected it.
	if metaXML, err := readEntry(files, "meta.xml"); err == nil {
		if _, err := parseDocumentPart(metaXML, p); err != nil {
			return nil, fmt.Errorf("%w: meta.xml: %v", ErrMalformed, err)
		}
	}

	dedupeFonts(p)
	return p, nil
}

func readEntry(files map[string]*zip.File, name string) ([]byte, error) {
	f, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("entry %s not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// parseDocumentPart walks one XML part and accumulates metadata, styles and
// font faces into the profile. It returns the office:version attribute of the
// root element when present.
func parseDocumentPart(part []byte, p *Profile) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(part))
	version := ""
	sawRoot := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if !sawRoot {
			sawRoot = true
			version = attr(se, "version")
			continue
		}

		switch se.Name.Local {
		case "meta":
			if err := parseMeta(dec, p); err != nil {
				return "", err
			}
		case "style":
			if err := parseStyle(dec, se, p); err != nil {
				return "", err
			}
		case "font-face":
			if name := attr(se, "name"); name != "" {
				p.Fonts = append(p.Fonts, name)
			}
			if err := dec.Skip(); err != nil {
				return "", err
			}
		}
	}

	if !sawRoot {
		return "", errors.New("no root element")
	}
	return version, nil
}

// parseMeta collects the children of office:meta as a flat key/value table,
// keyed by local element name with text content as the value.
func parseMeta(dec *xml.Decoder, p *Profile) error {
	depth := 1
	var current string
	var text strings.Builder

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				current = t.Name.Local
				text.Reset()
			}
		case xml.CharData:
			if depth == 2 && current != "" {
				text.Write(t)
			}
		case xml.EndElement:
			depth--
			if depth == 1 && current != "" {
				p.Metadata[current] = strings.TrimSpace(text.String())
				current = ""
			}
		}
	}
	return nil
}

// parseStyle reads one style:style element and its text-/paragraph-properties
// children. Later declarations of the same name win, which matches how
// automatic styles in content.xml shadow nothing and named styles are unique.
func parseStyle(dec *xml.Decoder, se xml.StartElement, p *Profile) error {
	name := attr(se, "name")
	st := Style{
		Family:     attr(se, "family"),
		Parent:     attr(se, "parent-style-name"),
		Properties: map[string]string{},
	}

	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			prefix := ""
			switch t.Name.Local {
			case "text-properties":
				prefix = "text:"
			case "paragraph-properties":
				prefix = "paragraph:"
			}
			if prefix != "" && depth == 2 {
				for _, a := range t.Attr {
					st.Properties[prefix+a.Name.Local] = a.Value
				}
			}
		case xml.EndElement:
			depth--
		}
	}

	if name != "" {
		p.Styles[name] = st
	}
	return nil
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func dedupeFonts(p *Profile) {
	seen := make(map[string]struct{}, len(p.Fonts))
	out := p.Fonts[:0]
	for _, f := range p.Fonts {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	p.Fonts = out
	sort.Strings(p.Fonts)
}
