// Package testutil provides in-memory ODF fixtures for tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// ODFSpec describes the fixture document to build.
type ODFSpec struct {
	Version   string            // defaults to "1.2"
	Metadata  map[string]string // meta.xml entries, local names
	Styles    map[string]map[string]string // style name -> text properties (local attr names)
	Fonts     []string
	WithMacro bool
}

// BuildODF assembles a minimal but well-formed ODF text document in memory.
func BuildODF(spec ODFSpec) []byte {
	if spec.Version == "" {
		spec.Version = "1.2"
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	// mimetype must be present; ODF wants it stored first.
	w, _ := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	fmt.Fprint(w, "application/vnd.oasis.opendocument.text")

	w, _ = zw.Create("content.xml")
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" office:version="%s">
<office:body><office:text><text:p xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">fixture</text:p></office:text></office:body>
</office:document-content>`, spec.Version)

	w, _ = zw.Create("styles.xml")
	var styles strings.Builder
	styleNames := make([]string, 0, len(spec.Styles))
	for name := range spec.Styles {
		styleNames = append(styleNames, name)
	}
	sort.Strings(styleNames)
	for _, name := range styleNames {
		props := spec.Styles[name]
		var attrs strings.Builder
		propKeys := make([]string, 0, len(props))
		for k := range props {
			propKeys = append(propKeys, k)
		}
		sort.Strings(propKeys)
		for _, k := range propKeys {
			fmt.Fprintf(&attrs, ` fo:%s="%s"`, k, props[k])
		}
		fmt.Fprintf(&styles, `<style:style style:name="%s" style:family="paragraph"><style:text-properties%s/></style:style>`, name, attrs.String())
	}
	var fonts strings.Builder
	for _, f := range spec.Fonts {
		fmt.Fprintf(&fonts, `<style:font-face style:name="%s"/>`, f)
	}
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<office:document-styles xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:style="urn:oasis:names:tc:opendocument:xmlns:style:1.0" xmlns:fo="urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0" office:version="%s">
<office:font-face-decls>%s</office:font-face-decls>
<office:styles>%s</office:styles>
</office:document-styles>`, spec.Version, fonts.String(), styles.String())

	w, _ = zw.Create("meta.xml")
	var meta strings.Builder
	metaKeys := make([]string, 0, len(spec.Metadata))
	for k := range spec.Metadata {
		metaKeys = append(metaKeys, k)
	}
	sort.Strings(metaKeys)
	for _, k := range metaKeys {
		fmt.Fprintf(&meta, `<meta:%s xmlns:meta="urn:oasis:names:tc:opendocument:xmlns:meta:1.0">%s</meta:%s>`, k, spec.Metadata[k], k)
	}
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<office:document-meta xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" office:version="%s">
<office:meta>%s</office:meta>
</office:document-meta>`, spec.Version, meta.String())

	if spec.WithMacro {
		w, _ = zw.Create("Basic/Standard/Module1.xml")
		fmt.Fprint(w, `<script/>`)
	}

	_ = zw.Close()
	return buf.Bytes()
}
