package fileproc

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const testDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Intro</w:t></w:r></w:p>
<w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t xml:space="preserve"> world</w:t></w:r></w:p>
<w:p></w:p>
<w:tbl>
<w:tblPr><w:tblW w:w="0" w:type="auto"/></w:tblPr>
<w:tr><w:tc><w:tcPr/><w:p><w:r><w:t>A</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>B</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>1</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>2</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
<w:sectPr/>
</w:body>
</w:document>`

const testCoreXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/">
<dc:title>Report</dc:title><dc:creator>Alice</dc:creator><cp:lastModifiedBy>Bob</cp:lastModifiedBy>
</cp:coreProperties>`

func buildDOCX(t *testing.T, entries map[string]string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestDOCXHandler(t *testing.T) {
	Convey("DOCXHandler", t, func() {
		h := NewDOCXHandler(0, nil)
		ctx := context.Background()

		Convey("保留标题、段落与表格的文档顺序", func() {
			data := buildDOCX(t, map[string]string{
				"word/document.xml": testDocumentXML,
				"docProps/core.xml": testCoreXML,
			})

			res, err := h.Process(ctx, data, "report.docx", docxMediaType)
			So(err, ShouldBeNil)
			So(res.Type, ShouldEqual, TypeDOCX)
			So(res.Content, ShouldContainSubstring, "Heading 1: Intro")
			So(res.Content, ShouldContainSubstring, "Hello world")
			So(res.Content, ShouldContainSubstring, "[TABLE]\nA | B\n1 | 2\n[/TABLE]")
			So(res.Content, ShouldNotContainSubstring, "auto")
			So(bytes.Index([]byte(res.Content), []byte("Intro")), ShouldBeLessThan, bytes.Index([]byte(res.Content), []byte("[TABLE]")))

			So(res.Statistics["paragraph_count"], ShouldEqual, 3)
			So(res.Statistics["table_count"], ShouldEqual, 1)
			So(res.Metadata["title"], ShouldEqual, "Report")
			So(res.Metadata["author"], ShouldEqual, "Alice")
			So(res.Metadata["last_modified_by"], ShouldEqual, "Bob")
		})

		Convey("没有 core.xml 时元数据为空", func() {
			data := buildDOCX(t, map[string]string{"word/document.xml": testDocumentXML})
			res, err := h.Process(ctx, data, "report.docx", docxMediaType)
			So(err, ShouldBeNil)
			So(res.Metadata, ShouldNotContainKey, "title")
		})

		Convey("不是 zip 的数据返回处理错误", func() {
			_, err := h.Process(ctx, []byte("not a zip"), "broken.docx", docxMediaType)
			So(errors.Is(err, ErrFileProcessing), ShouldBeTrue)
		})

		Convey("缺少 document.xml 返回处理错误", func() {
			data := buildDOCX(t, map[string]string{"word/styles.xml": "<w:styles/>"})
			_, err := h.Process(ctx, data, "broken.docx", docxMediaType)
			So(errors.Is(err, ErrFileProcessing), ShouldBeTrue)
			So(errors.Is(err, errMissingDocument), ShouldBeTrue)
		})
	})
}
