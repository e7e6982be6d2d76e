package fileproc

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type panicHandler struct{}

func (panicHandler) Name() string                   { return "panicky" }
func (panicHandler) CanProcess(string, string) bool { return true }
func (panicHandler) Process(context.Context, []byte, string, string) (*Result, error) {
	panic("index out of range")
}

type failingHandler struct{}

func (failingHandler) Name() string                   { return "failing" }
func (failingHandler) CanProcess(string, string) bool { return true }
func (failingHandler) Process(context.Context, []byte, string, string) (*Result, error) {
	return nil, errors.New("boom")
}

func TestProcessor_Process(t *testing.T) {
	Convey("Processor.Process", t, func() {
		ctx := context.Background()
		p := NewProcessor(Options{})

		Convey("超出大小上限时在分派前失败", func() {
			small := NewProcessor(Options{MaxFileSize: 10})
			_, err := small.Process(ctx, Upload{Name: "a.txt", Data: []byte("01234567890")})
			So(errors.Is(err, ErrFileProcessing), ShouldBeTrue)

			var perr *ProcessingError
			So(errors.As(err, &perr), ShouldBeTrue)
			So(perr.Op, ShouldEqual, "validate")
			So(perr.FileName, ShouldEqual, "a.txt")
		})

		Convey("CSV 由 CSV 处理器处理", func() {
			res, err := p.Process(ctx, Upload{Name: "data.csv", MediaType: "text/csv", Data: []byte("a,b\n1,2\n")})
			So(err, ShouldBeNil)
			So(res.Type, ShouldEqual, TypeCSV)
		})

		Convey("文本结果合并基础元数据", func() {
			data := []byte("hello world")
			res, err := p.Process(ctx, Upload{Name: "Notes.TXT", Data: data})
			So(err, ShouldBeNil)
			So(res.Type, ShouldEqual, TypeText)
			So(res.Metadata["name"], ShouldEqual, "Notes.TXT")
			So(res.Metadata["extension"], ShouldEqual, ".txt")
			So(res.Metadata["size_bytes"], ShouldEqual, int64(len(data)))
			So(res.Metadata["size_human"], ShouldEqual, "11.0 B")
			So(res.Metadata["encoding_used"], ShouldEqual, EncodingUTF8)
			So(res.Metadata, ShouldContainKey, "processed_at")
		})

		Convey("没有处理器接受时返回描述性结果", func() {
			res, err := p.Process(ctx, Upload{Name: "archive.qqq", Data: []byte{0x00, 0x01, 0x02, 0x03}})
			So(err, ShouldBeNil)
			So(res.Type, ShouldEqual, TypeUnsupported)
			So(res.Content, ShouldStartWith, "File: archive.qqq\nType: application/octet-stream\nSize: 0.00 MB")
			So(res.Content, ShouldContainSubstring, "not currently supported")
			So(res.Metadata["name"], ShouldEqual, "archive.qqq")
		})

		Convey("处理器 panic 被转成处理错误", func() {
			_, err := NewProcessorWithHandlers(0, panicHandler{}).Process(ctx, Upload{Name: "x.bin", Data: []byte("x")})
			So(errors.Is(err, ErrFileProcessing), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "index out of range")
		})

		Convey("普通错误被包装并保留原因", func() {
			_, err := NewProcessorWithHandlers(0, failingHandler{}).Process(ctx, Upload{Name: "x.bin", Data: []byte("x")})
			So(errors.Is(err, ErrFileProcessing), ShouldBeTrue)
			var perr *ProcessingError
			So(errors.As(err, &perr), ShouldBeTrue)
			So(perr.Op, ShouldEqual, "failing")
			So(perr.Err.Error(), ShouldEqual, "boom")
		})
	})
}

func TestResolveMediaType(t *testing.T) {
	Convey("ResolveMediaType 依次采用声明、扩展名、内容", t, func() {
		So(ResolveMediaType("a.bin", "text/plain; charset=utf-8", nil), ShouldEqual, "text/plain")
		So(ResolveMediaType("report.pdf", "application/octet-stream", nil), ShouldEqual, "application/pdf")
		So(ResolveMediaType("noext", "", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")), ShouldEqual, "image/png")
		So(ResolveMediaType("noext", "", nil), ShouldEqual, "application/octet-stream")
	})
}

func TestProcessor_Capabilities(t *testing.T) {
	Convey("Capabilities 与 SupportedFormats", t, func() {
		without := NewProcessor(Options{})
		with := NewProcessor(Options{OCR: stubRecognizer{}})

		So(without.OCRAvailable(), ShouldBeFalse)
		So(with.OCRAvailable(), ShouldBeTrue)
		So(without.Capabilities()["Images"], ShouldNotContainSubstring, "OCR")
		So(with.Capabilities()["Images"], ShouldContainSubstring, "OCR")
		So(without.SupportedFormats()["Data Files"], ShouldResemble, []string{".csv"})
		So(without.SupportedFormats()["Documents"], ShouldContain, ".docx")
		So(without.MaxFileSize(), ShouldEqual, DefaultMaxFileSize)
	})
}

func TestHumanSize(t *testing.T) {
	Convey("HumanSize", t, func() {
		So(HumanSize(512), ShouldEqual, "512.0 B")
		So(HumanSize(2048), ShouldEqual, "2.0 KB")
		So(HumanSize(5*1024*1024), ShouldEqual, "5.0 MB")
	})
}
