package fileproc

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type stubRecognizer struct {
	text string
	err  error
}

func (s stubRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	return s.text, s.err
}

func encodePNG(t *testing.T, w, h int) []byte {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.SetGray(x, 0, color.Gray{Y: 200})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestImageHandler(t *testing.T) {
	Convey("ImageHandler", t, func() {
		ctx := context.Background()
		data := encodePNG(t, 4, 3)

		Convey("按媒体类型或扩展名接受", func() {
			h := NewImageHandler(nil)
			So(h.CanProcess("image/png", "x"), ShouldBeTrue)
			So(h.CanProcess("application/octet-stream", "scan.TIFF"), ShouldBeTrue)
			So(h.CanProcess("text/plain", "notes.txt"), ShouldBeFalse)
			So(h.OCRAvailable(), ShouldBeFalse)
		})

		Convey("没有 OCR 时只输出尺寸与格式", func() {
			res, err := NewImageHandler(nil).Process(ctx, data, "chart.png", "image/png")
			So(err, ShouldBeNil)
			So(res.Type, ShouldEqual, TypeImage)
			So(res.Content, ShouldContainSubstring, "Image file: chart.png")
			So(res.Content, ShouldContainSubstring, "Dimensions: 4x3 pixels")
			So(res.Content, ShouldContainSubstring, "Format: PNG")
			So(res.Content, ShouldContainSubstring, "No text detected in image or OCR not available.")
			So(res.Preview, ShouldEqual, "Image: chart.png (4x3)")
			So(res.Metadata["width"], ShouldEqual, 4)
			So(res.Metadata["height"], ShouldEqual, 3)
			So(res.Metadata["mode"], ShouldEqual, "L")
			So(res.Statistics["has_text"], ShouldBeFalse)
			So(res.Statistics["file_size_bytes"], ShouldEqual, len(data))
			So(res.Attachment, ShouldEqual, base64.StdEncoding.EncodeToString(data))
		})

		Convey("OCR 识别出的文字写入内容", func() {
			h := NewImageHandler(stubRecognizer{text: "  INVOICE 42 \n"})
			So(h.OCRAvailable(), ShouldBeTrue)

			res, err := h.Process(ctx, data, "invoice.png", "image/png")
			So(err, ShouldBeNil)
			So(res.Content, ShouldContainSubstring, "Text extracted from image:\nINVOICE 42")
			So(res.Metadata["extracted_text"], ShouldEqual, "INVOICE 42")
			So(res.Statistics["has_text"], ShouldBeTrue)
			So(res.Statistics["text_length"], ShouldEqual, 10)
		})

		Convey("OCR 失败不影响结果", func() {
			res, err := NewImageHandler(stubRecognizer{err: errors.New("tesseract crashed")}).Process(ctx, data, "x.png", "image/png")
			So(err, ShouldBeNil)
			So(res.Statistics["has_text"], ShouldBeFalse)
		})

		Convey("无法解码的图片返回处理错误", func() {
			_, err := NewImageHandler(nil).Process(ctx, []byte("nope"), "x.png", "image/png")
			So(errors.Is(err, ErrFileProcessing), ShouldBeTrue)
		})
	})
}
