package fileproc

import (
	"context"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildPreview(t *testing.T) {
	Convey("buildPreview 截断规则", t, func() {
		Convey("短文本原样返回", func() {
			So(buildPreview("short text", 20), ShouldEqual, "short text")
		})

		Convey("句末标点位于 70% 之后时在句末截断", func() {
			text := strings.Repeat("a", 15) + ". bbbbbbbbbb"
			So(buildPreview(text, 20), ShouldEqual, strings.Repeat("a", 15)+".")
		})

		Convey("否则在最后一个空白处截断并追加省略号", func() {
			So(buildPreview("one two three four five six", 10), ShouldEqual, "one two...")
		})

		Convey("按字符而不是字节计数", func() {
			text := strings.Repeat("你好", 20)
			So(buildPreview(text, 10), ShouldEqual, strings.Repeat("你好", 5)+"...")
		})
	})
}

func TestTextHandler(t *testing.T) {
	Convey("TextHandler", t, func() {
		h := NewTextHandler(DefaultPreviewLength, nil)
		ctx := context.Background()

		Convey("CSV 不由文本处理器接受", func() {
			So(h.CanProcess("text/csv", "data.csv"), ShouldBeFalse)
			So(h.CanProcess("text/plain", "data.csv"), ShouldBeFalse)
			So(h.CanProcess("text/plain", "notes.txt"), ShouldBeTrue)
			So(h.CanProcess("application/json", "blob"), ShouldBeTrue)
			So(h.CanProcess("application/pdf", "doc.pdf"), ShouldBeFalse)
		})

		Convey("统计行数、词数与字符数", func() {
			res, err := h.Process(ctx, []byte("line one\nline two"), "notes.txt", "text/plain")
			So(err, ShouldBeNil)
			So(res.Type, ShouldEqual, TypeText)
			So(res.Format, ShouldEqual, "plain_text")
			So(res.Metadata["encoding_used"], ShouldEqual, EncodingUTF8)
			So(res.Statistics["line_count"], ShouldEqual, 2)
			So(res.Statistics["word_count"], ShouldEqual, 4)
			So(res.Statistics["character_count"], ShouldEqual, 17)
		})

		Convey("非 UTF-8 字节回退到 latin-1", func() {
			res, err := h.Process(ctx, []byte("caf\xe9"), "menu.txt", "text/plain")
			So(err, ShouldBeNil)
			So(res.Content, ShouldEqual, "café")
			So(res.Metadata["encoding_used"], ShouldEqual, EncodingLatin1)
		})

		Convey("带 BOM 的 UTF-16 数据按 UTF-16 解码", func() {
			res, err := h.Process(ctx, []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "hi.txt", "text/plain")
			So(err, ShouldBeNil)
			So(res.Content, ShouldEqual, "hi")
			So(res.Metadata["encoding_used"], ShouldEqual, EncodingUTF16)
		})

		Convey("UTF-8 BOM 被去除", func() {
			res, err := h.Process(ctx, append([]byte{0xEF, 0xBB, 0xBF}, "hello"...), "a.txt", "text/plain")
			So(err, ShouldBeNil)
			So(res.Content, ShouldEqual, "hello")
		})
	})
}

func TestDetectTextFormat(t *testing.T) {
	Convey("detectTextFormat 先看扩展名再看内容", t, func() {
		So(detectTextFormat("# Title", ".md"), ShouldEqual, "markdown")
		So(detectTextFormat("print(1)", ".py"), ShouldEqual, "code")
		So(detectTextFormat("[]", ".json"), ShouldEqual, "json")
		So(detectTextFormat(`  {"a": 1}  `, ".txt"), ShouldEqual, "json")
		So(detectTextFormat("a,b\n1,2\n3,4", ".txt"), ShouldEqual, "csv")
		So(detectTextFormat("a,b", ".txt"), ShouldEqual, "plain_text")
		So(detectTextFormat("just words", ".log"), ShouldEqual, "plain_text")
	})
}

type countingWords struct{ calls int }

func (c *countingWords) CountWords(text string) int {
	c.calls++
	return 42
}

func TestWordCounter(t *testing.T) {
	Convey("WordCounter", t, func() {
		Convey("FieldsCounter 按空白切分", func() {
			So(FieldsCounter{}.CountWords("  a b\tc\n d "), ShouldEqual, 4)
			So(FieldsCounter{}.CountWords(""), ShouldEqual, 0)
		})

		Convey("未加载词典的 SegmentingCounter 退化为空白切分", func() {
			c := &SegmentingCounter{}
			So(c.CountWords("你好 世界"), ShouldEqual, 2)
		})

		Convey("gse 分词统计中文词数", func() {
			c := NewSegmentingCounter()
			So(c.segmenter, ShouldNotBeNil)

			n := c.CountWords("我爱北京天安门")
			So(n, ShouldBeGreaterThan, 1)
			So(n, ShouldBeLessThanOrEqualTo, 7)

			// 标点不计入
			So(c.CountWords("天安门。"), ShouldEqual, c.CountWords("天安门"))
			// 不含汉字时按空白切分
			So(c.CountWords("hello brave new world"), ShouldEqual, 4)
		})

		Convey("文本处理器使用注入的计数器", func() {
			words := &countingWords{}
			res, err := NewTextHandler(0, words).Process(context.Background(), []byte("x"), "a.txt", "text/plain")
			So(err, ShouldBeNil)
			So(res.Statistics["word_count"], ShouldEqual, 42)
			So(words.calls, ShouldEqual, 1)
		})
	})
}
