package fileproc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func scoresCSV() []byte {
	var sb strings.Builder
	sb.WriteString("id,score,name\n")
	for i := 0; i < 100; i++ {
		score := fmt.Sprintf("%.1f", float64(i)*1.5)
		if i == 10 || i == 20 {
			score = ""
		}
		fmt.Fprintf(&sb, "%d,%s,user%d\n", i, score, i)
	}
	return []byte(sb.String())
}

func TestCSVHandler(t *testing.T) {
	Convey("CSVHandler", t, func() {
		h := NewCSVHandler()
		ctx := context.Background()

		Convey("汇总 100 行 3 列且数值列有 2 个缺失值的表格", func() {
			res, err := h.Process(ctx, scoresCSV(), "scores.csv", "text/csv")
			So(err, ShouldBeNil)
			So(res.Type, ShouldEqual, TypeCSV)

			So(res.Statistics["row_count"], ShouldEqual, 100)
			So(res.Statistics["column_count"], ShouldEqual, 3)
			So(res.Statistics["numeric_columns"], ShouldEqual, 2)
			So(res.Statistics["text_columns"], ShouldEqual, 1)
			So(res.Statistics["missing_values"], ShouldEqual, 2)
			So(res.Statistics["duplicate_rows"], ShouldEqual, 0)

			numericStats := res.Statistics["numeric_stats"].(map[string]any)
			So(numericStats, ShouldContainKey, "id")
			So(numericStats, ShouldContainKey, "score")
			So(numericStats, ShouldNotContainKey, "name")
			score := numericStats["score"].(map[string]any)
			So(score["min"], ShouldEqual, 0.0)
			So(score["max"], ShouldEqual, 148.5)
			So(numericStats["id"].(map[string]any)["mean"], ShouldEqual, 49.5)

			So(res.Metadata["columns"], ShouldResemble, []string{"id", "score", "name"})
			So(res.Metadata["shape"], ShouldResemble, []int{100, 3})
			So(res.Metadata["encoding_used"], ShouldEqual, EncodingUTF8)
			So(res.Metadata["dialect"].(map[string]any)["delimiter"], ShouldEqual, ",")

			So(res.Content, ShouldStartWith, "CSV Data Summary:")
			So(res.Content, ShouldContainSubstring, "- 100 rows and 3 columns")
			So(res.Content, ShouldContainSubstring, "- Columns: id, score, name")
			So(res.Content, ShouldContainSubstring, "NaN")
			So(res.Content, ShouldContainSubstring, "... and 80 more rows")
			So(res.Preview, ShouldStartWith, "Preview of first 10 rows:\n\n")
		})

		Convey("识别分号分隔", func() {
			res, err := h.Process(ctx, []byte("a;b;c\n1;2;3\n4;5;6\n"), "semi.csv", "text/csv")
			So(err, ShouldBeNil)
			So(res.Metadata["columns"], ShouldResemble, []string{"a", "b", "c"})
			dialect := res.Metadata["dialect"].(map[string]any)
			So(dialect["delimiter"], ShouldEqual, ";")
			So(dialect["sniffed"], ShouldBeTrue)
			So(res.Statistics["row_count"], ShouldEqual, 2)
		})

		Convey("字段内含换行的分号文件", func() {
			res, err := h.Process(ctx, []byte("a;b;c\n\"x\ny\nz\nw\";2;3\n4;5;6\n"), "multi.csv", "text/csv")
			So(err, ShouldBeNil)
			So(res.Metadata["columns"], ShouldResemble, []string{"a", "b", "c"})
			So(res.Statistics["row_count"], ShouldEqual, 2)
		})

		Convey("单引号作为引用符", func() {
			res, err := h.Process(ctx, []byte("name,comment\n'Smith, J',ok\n'Doe, A',fine\n"), "quoted.csv", "text/csv")
			So(err, ShouldBeNil)
			So(res.Metadata["dialect"].(map[string]any)["quotechar"], ShouldEqual, "'")
			So(res.Statistics["row_count"], ShouldEqual, 2)
			So(res.Statistics["column_count"], ShouldEqual, 2)
			So(res.Content, ShouldContainSubstring, "Smith, J")
		})

		Convey("统计重复行", func() {
			res, err := h.Process(ctx, []byte("a,b\n1,2\n1,2\n3,4\n"), "dup.csv", "text/csv")
			So(err, ShouldBeNil)
			So(res.Statistics["duplicate_rows"], ShouldEqual, 1)
		})

		Convey("全部缺失的列统计值为 nil", func() {
			res, err := h.Process(ctx, []byte("a,b\n1,\n2,\n"), "empty-col.csv", "text/csv")
			So(err, ShouldBeNil)
			So(res.Statistics["missing_values"], ShouldEqual, 2)
			b := res.Statistics["numeric_stats"].(map[string]any)["b"].(map[string]any)
			So(b["mean"], ShouldBeNil)
		})

		Convey("只有表头时所有列都是文本列", func() {
			res, err := h.Process(ctx, []byte("name,city\n"), "header.csv", "text/csv")
			So(err, ShouldBeNil)
			So(res.Statistics["row_count"], ShouldEqual, 0)
			So(res.Statistics["numeric_columns"], ShouldEqual, 0)
			So(res.Statistics["text_columns"], ShouldEqual, 2)
			So(res.Statistics, ShouldNotContainKey, "numeric_stats")
		})

		Convey("含文本值的列不是数值列", func() {
			res, err := h.Process(ctx, []byte("a,b\n1,x\n2,\n"), "mixed.csv", "text/csv")
			So(err, ShouldBeNil)
			So(res.Statistics["numeric_columns"], ShouldEqual, 1)
			So(res.Statistics["numeric_stats"].(map[string]any), ShouldNotContainKey, "b")
		})

		Convey("空文件返回处理错误", func() {
			_, err := h.Process(ctx, []byte(""), "empty.csv", "text/csv")
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrFileProcessing), ShouldBeTrue)
		})
	})
}

func TestSniffDialect(t *testing.T) {
	Convey("SniffDialect", t, func() {
		Convey("制表符分隔", func() {
			d := SniffDialect("a\tb\n1\t2\n")
			So(d.Delimiter, ShouldEqual, '\t')
			So(d.Sniffed, ShouldBeTrue)
		})

		Convey("无法判断时返回默认方言", func() {
			d := SniffDialect("single\ncolumn\n")
			So(d, ShouldResemble, DefaultDialect())
		})

		Convey("引号内的换行不切分记录", func() {
			d := SniffDialect("a;b;c\n\"x\ny\nz\nw\";2;3\n4;5;6")
			So(d.Delimiter, ShouldEqual, ';')
			So(d.Sniffed, ShouldBeTrue)
		})

		Convey("引号内的分隔符不计数", func() {
			d := SniffDialect("\"x;y\",b\n\"1;2\",3\n")
			So(d.Delimiter, ShouldEqual, ',')
			So(d.QuoteChar, ShouldEqual, '"')
		})
	})
}

func TestHeaderNames(t *testing.T) {
	Convey("headerNames 为空表头与重名表头命名", t, func() {
		So(headerNames([]string{"a", "", "a", "a"}), ShouldResemble, []string{"a", "Unnamed: 1", "a.1", "a.2"})
	})
}
