package conversation

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// fixedClock 让 nowFunc 每次调用前进一秒
func fixedClock(start time.Time) func() {
	current := start
	prev := nowFunc
	nowFunc = func() time.Time {
		current = current.Add(time.Second)
		return current
	}
	return func() { nowFunc = prev }
}

func TestConversation_AddMessage(t *testing.T) {
	Convey("Conversation.AddMessage 维护派生元数据", t, func() {
		restore := fixedClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
		defer restore()

		conv := New("")
		So(conv.Title, ShouldEqual, DefaultTitle)

		Convey("每次追加后 total_messages 与消息数一致", func() {
			for i := 0; i < 7; i++ {
				role := RoleUser
				if i%2 == 1 {
					role = RoleAssistant
				}
				conv.AddMessage("hello", role, "gemini-1.5-pro")
				So(conv.Metadata.TotalMessages, ShouldEqual, len(conv.Messages))
			}
		})

		Convey("仅 assistant 消息记录使用的模型", func() {
			conv.AddMessage("question", RoleUser, "should-not-appear")
			conv.AddMessage("answer", RoleAssistant, "gemini-1.5-pro")
			conv.AddMessage("answer", RoleAssistant, "")
			So(conv.ModelsUsedSorted(), ShouldResemble, []string{"gemini-1.5-pro"})
			So(conv.Messages[0].ModelUsed, ShouldEqual, "")
		})

		Convey("updated_at 不早于 created_at 且随追加前进", func() {
			before := conv.UpdatedAt
			conv.AddMessage("hi", RoleUser, "")
			So(conv.UpdatedAt.After(before), ShouldBeTrue)
			So(conv.UpdatedAt.Before(conv.CreatedAt), ShouldBeFalse)
		})

		Convey("消息 ID 唯一", func() {
			a := conv.AddMessage("a", RoleUser, "")
			b := conv.AddMessage("b", RoleAssistant, "m")
			So(a.ID, ShouldNotEqual, b.ID)
		})
	})
}

func TestConversation_TitleDerivation(t *testing.T) {
	Convey("首条用户消息派生标题", t, func() {
		Convey("折叠空白且无需截断", func() {
			conv := New(DefaultTitle)
			conv.AddMessage("  Explain quantum computing in simple terms please", RoleUser, "")
			So(conv.Title, ShouldEqual, "Explain quantum computing in simple terms please")
		})

		Convey("超过 50 个字符时截断并追加省略号", func() {
			conv := New("")
			conv.AddMessage(strings.Repeat("a", 80), RoleUser, "")
			So(conv.Title, ShouldEqual, strings.Repeat("a", 50)+"...")
		})

		Convey("多字节字符按字符截断", func() {
			conv := New("")
			conv.AddMessage(strings.Repeat("量", 60), RoleUser, "")
			So(conv.Title, ShouldEqual, strings.Repeat("量", 50)+"...")
		})

		Convey("已有自定义标题时不覆盖", func() {
			conv := New("My research")
			conv.AddMessage("Something else entirely", RoleUser, "")
			So(conv.Title, ShouldEqual, "My research")
		})

		Convey("首条消息来自 assistant 时不派生，之后也不再派生", func() {
			conv := New("")
			conv.AddMessage("Welcome!", RoleAssistant, "m")
			conv.AddMessage("question", RoleUser, "")
			So(conv.Title, ShouldEqual, DefaultTitle)
		})

		Convey("纯空白内容保持默认标题", func() {
			conv := New("")
			conv.AddMessage("   \n\t ", RoleUser, "")
			So(conv.Title, ShouldEqual, DefaultTitle)
		})
	})
}

func TestConversation_Queries(t *testing.T) {
	Convey("RecentMessages 与 SearchMessages", t, func() {
		conv := New("")
		conv.AddMessage("Tell me about Go", RoleUser, "")
		conv.AddMessage("Go is a language", RoleAssistant, "m1")
		conv.AddMessage("And Rust?", RoleUser, "")

		Convey("RecentMessages 返回尾部且保持顺序", func() {
			recent := conv.RecentMessages(2)
			So(len(recent), ShouldEqual, 2)
			So(recent[0].Content, ShouldEqual, "Go is a language")
			So(recent[1].Content, ShouldEqual, "And Rust?")
			So(len(conv.RecentMessages(10)), ShouldEqual, 3)
			So(len(conv.RecentMessages(0)), ShouldEqual, 0)
		})

		Convey("SearchMessages 大小写不敏感", func() {
			So(len(conv.SearchMessages("GO")), ShouldEqual, 2)
			So(len(conv.SearchMessages("python")), ShouldEqual, 0)
		})

		Convey("空查询匹配全部消息", func() {
			So(len(conv.SearchMessages("")), ShouldEqual, 3)
		})
	})
}

func TestConversation_Summary(t *testing.T) {
	Convey("Summary 统计角色与持续时间", t, func() {
		restore := fixedClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
		defer restore()

		conv := New("")
		conv.AddMessage("q", RoleUser, "")
		conv.AddMessage("a", RoleAssistant, "m2")
		conv.AddMessage("a", RoleAssistant, "m1")
		conv.SetFavorite(true)

		s := conv.Summary()
		So(s.UserMessages, ShouldEqual, 1)
		So(s.AssistantMessages, ShouldEqual, 2)
		So(s.ModelsUsed, ShouldResemble, []string{"m1", "m2"})
		So(s.IsFavorite, ShouldBeTrue)
		So(s.DurationSeconds, ShouldEqual, 7)
	})
}

func TestConversation_Mutators(t *testing.T) {
	Convey("标签、收藏、重命名与模型集合重置", t, func() {
		conv := New("")

		So(conv.AddTag("work"), ShouldBeTrue)
		So(conv.AddTag("work"), ShouldBeFalse)
		So(conv.AddTag("ideas"), ShouldBeTrue)
		So(conv.Metadata.Tags, ShouldResemble, []string{"work", "ideas"})
		So(conv.RemoveTag("work"), ShouldBeTrue)
		So(conv.RemoveTag("missing"), ShouldBeFalse)

		conv.Rename("  Planning ")
		So(conv.Title, ShouldEqual, "Planning")

		conv.AddMessage("a", RoleAssistant, "m1")
		conv.ResetModelsUsed()
		So(len(conv.Metadata.ModelsUsed), ShouldEqual, 0)

		msg := conv.Messages[0]
		So(conv.AnnotateMessage(msg.ID, "file", "report.pdf"), ShouldBeTrue)
		So(msg.Metadata["file"], ShouldEqual, "report.pdf")
		So(conv.AnnotateMessage("nope", "k", 1), ShouldBeFalse)
	})
}

func TestConversation_Clone(t *testing.T) {
	Convey("Clone 与原对象互不影响", t, func() {
		conv := New("")
		conv.AddMessage("q", RoleUser, "")
		conv.AddTag("t")

		cp := conv.Clone()
		cp.AddMessage("a", RoleAssistant, "m")
		cp.AddTag("other")

		So(len(conv.Messages), ShouldEqual, 1)
		So(conv.Metadata.TotalMessages, ShouldEqual, 1)
		So(len(conv.Metadata.ModelsUsed), ShouldEqual, 0)
		So(conv.Metadata.Tags, ShouldResemble, []string{"t"})
	})
}

func TestRecord_RoundTrip(t *testing.T) {
	Convey("ToRecord / FromRecord 无损往返", t, func() {
		conv := New("")
		conv.AddMessage("What is CSV?", RoleUser, "")
		conv.AddMessage("A tabular format", RoleAssistant, "gemini-1.5-flash")
		conv.AddMessage("Thanks", RoleUser, "")
		conv.AddMessage("Welcome", RoleAssistant, "gemini-1.5-pro")
		conv.AddTag("data")
		conv.SetFavorite(true)
		conv.AnnotateMessage(conv.Messages[0].ID, "attached", "sheet.csv")

		Convey("经过 JSON 后字段保持一致", func() {
			raw, err := json.Marshal(conv.ToRecord())
			So(err, ShouldBeNil)

			var rec Record
			So(json.Unmarshal(raw, &rec), ShouldBeNil)

			restored, err := FromRecord(rec)
			So(err, ShouldBeNil)
			So(restored.ID, ShouldEqual, conv.ID)
			So(restored.Title, ShouldEqual, conv.Title)
			So(restored.CreatedAt.Equal(conv.CreatedAt), ShouldBeTrue)
			So(restored.UpdatedAt.Equal(conv.UpdatedAt), ShouldBeTrue)
			So(restored.Metadata.TotalMessages, ShouldEqual, 4)
			So(restored.Metadata.ModelsUsed, ShouldResemble, conv.Metadata.ModelsUsed)
			So(restored.Metadata.Tags, ShouldResemble, []string{"data"})
			So(restored.Metadata.IsFavorite, ShouldBeTrue)
			So(len(restored.Messages), ShouldEqual, len(conv.Messages))
			for i, msg := range conv.Messages {
				got := restored.Messages[i]
				So(got.ID, ShouldEqual, msg.ID)
				So(got.Content, ShouldEqual, msg.Content)
				So(got.Role, ShouldEqual, msg.Role)
				So(got.ModelUsed, ShouldEqual, msg.ModelUsed)
				So(got.Timestamp.Equal(msg.Timestamp), ShouldBeTrue)
			}
			So(restored.Messages[0].Metadata["attached"], ShouldEqual, "sheet.csv")
		})

		Convey("models_used 序列化为有序序列", func() {
			So(conv.ToRecord().Metadata.ModelsUsed, ShouldResemble, []string{"gemini-1.5-flash", "gemini-1.5-pro"})
		})

		Convey("非法时间戳或角色返回错误", func() {
			rec := conv.ToRecord()
			rec.CreatedAt = "yesterday"
			_, err := FromRecord(rec)
			So(err, ShouldNotBeNil)

			rec = conv.ToRecord()
			rec.Messages[0].Role = "system"
			_, err = FromRecord(rec)
			So(err, ShouldNotBeNil)
		})
	})
}
