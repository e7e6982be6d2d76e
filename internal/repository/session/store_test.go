package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"cogniverse/internal/config"
	"cogniverse/internal/model/conversation"
)

func sampleState() *State {
	conv := conversation.New("")
	conv.AddMessage("hello there", conversation.RoleUser, "")
	conv.AddMessage("hi!", conversation.RoleAssistant, "gemini-1.5-flash")

	state := NewState("gemini-1.5-flash")
	state.Conversations[conv.ID] = conv.ToRecord()
	state.CurrentConversationID = conv.ID
	state.UploadedFiles = append(state.UploadedFiles, UploadedFile{
		ID:         "f1",
		Name:       "notes.txt",
		Type:       "text",
		Size:       11,
		Content:    "hello world",
		Metadata:   map[string]any{"encoding_used": "utf-8"},
		Statistics: map[string]any{"word_count": 2},
		UploadedAt: time.Now(),
	})
	return state
}

// exerciseStore 各后端共用的行为校验
func exerciseStore(store Store) {
	ctx := context.Background()

	Convey("未知会话返回带默认偏好的空状态", func() {
		state, err := store.Load(ctx, "unknown-session")
		So(err, ShouldBeNil)
		So(len(state.Conversations), ShouldEqual, 0)
		So(state.UserPreferences.Temperature, ShouldEqual, 0.7)
		So(state.UserPreferences.MaxTokens, ShouldEqual, 2048)
		So(state.UserPreferences.Model, ShouldEqual, "gemini-1.5-flash")
	})

	Convey("保存后可以完整读回", func() {
		state := sampleState()
		So(store.Save(ctx, "s1", state), ShouldBeNil)

		loaded, err := store.Load(ctx, "s1")
		So(err, ShouldBeNil)
		So(loaded.CurrentConversationID, ShouldEqual, state.CurrentConversationID)
		So(len(loaded.Conversations), ShouldEqual, 1)

		rec := loaded.Conversations[state.CurrentConversationID]
		conv, err := conversation.FromRecord(rec)
		So(err, ShouldBeNil)
		So(conv.Metadata.TotalMessages, ShouldEqual, 2)
		So(conv.ModelsUsedSorted(), ShouldResemble, []string{"gemini-1.5-flash"})
		So(len(loaded.UploadedFiles), ShouldEqual, 1)
		So(loaded.UploadedFiles[0].Content, ShouldEqual, "hello world")
	})

	Convey("读出的状态被修改不影响已存储内容", func() {
		So(store.Save(ctx, "s2", sampleState()), ShouldBeNil)
		loaded, _ := store.Load(ctx, "s2")
		loaded.Conversations = map[string]conversation.Record{}

		again, err := store.Load(ctx, "s2")
		So(err, ShouldBeNil)
		So(len(again.Conversations), ShouldEqual, 1)
	})

	Convey("List 与 Delete", func() {
		So(store.Save(ctx, "a", NewState("m")), ShouldBeNil)
		So(store.Save(ctx, "b", NewState("m")), ShouldBeNil)

		ids, err := store.List(ctx)
		So(err, ShouldBeNil)
		So(ids, ShouldContain, "a")
		So(ids, ShouldContain, "b")

		So(store.Delete(ctx, "a"), ShouldBeNil)
		ids, _ = store.List(ctx)
		So(ids, ShouldNotContain, "a")
	})

	Convey("拒绝非法会话标识", func() {
		_, err := store.Load(ctx, "../etc/passwd")
		So(err, ShouldEqual, ErrInvalidSessionID)
		So(store.Save(ctx, "a/b", NewState("m")), ShouldEqual, ErrInvalidSessionID)
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("MemoryStore 会话存储", t, func() {
		exerciseStore(NewMemoryStore(time.Hour, "gemini-1.5-flash"))
	})
}

func TestFileStore(t *testing.T) {
	Convey("FileStore 会话存储", t, func() {
		dir := t.TempDir()
		store, err := NewFileStore(dir, "gemini-1.5-flash")
		So(err, ShouldBeNil)

		exerciseStore(store)

		Convey("写入不留下临时文件", func() {
			So(store.Save(context.Background(), "tidy", NewState("m")), ShouldBeNil)
			leftovers, _ := filepath.Glob(filepath.Join(dir, ".tmp-*"))
			So(len(leftovers), ShouldEqual, 0)
		})

		Convey("损坏的文件返回错误", func() {
			So(os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644), ShouldBeNil)
			_, err := store.Load(context.Background(), "broken")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestNewStore(t *testing.T) {
	Convey("NewStore 按配置选择后端", t, func() {
		store, err := NewStore(&config.SessionConfig{Backend: "memory"}, "m", nil, nil)
		So(err, ShouldBeNil)
		So(store, ShouldHaveSameTypeAs, &MemoryStore{})

		_, err = NewStore(&config.SessionConfig{Backend: "redis"}, "m", nil, nil)
		So(err, ShouldNotBeNil)

		_, err = NewStore(&config.SessionConfig{Backend: "mongo"}, "m", nil, nil)
		So(err, ShouldNotBeNil)

		_, err = NewStore(&config.SessionConfig{Backend: "bogus"}, "m", nil, nil)
		So(err, ShouldNotBeNil)

		store, err = NewStore(&config.SessionConfig{Backend: "file", FileDir: t.TempDir()}, "m", nil, nil)
		So(err, ShouldBeNil)
		So(store, ShouldHaveSameTypeAs, &FileStore{})
	})
}
