package service

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"cogniverse/internal/model/conversation"
	sessionrepo "cogniverse/internal/repository/session"
)

func TestConversationStore(t *testing.T) {
	ctx := context.Background()

	Convey("ConversationStore", t, func() {
		repo := newFlakyStore()
		store := newTestStore(repo)

		Convey("没有当前对话时自动创建", func() {
			So(store.CurrentConversationID(), ShouldBeEmpty)
			conv := store.GetCurrentConversation(ctx)
			So(conv, ShouldNotBeNil)
			So(store.CurrentConversationID(), ShouldEqual, conv.ID)
			So(conv.Title, ShouldEqual, conversation.DefaultTitle)
		})

		Convey("当前对话已不存在时新建并选中", func() {
			state := sessionrepo.NewState(testModel)
			state.CurrentConversationID = "missing"
			stale := NewConversationStore("stale-session", repo, state, AppInfo{})

			conv := stale.GetCurrentConversation(ctx)
			So(conv, ShouldNotBeNil)
			So(conv.ID, ShouldNotEqual, "missing")
			So(stale.CurrentConversationID(), ShouldEqual, conv.ID)
			So(stale.ListConversations(), ShouldHaveLength, 1)
		})

		Convey("损坏的记录在加载时被跳过", func() {
			state := sessionrepo.NewState(testModel)
			state.Conversations["bad"] = conversation.Record{ID: "bad", CreatedAt: "not-a-time", UpdatedAt: "not-a-time"}
			good := conversation.New("ok")
			state.Conversations[good.ID] = good.ToRecord()

			loaded := NewConversationStore("s", repo, state, AppInfo{})
			So(loaded.ListConversations(), ShouldHaveLength, 1)
			_, ok := loaded.Conversation(good.ID)
			So(ok, ShouldBeTrue)
		})

		Convey("AddMessage 追加一问一答并持久化", func() {
			So(store.AddMessage(ctx, "What is Go?", "A programming language.", "gemini-1.5-pro"), ShouldBeTrue)

			conv := store.GetCurrentConversation(ctx)
			So(conv.Messages, ShouldHaveLength, 2)
			So(conv.Messages[0].Role, ShouldEqual, conversation.RoleUser)
			So(conv.Messages[0].ModelUsed, ShouldBeEmpty)
			So(conv.Messages[1].ModelUsed, ShouldEqual, "gemini-1.5-pro")
			So(conv.Title, ShouldEqual, "What is Go?")

			saved, err := repo.Load(ctx, "test-session")
			So(err, ShouldBeNil)
			So(saved.CurrentConversationID, ShouldEqual, conv.ID)
			So(saved.Conversations[conv.ID].Messages, ShouldHaveLength, 2)
		})

		Convey("保存失败时 AddMessage 回滚并返回 false", func() {
			conv := store.GetCurrentConversation(ctx)
			So(store.AddMessage(ctx, "first", "answer", testModel), ShouldBeTrue)
			repo.setFail(true)

			So(store.AddMessage(ctx, "second", "answer", testModel), ShouldBeFalse)
			So(conv.Messages, ShouldHaveLength, 2)
			So(conv.Metadata.TotalMessages, ShouldEqual, 2)
			So(conv.Title, ShouldEqual, "first")

			repo.setFail(false)
			saved, _ := repo.Load(ctx, "test-session")
			So(saved.Conversations[conv.ID].Messages, ShouldHaveLength, 2)
		})

		Convey("GetRecentHistory 默认取最后 10 条", func() {
			for i := 0; i < 7; i++ {
				store.AddMessage(ctx, "question", "answer", testModel)
			}
			So(store.GetRecentHistory(ctx, 0), ShouldHaveLength, 10)
			So(store.GetRecentHistory(ctx, 3), ShouldHaveLength, 3)
			So(store.GetConversationHistory(ctx, "unknown"), ShouldBeEmpty)
		})

		Convey("搜索按命中数、更新时间、标识排序", func() {
			base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

			a := store.CreateNewConversation(ctx, "a")
			store.AddMessage(ctx, "golang tips", "more Golang", testModel)
			b := store.CreateNewConversation(ctx, "b")
			store.AddMessage(ctx, "golang", "unrelated", testModel)
			c := store.CreateNewConversation(ctx, "c")
			store.AddMessage(ctx, "GOLANG", "unrelated", testModel)
			store.CreateNewConversation(ctx, "d")
			store.AddMessage(ctx, "python", "snakes", testModel)

			for id, at := range map[string]time.Time{a: base, b: base.Add(time.Hour), c: base.Add(time.Hour)} {
				conv, _ := store.Conversation(id)
				conv.UpdatedAt = at
			}

			results := store.SearchConversations("golang")
			So(results, ShouldHaveLength, 3)
			So(results[0].ConversationID, ShouldEqual, a)
			So(results[0].MatchingMessages, ShouldEqual, 2)

			first, second := b, c
			if c < b {
				first, second = c, b
			}
			So(results[1].ConversationID, ShouldEqual, first)
			So(results[2].ConversationID, ShouldEqual, second)

			Convey("空查询匹配所有消息", func() {
				all := store.SearchConversations("")
				So(all, ShouldHaveLength, 4)
				for _, r := range all {
					So(r.MatchingMessages, ShouldEqual, 2)
					So(len(r.Messages), ShouldBeLessThanOrEqualTo, 3)
				}
			})
		})

		Convey("选择与删除", func() {
			first := store.CreateNewConversation(ctx, "first")
			second := store.CreateNewConversation(ctx, "second")

			So(store.SelectConversation(ctx, "nope"), ShouldEqual, ErrConversationNotFound)
			So(store.SelectConversation(ctx, first), ShouldBeNil)
			So(store.CurrentConversationID(), ShouldEqual, first)

			So(store.DeleteConversation(ctx, first), ShouldBeNil)
			So(store.CurrentConversationID(), ShouldBeEmpty)
			So(store.DeleteConversation(ctx, first), ShouldEqual, ErrConversationNotFound)

			Convey("保存失败时删除被撤销", func() {
				repo.setFail(true)
				So(store.DeleteConversation(ctx, second), ShouldNotBeNil)
				_, ok := store.Conversation(second)
				So(ok, ShouldBeTrue)
			})

			Convey("清空全部对话", func() {
				So(store.ClearConversations(ctx), ShouldBeNil)
				So(store.ListConversations(), ShouldBeEmpty)
				So(store.CurrentConversationID(), ShouldBeEmpty)
			})
		})

		Convey("收藏、标签与重命名", func() {
			id := store.CreateNewConversation(ctx, "")

			So(store.SetFavorite(ctx, id, true), ShouldBeNil)
			So(store.AddTag(ctx, id, "work"), ShouldBeNil)
			So(store.AddTag(ctx, id, "work"), ShouldBeNil)
			So(store.RenameConversation(ctx, id, "Renamed"), ShouldBeNil)

			conv, _ := store.Conversation(id)
			So(conv.Metadata.IsFavorite, ShouldBeTrue)
			So(conv.Metadata.Tags, ShouldResemble, []string{"work"})
			So(conv.Title, ShouldEqual, "Renamed")

			So(store.RemoveTag(ctx, id, "work"), ShouldBeNil)
			So(conv.Metadata.Tags, ShouldBeEmpty)
			So(store.SetFavorite(ctx, "nope", true), ShouldEqual, ErrConversationNotFound)

			Convey("保存失败时修改被撤销", func() {
				repo.setFail(true)
				So(store.RenameConversation(ctx, id, "Lost"), ShouldNotBeNil)
				So(conv.Title, ShouldEqual, "Renamed")
			})
		})

		Convey("没有对话时统计为零值", func() {
			stats := store.GetConversationStats()
			So(stats.TotalConversations, ShouldEqual, 0)
			So(stats.TotalMessages, ShouldEqual, 0)
			So(stats.AverageMessagesPerConversation, ShouldEqual, 0)
			So(stats.MostUsedModels, ShouldBeEmpty)
			So(stats.OldestConversation, ShouldBeNil)
			So(stats.NewestConversation, ShouldBeNil)
		})

		Convey("统计模型使用与消息数", func() {
			store.CreateNewConversation(ctx, "")
			store.AddMessage(ctx, "q1", "a1", "gemini-1.5-pro")
			store.AddMessage(ctx, "q2", "a2", "gemini-1.5-flash")
			store.CreateNewConversation(ctx, "")
			store.AddMessage(ctx, "q3", "a3", "gemini-1.5-pro")

			stats := store.GetConversationStats()
			So(stats.TotalConversations, ShouldEqual, 2)
			So(stats.TotalMessages, ShouldEqual, 6)
			So(stats.AverageMessagesPerConversation, ShouldEqual, 3)
			So(stats.MostUsedModels[0], ShouldResemble, ModelUsage{Model: "gemini-1.5-pro", Count: 2})
			So(stats.MostUsedModels[1], ShouldResemble, ModelUsage{Model: "gemini-1.5-flash", Count: 1})
			So(stats.OldestConversation, ShouldNotBeNil)
			So(stats.NewestConversation.Before(*stats.OldestConversation), ShouldBeFalse)
		})

		Convey("清理旧对话保留收藏", func() {
			old := store.CreateNewConversation(ctx, "old")
			fav := store.CreateNewConversation(ctx, "favorite")
			fresh := store.CreateNewConversation(ctx, "fresh")
			So(store.SetFavorite(ctx, fav, true), ShouldBeNil)

			longAgo := time.Now().AddDate(0, 0, -45)
			for _, id := range []string{old, fav} {
				conv, _ := store.Conversation(id)
				conv.UpdatedAt = longAgo
			}

			removed, err := store.CleanupOldConversations(ctx, 30)
			So(err, ShouldBeNil)
			So(removed, ShouldEqual, 1)
			_, ok := store.Conversation(old)
			So(ok, ShouldBeFalse)
			_, ok = store.Conversation(fav)
			So(ok, ShouldBeTrue)
			_, ok = store.Conversation(fresh)
			So(ok, ShouldBeTrue)

			removed, err = store.CleanupOldConversations(ctx, 30)
			So(err, ShouldBeNil)
			So(removed, ShouldEqual, 0)
		})
	})
}
