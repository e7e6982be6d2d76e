package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionCollection MongoDB 会话集合名
const SessionCollection = "sessions"

// sessionDocument 会话在 MongoDB 中的文档
// 状态以 JSON 文本保存：消息与文件的开放元数据中含嵌套 map，
// 经 bson 解码到 any 会变成 primitive.D
type sessionDocument struct {
	SessionID         string    `bson:"_id"`
	Payload           string    `bson:"payload"`
	ConversationCount int       `bson:"conversation_count"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

// MongoStore 基于 MongoDB 的会话存储
type MongoStore struct {
	collection   *mongo.Collection
	defaultModel string
}

// NewMongoStore 创建 MongoDB 会话存储
func NewMongoStore(db *mongo.Database, defaultModel string) *MongoStore {
	return &MongoStore{
		collection:   db.Collection(SessionCollection),
		defaultModel: defaultModel,
	}
}

// Collection 返回集合名称
func (s *MongoStore) Collection() string {
	return SessionCollection
}

// EnsureIndexes 创建会话集合索引
func (s *MongoStore) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(SessionCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_updated_at"),
		},
	})
	return err
}

// Load 读取会话状态
func (s *MongoStore) Load(ctx context.Context, sessionID string) (*State, error) {
	if err := ValidateID(sessionID); err != nil {
		return nil, err
	}
	var doc sessionDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return NewState(s.defaultModel), nil
		}
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	var state State
	if err := json.Unmarshal([]byte(doc.Payload), &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return state.normalize(s.defaultModel), nil
}

// Save 以 upsert 方式写入会话状态
func (s *MongoStore) Save(ctx context.Context, sessionID string, state *State) error {
	if err := ValidateID(sessionID); err != nil {
		return err
	}
	state.UpdatedAt = time.Now()
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}

	doc := sessionDocument{
		SessionID:         sessionID,
		Payload:           string(payload),
		ConversationCount: len(state.Conversations),
		UpdatedAt:         state.UpdatedAt,
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": sessionID}, doc, opts); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// Delete 删除会话状态
func (s *MongoStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": sessionID})
	return err
}

// List 列出所有会话
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	values, err := s.collection.Distinct(ctx, "_id", bson.D{})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
