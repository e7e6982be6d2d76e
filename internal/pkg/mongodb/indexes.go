package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureIndexes 启动时为所有注册的模型创建索引
func EnsureIndexes(db *mongo.Database, models ...Model) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return EnsureAllIndexes(ctx, db, models...)
}
