package ctxutil

import "context"

// 使用私有类型避免与其他 context key 冲突
type (
	sessionIDKeyType struct{}
	requestIDKeyType struct{}
)

var (
	sessionIDKey = sessionIDKeyType{}
	requestIDKey = requestIDKeyType{}
)

// WithSessionID 将会话标识注入 context，由会话中间件调用
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// GetSessionID 从 context 中解析会话标识
func GetSessionID(ctx context.Context) (string, bool) {
	return stringValue(ctx, sessionIDKey)
}

// WithRequestID 将请求标识注入 context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID 从 context 中解析请求标识
func GetRequestID(ctx context.Context) (string, bool) {
	return stringValue(ctx, requestIDKey)
}

func stringValue(ctx context.Context, key any) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(key).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
