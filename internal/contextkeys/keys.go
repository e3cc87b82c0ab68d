package contextkeys

import "context"

type messageTypeKey struct{}
type callbackDataKey struct{}
type userIDKey struct{}

type MessageType string

const (
	MessageTypeCommand       MessageType = "command"
	MessageTypeYouTubeLink   MessageType = "youtube_link"
	MessageTypeInstagramLink MessageType = "instagram_link"
	MessageTypeText          MessageType = "text"
	MessageTypeCallback      MessageType = "callback"
	MessageTypeUnknown       MessageType = "unknown"
)

func WithMessageType(ctx context.Context, msgType MessageType) context.Context {
	return context.WithValue(ctx, messageTypeKey{}, msgType)
}

func GetMessageType(ctx context.Context) (MessageType, bool) {
	v := ctx.Value(messageTypeKey{})
	if v == nil {
		return MessageTypeUnknown, false
	}
	return v.(MessageType), true
}

func WithCallbackData(ctx context.Context, data string) context.Context {
	return context.WithValue(ctx, callbackDataKey{}, data)
}

func GetCallbackData(ctx context.Context) (string, bool) {
	v := ctx.Value(callbackDataKey{})
	if v == nil {
		return "", false
	}
	return v.(string), true
}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func GetUserID(ctx context.Context) (int64, bool) {
	v := ctx.Value(userIDKey{})
	if v == nil {
		return 0, false
	}
	return v.(int64), true
}
