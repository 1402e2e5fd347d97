package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData is the authenticated caller, attached by the auth middleware.
type RequestData struct {
	UserID uuid.UUID
	Email  string
	Role   string
	Token  string
}

func (rd *RequestData) IsAdmin() bool {
	return rd != nil && rd.Role == "admin"
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	val := ctx.Value(requestDataKey{})
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}
