package ports

import (
	"context"
	"io"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
)

// Conversationalist is the inbound contract the chat front-end drives.
type Conversationalist interface {
	Start(ctx context.Context) (sessionID, greeting string, err error)
	HandleMessage(ctx context.Context, sessionID, text string) (string, error)
	HandleUpload(ctx context.Context, sessionID, filename string, file io.Reader) (string, error)
	SwitchMode(ctx context.Context, sessionID string, target domain.Mode) (string, error)
	End(ctx context.Context, sessionID string) error
}
