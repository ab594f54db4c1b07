package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
	"github.com/edulab-ai/virtual-student/internal/core/ports"
	"github.com/edulab-ai/virtual-student/internal/core/prompt"
)

// Session is one conversation's state: its current mode and, after a
// successful upload, the retriever bound to that upload's index. The
// binding survives mode switches, so re-entering document_grounded does
// not require a re-upload.
type Session struct {
	ID string

	mu        sync.Mutex // serializes turns within the session
	mode      domain.Mode
	retriever ports.Retriever
}

// Mode reports the session's current mode.
func (s *Session) Mode() domain.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// RetrievalObserver receives the hit count of every grounded retrieval.
type RetrievalObserver func(hits int)

// Conversations implements ports.Conversationalist: a registry of
// sessions plus the mode state machine and turn dispatch. Sessions are
// independent; the only shared state is the read-only default retriever.
type Conversations struct {
	composer    *prompt.Composer
	chat        ports.ChatModel
	embedder    ports.Embedder
	indexer     *IndexDocumentUseCase
	topK        int
	log         *slog.Logger
	onRetrieval RetrievalObserver

	// built once at startup from the default corpus, never mutated
	defaultRetriever ports.Retriever

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewConversations(
	composer *prompt.Composer,
	chat ports.ChatModel,
	embedder ports.Embedder,
	indexer *IndexDocumentUseCase,
	defaultIndex ports.Index,
	topK int,
	log *slog.Logger,
) *Conversations {
	if topK <= 0 {
		topK = defaultTopK
	}
	if log == nil {
		log = slog.Default()
	}
	c := &Conversations{
		composer: composer,
		chat:     chat,
		embedder: embedder,
		indexer:  indexer,
		topK:     topK,
		log:      log,
		sessions: make(map[string]*Session),
	}
	if defaultIndex != nil {
		c.defaultRetriever = NewRetriever(embedder, defaultIndex, topK)
	}
	return c
}

// OnRetrieval installs an observer for grounded retrieval hit counts.
// Must be called before the first turn is served.
func (c *Conversations) OnRetrieval(observer RetrievalObserver) {
	c.onRetrieval = observer
}

// Start creates a session in default_persona mode.
func (c *Conversations) Start(_ context.Context) (string, string, error) {
	session := &Session{
		ID:   uuid.NewString(),
		mode: domain.ModeDefaultPersona,
	}

	c.mu.Lock()
	c.sessions[session.ID] = session
	c.mu.Unlock()

	c.log.Info("session_started", "session_id", session.ID)
	return session.ID, c.composer.Greeting(), nil
}

// HandleMessage runs one turn. A generation failure aborts only this
// turn; session state is never changed by a message.
func (c *Conversations) HandleMessage(ctx context.Context, sessionID, text string) (string, error) {
	session, err := c.lookup(sessionID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "handle message", errors.New("empty message"))
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	messages, err := c.compose(ctx, session, text)
	if err != nil {
		return "", err
	}

	reply, err := c.chat.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	return reply, nil
}

func (c *Conversations) compose(ctx context.Context, session *Session, text string) ([]domain.Message, error) {
	if session.mode != domain.ModeDocumentGrounded {
		return c.composer.Persona(session.mode, text), nil
	}

	retriever := session.retriever
	if retriever == nil {
		retriever = c.defaultRetriever
	}
	if retriever == nil {
		// grounded mode without a binding is unreachable through the state
		// machine; fall back rather than fabricate context
		return c.composer.Persona(domain.ModeDefaultPersona, text), nil
	}

	hits, err := retriever.Retrieve(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	if c.onRetrieval != nil {
		c.onRetrieval(len(hits))
	}
	return c.composer.Grounded(hits, text), nil
}

// HandleUpload builds a fresh index from the file and rebinds the
// session to it. On failure the session keeps its previous mode and
// binding untouched.
func (c *Conversations) HandleUpload(ctx context.Context, sessionID, filename string, file io.Reader) (string, error) {
	session, err := c.lookup(sessionID)
	if err != nil {
		return "", err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	index, err := c.indexer.BuildFromUpload(ctx, filename, file)
	if err != nil {
		return "", fmt.Errorf("index upload: %w", err)
	}

	session.retriever = NewRetriever(c.embedder, index, c.topK)
	session.mode = domain.ModeDocumentGrounded

	c.log.Info("session_grounded",
		"session_id", session.ID,
		"collection", index.Collection(),
		"chunks", index.Len(),
	)
	return fmt.Sprintf("Got it — I read %q (%d passages). Quiz me on it!", filename, index.Len()), nil
}

// SwitchMode applies a mode-switch event. Transitions are total: every
// target is accepted from every state, except entering document_grounded
// with no index available anywhere, which leaves the state untouched.
func (c *Conversations) SwitchMode(_ context.Context, sessionID string, target domain.Mode) (string, error) {
	session, err := c.lookup(sessionID)
	if err != nil {
		return "", err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	switch target {
	case domain.ModeDefaultPersona:
		session.mode = domain.ModeDefaultPersona
		return "Back to my usual self. What are we learning today?", nil
	case domain.ModeAlternatePersona:
		session.mode = domain.ModeAlternatePersona
		return "Okay, I'm feeling skeptical now. Convince me.", nil
	case domain.ModeDocumentGrounded:
		if session.retriever == nil && c.defaultRetriever == nil {
			return "I have no document to study yet — upload a PDF first.", nil
		}
		session.mode = domain.ModeDocumentGrounded
		return "I'll answer from the document we have.", nil
	default:
		return "", domain.WrapError(domain.ErrInvalidInput, "switch mode", fmt.Errorf("unknown mode %q", target))
	}
}

// End removes the session, releasing its index binding.
func (c *Conversations) End(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[sessionID]; !ok {
		return domain.WrapError(domain.ErrSessionNotFound, "end session", fmt.Errorf("session %q", sessionID))
	}
	delete(c.sessions, sessionID)
	return nil
}

func (c *Conversations) lookup(sessionID string) (*Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	session, ok := c.sessions[sessionID]
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "lookup session", fmt.Errorf("session %q", sessionID))
	}
	return session, nil
}

// Lookup exposes a session's state for the HTTP adapter's status view.
func (c *Conversations) Lookup(sessionID string) (*Session, error) {
	return c.lookup(sessionID)
}
