package coach

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/vita/internal/domain/lifestyle"
	"github.com/yanqian/vita/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/vita/pkg/errors"
	"github.com/yanqian/vita/pkg/metrics"
)

const (
	defaultHistoryLimit     = 50
	defaultMaxContextTokens = 3000
	defaultPersistTimeout   = 5 * time.Second
	maxTurnRunes            = 4000
	// per-message framing overhead of the chat format
	messageOverheadTokens = 4
)

// Service runs coaching conversations.
type Service interface {
	Stream(ctx context.Context, userID uuid.UUID, req ChatRequest) (<-chan StreamChunk, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]Message, error)
}

// ChatClient streams completions from the generative backend.
type ChatClient interface {
	CreateChatCompletionStream(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.Stream, error)
}

// Repository stores chat history.
type Repository interface {
	Append(ctx context.Context, msg Message) error
	// Recent returns up to limit of the newest messages, oldest first.
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]Message, error)
}

// AssessmentSource loads the classification the coach is seeded with.
type AssessmentSource interface {
	Get(ctx context.Context, userID uuid.UUID) (lifestyle.Assessment, bool, error)
}

// TokenCounter estimates prompt tokens.
type TokenCounter interface {
	Count(text string) int
}

type service struct {
	cfg         Config
	client      ChatClient
	repo        Repository
	assessments AssessmentSource
	tokens      TokenCounter
	logger      *slog.Logger
	now         func() time.Time
}

// NewService builds the coaching service.
func NewService(cfg Config, client ChatClient, repo Repository, assessments AssessmentSource, tokens TokenCounter, logger *slog.Logger) Service {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	if cfg.MaxContextTokens <= 0 {
		cfg.MaxContextTokens = defaultMaxContextTokens
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = defaultPersistTimeout
	}
	return &service{
		cfg:         cfg,
		client:      client,
		repo:        repo,
		assessments: assessments,
		tokens:      tokens,
		logger:      logger.With("component", "coach.service"),
		now:         time.Now,
	}
}

// Stream records the new user turn, then streams the coach reply. The reply
// is stored only when the stream finishes cleanly; canceling ctx stops the
// backend request and drops the partial reply.
func (s *service) Stream(ctx context.Context, userID uuid.UUID, req ChatRequest) (<-chan StreamChunk, error) {
	transcript, err := normalizeTranscript(req.Messages)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), err)
	}
	assessment, ok, err := s.assessments.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistence, "failed to load assessment", err)
	}
	if !ok {
		return nil, apperrors.Wrap(apperrors.CodeOnboardingRequired, "complete onboarding before chatting", nil)
	}
	system, err := systemMessage(s.cfg.SystemPrompt, assessment)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeLLM, "failed to build coach context", err)
	}

	logger := s.logger.With("user_id", userID)
	last := transcript[len(transcript)-1]
	s.persist(ctx, logger, Message{UserID: userID, Role: RoleUser, Content: last.Content})

	stream, err := s.client.CreateChatCompletionStream(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    s.buildMessages(system, transcript),
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		metrics.RecordCoachTurn("failed")
		logger.Error("coach stream request failed", "error", err)
		return nil, apperrors.Wrap(apperrors.CodeLLM, "coach is unavailable right now", err)
	}

	out := make(chan StreamChunk)
	go s.forward(ctx, logger, userID, stream, out)
	return out, nil
}

func (s *service) forward(ctx context.Context, logger *slog.Logger, userID uuid.UUID, stream chatgpt.Stream, out chan<- StreamChunk) {
	defer close(out)
	defer stream.Close()

	send := func(chunk StreamChunk) bool {
		select {
		case out <- chunk:
			return true
		case <-ctx.Done():
			return false
		}
	}

	var (
		reply strings.Builder
		usage metrics.TokenUsage
	)
	for {
		chunk, err := stream.Recv()
		if err != nil {
			if ctx.Err() != nil {
				metrics.RecordCoachTurn("aborted")
				logger.Info("coach stream canceled", "partial_len", reply.Len())
				return
			}
			// A stream cut short reports io.ErrUnexpectedEOF and is never saved.
			if !errors.Is(err, io.EOF) {
				metrics.RecordCoachTurn("failed")
				logger.Error("coach stream recv failed", "error", err)
				send(StreamChunk{Error: "coach reply interrupted"})
				return
			}
			break
		}
		if chunk.Usage != nil {
			usage = usage.Add(metrics.TokenUsage{
				PromptTokens:     chunk.Usage.PromptTokens,
				CompletionTokens: chunk.Usage.CompletionTokens,
				TotalTokens:      chunk.Usage.TotalTokens,
			})
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			reply.WriteString(choice.Delta.Content)
			if !send(StreamChunk{Delta: choice.Delta.Content}) {
				metrics.RecordCoachTurn("aborted")
				logger.Info("coach client went away", "partial_len", reply.Len())
				return
			}
		}
	}

	if ctx.Err() != nil {
		metrics.RecordCoachTurn("aborted")
		return
	}
	text := strings.TrimSpace(reply.String())
	if text == "" {
		metrics.RecordCoachTurn("failed")
		logger.Warn("coach stream ended without content")
		send(StreamChunk{Error: "coach returned an empty reply"})
		return
	}
	metrics.RecordCoachTurn("completed")
	s.persist(context.WithoutCancel(ctx), logger, Message{UserID: userID, Role: RoleAssistant, Content: text})

	done := StreamChunk{Done: true}
	if !usage.IsZero() {
		done.Usage = &usage
	}
	send(done)
}

// persist appends a message. Failures are logged and counted, never returned.
func (s *service) persist(ctx context.Context, logger *slog.Logger, msg Message) {
	msg.ID = uuid.New()
	msg.CreatedAt = s.now().UTC()
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PersistTimeout)
	defer cancel()
	if err := s.repo.Append(ctx, msg); err != nil {
		metrics.RecordPersistenceFailure("chat.append")
		logger.Error("chat message save failed", "role", msg.Role, "error", err)
	}
}

// buildMessages keeps the newest turns that fit the token budget. The latest
// user turn is always sent.
func (s *service) buildMessages(system string, transcript []Turn) []chatgpt.Message {
	budget := s.cfg.MaxContextTokens - s.tokens.Count(system) - messageOverheadTokens
	kept := make([]Turn, 0, len(transcript))
	for i := len(transcript) - 1; i >= 0; i-- {
		cost := s.tokens.Count(transcript[i].Content) + messageOverheadTokens
		if i < len(transcript)-1 && cost > budget {
			break
		}
		budget -= cost
		kept = append(kept, transcript[i])
	}

	messages := make([]chatgpt.Message, 0, len(kept)+1)
	messages = append(messages, chatgpt.Message{Role: "system", Content: system})
	for i := len(kept) - 1; i >= 0; i-- {
		messages = append(messages, chatgpt.Message{Role: string(kept[i].Role), Content: kept[i].Content})
	}
	return messages
}

func (s *service) History(ctx context.Context, userID uuid.UUID, limit int) ([]Message, error) {
	if limit <= 0 || limit > s.cfg.HistoryLimit {
		limit = s.cfg.HistoryLimit
	}
	messages, err := s.repo.Recent(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePersistence, "failed to load chat history", err)
	}
	if messages == nil {
		messages = []Message{}
	}
	return messages, nil
}

func normalizeTranscript(turns []Turn) ([]Turn, error) {
	if len(turns) == 0 {
		return nil, errors.New("messages cannot be empty")
	}
	out := make([]Turn, 0, len(turns))
	for _, turn := range turns {
		if turn.Role != RoleUser && turn.Role != RoleAssistant {
			return nil, errors.New("message role must be user or assistant")
		}
		content := strings.TrimSpace(turn.Content)
		if len([]rune(content)) > maxTurnRunes {
			return nil, errors.New("message is too long")
		}
		if content == "" {
			continue
		}
		out = append(out, Turn{Role: turn.Role, Content: content})
	}
	last := turns[len(turns)-1]
	if last.Role != RoleUser || strings.TrimSpace(last.Content) == "" {
		return nil, errors.New("last message must be a non-empty user message")
	}
	return out, nil
}
