package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/liliang-cn/finsight/internal/domain"
	"github.com/liliang-cn/finsight/internal/llm"
	"github.com/liliang-cn/finsight/internal/observability/metrics"
	"github.com/liliang-cn/finsight/internal/render"
	"github.com/liliang-cn/finsight/internal/repository"
	"github.com/liliang-cn/finsight/internal/secrets"
)

// ChatService handles the grounded follow-up conversation
type ChatService struct {
	model     string
	secretKey string
	secrets   secrets.Store
	factory   llm.Factory
	repo      *repository.ConversationRepository
	logger    *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	model string,
	secretKey string,
	store secrets.Store,
	factory llm.Factory,
	repo *repository.ConversationRepository,
	logger *zap.Logger,
) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		model:     model,
		secretKey: secretKey,
		secrets:   store,
		factory:   factory,
		repo:      repo,
		logger:    logger,
	}
}

// Send handles one user turn. Provider and credential failures become the
// assistant's answer and leave the conversation in place; only storage
// failures are returned as errors.
func (s *ChatService) Send(ctx context.Context, st *State, question string) (*domain.ChatResponse, error) {
	if !st.Loaded() {
		return nil, domain.ErrNoStatement
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidRequest)
	}
	doc := st.Snapshot.Document

	conv, err := s.conversation(st)
	if err != nil {
		return nil, err
	}

	// the user turn is logged before the call, so a failed call leaves it
	// in the local log but not in the provider history
	if err := s.appendTurn(conv, domain.RoleUser, question, ""); err != nil {
		return nil, err
	}

	start := time.Now()
	answer, err := guard("chat", func() (string, error) {
		if err := s.startSession(ctx, conv); err != nil {
			return "", err
		}
		return conv.chat.Send(ctx, chatMessage(doc.Text, question))
	})
	kind := domain.KindOf(err)
	metrics.ObserveAIRequest("chat", string(kind), time.Since(start))

	resp := &domain.ChatResponse{SessionID: conv.Session.ID, Kind: kind}
	if err != nil {
		s.logger.Warn("Chat turn failed",
			zap.String("session_id", conv.Session.ID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		answer = s.failureText(kind, err)
	} else {
		resp.HTML = render.HTML(answer)
	}
	resp.Answer = answer

	if err := s.appendTurn(conv, domain.RoleAssistant, answer, kind); err != nil {
		return nil, err
	}

	turns, err := s.repo.ListTurns(conv.Session.ID)
	if err != nil {
		return nil, err
	}
	resp.Turns = turns
	return resp, nil
}

// History returns the displayed conversation. Before the first question it
// is just the welcome message.
func (s *ChatService) History(st *State) ([]domain.Turn, error) {
	if !st.Loaded() {
		return nil, domain.ErrNoStatement
	}
	if st.Conversation == nil {
		return []domain.Turn{{Role: domain.RoleAssistant, Content: welcomeMessage}}, nil
	}

	id := st.Conversation.Session.ID
	session, err := s.repo.GetSession(id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	return s.repo.ListTurns(id)
}

// Discard drops the conversation, its log and the cached provider client
func (s *ChatService) Discard(st *State, reason string) {
	conv := st.Conversation
	if conv == nil {
		return
	}
	st.Conversation = nil

	if err := s.repo.DeleteSession(conv.Session.ID); err != nil {
		s.logger.Error("Failed to delete conversation log",
			zap.String("session_id", conv.Session.ID),
			zap.Error(err),
		)
	}
	metrics.IncSessionReset(reason)
	s.logger.Info("Chat session reset",
		zap.String("session_id", conv.Session.ID),
		zap.String("reason", reason),
	)
}

// conversation returns the conversation bound to the current document,
// creating it with the welcome turn on first use
func (s *ChatService) conversation(st *State) (*Conversation, error) {
	digest := st.Snapshot.Document.Digest
	if conv := st.Conversation; conv != nil {
		if conv.Session.DocumentDigest == digest {
			return conv, nil
		}
		s.Discard(st, ResetNewDocument)
	}

	session := &domain.Session{DocumentDigest: digest}
	if err := s.repo.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	conv := &Conversation{Session: *session}
	if err := s.appendTurn(conv, domain.RoleAssistant, welcomeMessage, ""); err != nil {
		return nil, err
	}
	st.Conversation = conv
	return conv, nil
}

// startSession lazily creates the provider client and session
func (s *ChatService) startSession(ctx context.Context, conv *Conversation) error {
	if conv.chat != nil {
		return nil
	}
	if conv.client == nil {
		apiKey, err := s.secrets.Lookup(s.secretKey)
		if err != nil {
			return err
		}
		client, err := s.factory.NewClient(ctx, apiKey)
		if err != nil {
			return err
		}
		conv.client = client
	}
	chat, err := conv.client.StartChat(ctx, s.model, chatSystemInstruction)
	if err != nil {
		return err
	}
	conv.chat = chat
	s.logger.Info("Chat session started",
		zap.String("session_id", conv.Session.ID),
		zap.String("model", s.model),
	)
	return nil
}

func (s *ChatService) appendTurn(conv *Conversation, role, content string, kind domain.Kind) error {
	turn := &domain.Turn{
		SessionID: conv.Session.ID,
		Role:      role,
		Content:   content,
		Kind:      kind,
	}
	if err := s.repo.AppendTurn(turn); err != nil {
		return fmt.Errorf("failed to save %s turn: %w", role, err)
	}
	return nil
}

func (s *ChatService) failureText(kind domain.Kind, err error) string {
	switch kind {
	case domain.KindCredentialMissing:
		return fmt.Sprintf(msgChatCredential, s.secretKey)
	case domain.KindProviderError:
		return fmt.Sprintf(msgChatProvider, err)
	default:
		return fmt.Sprintf(msgChatUnexpected, err)
	}
}
