package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/liliang-cn/finsight/internal/domain"
	"github.com/liliang-cn/finsight/internal/llm"
	"github.com/liliang-cn/finsight/internal/observability/metrics"
	"github.com/liliang-cn/finsight/internal/render"
	"github.com/liliang-cn/finsight/internal/secrets"
)

// CommentaryService requests a one-shot narrative assessment
type CommentaryService struct {
	model     string
	secretKey string
	secrets   secrets.Store
	factory   llm.Factory
	logger    *zap.Logger
}

// NewCommentaryService creates a new commentary service
func NewCommentaryService(
	model string,
	secretKey string,
	store secrets.Store,
	factory llm.Factory,
	logger *zap.Logger,
) *CommentaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentaryService{
		model:     model,
		secretKey: secretKey,
		secrets:   store,
		factory:   factory,
		logger:    logger,
	}
}

// RequestCommentary sends the fixed analyst prompt with the document. It
// never returns an error: failures come back as displayable text with
// Kind set. A fresh client is created for every call and nothing is retried.
func (s *CommentaryService) RequestCommentary(ctx context.Context, doc domain.GroundingDocument) domain.Commentary {
	start := time.Now()

	text, err := guard("request commentary", func() (string, error) {
		apiKey, err := s.secrets.Lookup(s.secretKey)
		if err != nil {
			return "", err
		}
		client, err := s.factory.NewClient(ctx, apiKey)
		if err != nil {
			return "", err
		}
		return client.Generate(ctx, s.model, commentaryPrompt(doc.Text))
	})

	kind := domain.KindOf(err)
	metrics.ObserveAIRequest("commentary", string(kind), time.Since(start))

	if err != nil {
		s.logger.Warn("Commentary request failed",
			zap.String("kind", string(kind)),
			zap.String("digest", doc.Digest),
			zap.Error(err),
		)
		return domain.Commentary{Text: s.failureText(kind, err), Kind: kind}
	}

	s.logger.Info("Commentary generated",
		zap.String("digest", doc.Digest),
		zap.Duration("elapsed", time.Since(start)),
	)
	return domain.Commentary{Text: text, HTML: render.HTML(text)}
}

func (s *CommentaryService) failureText(kind domain.Kind, err error) string {
	switch kind {
	case domain.KindCredentialMissing:
		return fmt.Sprintf(msgCommentaryCredential, s.secretKey)
	case domain.KindProviderError:
		return fmt.Sprintf(msgCommentaryProvider, err)
	default:
		return fmt.Sprintf(msgCommentaryUnexpected, err)
	}
}

// guard runs an AI call and turns a panic into an unexpected error
func guard(op string, fn func() (string, error)) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = domain.E(domain.KindUnexpected, op, fmt.Errorf("panic: %v", r))
		}
	}()
	return fn()
}
