package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"google.golang.org/genai"

	"github.com/liliang-cn/finsight/internal/domain"
)

// GeminiFactory creates clients for the Gemini API
type GeminiFactory struct{}

// Ensure interface compliance
var (
	_ Factory     = GeminiFactory{}
	_ Client      = (*GeminiClient)(nil)
	_ ChatSession = (*geminiChat)(nil)
)

// NewClient implements Factory
func (GeminiFactory) NewClient(ctx context.Context, apiKey string) (Client, error) {
	if apiKey == "" {
		return nil, domain.E(domain.KindCredentialMissing, "create gemini client", domain.ErrCredentialMissing)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, domain.E(domain.KindProviderError, "create gemini client", err)
	}
	return &GeminiClient{client: client}, nil
}

// GeminiClient implements Client on the GenAI SDK
type GeminiClient struct {
	client *genai.Client
}

// Generate implements Generator
func (c *GeminiClient) Generate(ctx context.Context, model string, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", classify("gemini generation failed", err)
	}
	text := result.Text()
	if text == "" {
		return "", domain.E(domain.KindProviderError, "gemini generation failed", errors.New("empty response"))
	}
	return text, nil
}

// StartChat implements ChatStarter
func (c *GeminiClient) StartChat(ctx context.Context, model string, systemInstruction string) (ChatSession, error) {
	config := &genai.GenerateContentConfig{}
	if systemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{
				{Text: systemInstruction},
			},
		}
	}
	chat, err := c.client.Chats.Create(ctx, model, config, nil)
	if err != nil {
		return nil, classify("gemini chat create failed", err)
	}
	return &geminiChat{chat: chat}, nil
}

type geminiChat struct {
	chat *genai.Chat
}

func (s *geminiChat) Send(ctx context.Context, message string) (string, error) {
	result, err := s.chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", classify("gemini chat failed", err)
	}
	text := result.Text()
	if text == "" {
		return "", domain.E(domain.KindProviderError, "gemini chat failed", errors.New("empty response"))
	}
	return text, nil
}

func (s *geminiChat) HistoryLen() int {
	return len(s.chat.History(false))
}

// classify maps SDK and transport errors to provider errors. Anything else
// is left for the caller to treat as unexpected.
func classify(op string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return domain.E(domain.KindProviderError, op, fmt.Errorf("status %d %s: %s", apiErr.Code, apiErr.Status, apiErr.Message))
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.E(domain.KindProviderError, op, err)
	}
	return domain.E(domain.KindUnexpected, op, err)
}
