package llm

import (
	"context"
)

// Generator performs one-shot text generation
type Generator interface {
	Generate(ctx context.Context, model string, prompt string) (string, error)
}

// ChatSession is a provider-side conversation that keeps its own turn history
type ChatSession interface {
	Send(ctx context.Context, message string) (string, error)
	// HistoryLen is the number of turns the provider holds for this session
	HistoryLen() int
}

// ChatStarter opens a conversation scoped by a system instruction
type ChatStarter interface {
	StartChat(ctx context.Context, model string, systemInstruction string) (ChatSession, error)
}

// Client is a provider client bound to one credential
type Client interface {
	Generator
	ChatStarter
}

// Factory creates provider clients for a credential
type Factory interface {
	NewClient(ctx context.Context, apiKey string) (Client, error)
}

// FactoryFunc adapts a function to Factory
type FactoryFunc func(ctx context.Context, apiKey string) (Client, error)

// NewClient implements Factory
func (f FactoryFunc) NewClient(ctx context.Context, apiKey string) (Client, error) {
	return f(ctx, apiKey)
}
