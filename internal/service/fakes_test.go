package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/liliang-cn/finsight/internal/analysis"
	"github.com/liliang-cn/finsight/internal/domain"
	"github.com/liliang-cn/finsight/internal/llm"
	"github.com/liliang-cn/finsight/internal/repository"
	"github.com/liliang-cn/finsight/internal/secrets"
)

const testSecretKey = "GEMINI_API_KEY"

var errQuota = domain.E(domain.KindProviderError, "generate content", errors.New("quota exceeded"))

// fakeChat keeps a provider-side history so tests can compare it with the
// local log
type fakeChat struct {
	instruction string
	sent        []string
	history     int
	reply       func(msg string) (string, error)
}

func (c *fakeChat) Send(_ context.Context, msg string) (string, error) {
	c.sent = append(c.sent, msg)
	reply, err := c.reply(msg)
	if err != nil {
		return "", err
	}
	c.history += 2
	return reply, nil
}

func (c *fakeChat) HistoryLen() int { return c.history }

type fakeClient struct {
	apiKey   string
	prompts  []string
	chats    []*fakeChat
	generate func(prompt string) (string, error)
	reply    func(msg string) (string, error)
}

func (c *fakeClient) Generate(_ context.Context, _ string, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.generate(prompt)
}

func (c *fakeClient) StartChat(_ context.Context, _ string, instruction string) (llm.ChatSession, error) {
	chat := &fakeChat{instruction: instruction, reply: c.reply}
	c.chats = append(c.chats, chat)
	return chat, nil
}

// fakeFactory records every client it hands out
type fakeFactory struct {
	clients  []*fakeClient
	generate func(prompt string) (string, error)
	reply    func(msg string) (string, error)
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		generate: func(string) (string, error) { return "**Solid** position.", nil },
		reply:    func(string) (string, error) { return "Current assets grew 50%.", nil },
	}
}

func (f *fakeFactory) NewClient(_ context.Context, apiKey string) (llm.Client, error) {
	c := &fakeClient{apiKey: apiKey, generate: f.generate, reply: f.reply}
	f.clients = append(f.clients, c)
	return c, nil
}

func (f *fakeFactory) allChats() []*fakeChat {
	var chats []*fakeChat
	for _, c := range f.clients {
		chats = append(chats, c.chats...)
	}
	return chats
}

type fixture struct {
	state    *State
	factory  *fakeFactory
	repo     *repository.ConversationRepository
	analysis *AnalysisService
	chat     *ChatService
}

func newFixture(t *testing.T, store secrets.Store) *fixture {
	t.Helper()
	db, err := repository.NewDB(repository.MemoryPath)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := repository.NewConversationRepository(db)
	factory := newFakeFactory()
	chat := NewChatService("test-model", testSecretKey, store, factory, repo, nil)
	ingest := NewIngestService(analysis.NewCoercer(analysis.DefaultNumberFormat()), 1<<20, nil)
	engine := analysis.NewEngine(analysis.DefaultLabels(), nil)

	return &fixture{
		state:    NewState(),
		factory:  factory,
		repo:     repo,
		analysis: NewAnalysisService(ingest, engine, chat, nil),
		chat:     chat,
	}
}

func withKey() secrets.Store {
	return secrets.MapStore{testSecretKey: "test-key"}
}

const statementA = `Chỉ tiêu,Năm trước,Năm nay
TỔNG CỘNG TÀI SẢN,1000,1200
TÀI SẢN NGẮN HẠN,400,600
NỢ NGẮN HẠN,200,300
`

const statementB = `Chỉ tiêu,Năm trước,Năm nay
TỔNG CỘNG TÀI SẢN,5000,5500
TÀI SẢN NGẮN HẠN,2500,2000
NỢ NGẮN HẠN,1000,1000
`

func (f *fixture) load(t *testing.T, csv string) *Snapshot {
	t.Helper()
	snap, err := f.analysis.Load(context.Background(), f.state, strings.NewReader(csv), "statement.csv")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return snap
}
