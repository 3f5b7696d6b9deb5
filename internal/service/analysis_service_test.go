package service

import (
	"context"
	"strings"
	"testing"

	"github.com/liliang-cn/finsight/internal/domain"
)

func TestAnalysisService_Load(t *testing.T) {
	f := newFixture(t, withKey())
	snap := f.load(t, statementA)

	if !f.state.Loaded() {
		t.Fatal("state should be loaded")
	}
	if snap.Table.Len() != 3 {
		t.Fatalf("rows = %d, want 3", snap.Table.Len())
	}
	if !snap.Liquidity.Available || snap.Liquidity.Prior != 2 || snap.Liquidity.Current != 2 {
		t.Errorf("Liquidity = %+v, want 2/2", snap.Liquidity)
	}
	if !snap.HasGrowth || snap.CurrentAssetsGrowth != 50 {
		t.Errorf("growth = %v (%v), want 50", snap.CurrentAssetsGrowth, snap.HasGrowth)
	}
	if snap.Document.IsZero() || !strings.Contains(snap.Document.Text, "TÀI SẢN NGẮN HẠN") {
		t.Error("grounding document should be built")
	}

	view := snap.View()
	if view.CurrentAssetsGrowth != "50.00%" {
		t.Errorf("view growth = %q", view.CurrentAssetsGrowth)
	}
	if len(view.SuggestedQuestions) == 0 {
		t.Error("view should carry suggested questions")
	}
}

func TestAnalysisService_MissingLiquidityIsWarning(t *testing.T) {
	f := newFixture(t, withKey())
	snap := f.load(t, "label,prior,current\nTỔNG CỘNG TÀI SẢN,1000,1200\n")

	if snap.Liquidity.Available {
		t.Error("liquidity should be unavailable")
	}
	if len(snap.Warnings) != 1 || snap.Warnings[0].Kind != domain.KindMissingOptionalLineItem {
		t.Fatalf("Warnings = %+v", snap.Warnings)
	}
	if !strings.Contains(snap.Document.Text, "N/A") {
		t.Error("document should render unavailable liquidity as N/A")
	}
}

func TestAnalysisService_NewDocumentResetsConversation(t *testing.T) {
	f := newFixture(t, withKey())
	ctx := context.Background()

	f.load(t, statementA)
	if _, err := f.chat.Send(ctx, f.state, "question about A"); err != nil {
		t.Fatal(err)
	}
	oldSession := f.state.Conversation.Session.ID

	snapB := f.load(t, statementB)
	if f.state.Conversation != nil {
		t.Fatal("conversation should be reset by a different document")
	}

	resp, err := f.chat.Send(ctx, f.state, "question about B")
	if err != nil {
		t.Fatal(err)
	}
	if resp.SessionID == oldSession {
		t.Error("a new session should be created for B")
	}
	for _, turn := range resp.Turns {
		if strings.Contains(turn.Content, "question about A") {
			t.Error("history from A leaked into B's log")
		}
	}

	chats := f.factory.allChats()
	if len(chats) != 2 {
		t.Fatalf("provider chats = %d, want 2", len(chats))
	}
	b := chats[1]
	if len(b.sent) != 1 || b.HistoryLen() != 2 {
		t.Fatalf("B session sent %d messages with history %d", len(b.sent), b.HistoryLen())
	}
	if strings.Contains(b.sent[0], "question about A") {
		t.Error("B's message carries A's question")
	}
	if !strings.Contains(b.sent[0], snapB.Document.Text) {
		t.Error("B's message should embed B's document")
	}
	if len(f.factory.clients) != 2 {
		t.Error("cached client should be dropped on reset")
	}
}

func TestAnalysisService_SameDocumentKeepsConversation(t *testing.T) {
	f := newFixture(t, withKey())
	f.load(t, statementA)
	if _, err := f.chat.Send(context.Background(), f.state, "q"); err != nil {
		t.Fatal(err)
	}
	conv := f.state.Conversation

	f.load(t, statementA)
	if f.state.Conversation != conv {
		t.Error("reloading an identical document should keep the conversation")
	}
}

func TestAnalysisService_FailureResetsState(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		body     string
		wantKind domain.Kind
	}{
		{"missing total assets", "s.csv", "label,prior,current\nTÀI SẢN NGẮN HẠN,400,600\n", domain.KindStructural},
		{"too few columns", "s.csv", "label,prior\nTỔNG CỘNG TÀI SẢN,1000\n", domain.KindStructural},
		{"unsupported type", "s.pdf", "%PDF", domain.KindUnreadableFile},
		{"corrupt workbook", "s.xlsx", "not a zip", domain.KindUnreadableFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, withKey())
			f.load(t, statementA)
			if _, err := f.chat.Send(context.Background(), f.state, "q"); err != nil {
				t.Fatal(err)
			}
			sessionID := f.state.Conversation.Session.ID

			_, err := f.analysis.Load(context.Background(), f.state, strings.NewReader(tt.body), tt.filename)
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if got := domain.KindOf(err); got != tt.wantKind {
				t.Errorf("KindOf() = %q, want %q", got, tt.wantKind)
			}
			if f.state.Loaded() || f.state.Conversation != nil {
				t.Error("state should be fully reset")
			}
			if s, _ := f.repo.GetSession(sessionID); s != nil {
				t.Error("session log should be deleted")
			}
		})
	}
}

func TestAnalysisService_Reset(t *testing.T) {
	f := newFixture(t, withKey())
	f.load(t, statementA)
	if _, err := f.chat.Send(context.Background(), f.state, "q"); err != nil {
		t.Fatal(err)
	}

	f.analysis.Reset(f.state, ResetNoFile)
	if f.state.Loaded() || f.state.Conversation != nil {
		t.Error("state should be idle after reset")
	}
}
