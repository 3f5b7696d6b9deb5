package service

import (
	"time"

	"github.com/liliang-cn/finsight/internal/analysis"
	"github.com/liliang-cn/finsight/internal/domain"
	"github.com/liliang-cn/finsight/internal/llm"
)

// Warning is a non-fatal condition attached to a processed statement
type Warning struct {
	Kind    domain.Kind `json:"kind"`
	Message string      `json:"message"`
}

// Snapshot is everything derived from one successfully processed upload.
// It is replaced wholesale on the next upload and never mutated.
type Snapshot struct {
	Upload              domain.Upload
	Table               domain.StatementTable
	Liquidity           domain.Liquidity
	CurrentAssetsGrowth float64
	HasGrowth           bool
	Document            domain.GroundingDocument
	Warnings            []Warning
	ProcessedAt         time.Time
}

// Conversation is the live chat bound to one grounding document
type Conversation struct {
	Session domain.Session

	client llm.Client      // cached provider client
	chat   llm.ChatSession // nil until the provider session is created
}

// Active reports whether a provider session exists
func (c *Conversation) Active() bool {
	return c != nil && c.chat != nil
}

// ProviderHistoryLen is the number of turns held by the provider session
func (c *Conversation) ProviderHistoryLen() int {
	if !c.Active() {
		return 0
	}
	return c.chat.HistoryLen()
}

// State is the single live statement and conversation pair. It is handed
// to every request handler; only one request touches it at a time.
type State struct {
	Snapshot     *Snapshot
	Conversation *Conversation
}

// NewState creates an idle state
func NewState() *State {
	return &State{}
}

// Loaded reports whether a statement is currently loaded
func (s *State) Loaded() bool {
	return s.Snapshot != nil
}

// StatementView is the processed statement formatted for display
type StatementView struct {
	Upload              domain.Upload              `json:"upload"`
	Rows                []analysis.RenderedRow     `json:"rows"`
	Liquidity           analysis.RenderedLiquidity `json:"liquidity"`
	CurrentAssetsGrowth string                     `json:"current_assets_growth"`
	Digest              string                     `json:"digest"`
	Warnings            []Warning                  `json:"warnings"`
	SuggestedQuestions  []string                   `json:"suggested_questions"`
	ProcessedAt         time.Time                  `json:"processed_at"`
}

// View formats the snapshot
func (s *Snapshot) View() StatementView {
	growth := analysis.NotAvailable
	if s.HasGrowth {
		growth = analysis.FormatPercent(s.CurrentAssetsGrowth)
	}
	warnings := s.Warnings
	if warnings == nil {
		warnings = []Warning{}
	}
	return StatementView{
		Upload:              s.Upload,
		Rows:                analysis.RenderTable(s.Table),
		Liquidity:           analysis.RenderLiquidity(s.Liquidity),
		CurrentAssetsGrowth: growth,
		Digest:              s.Document.Digest,
		Warnings:            warnings,
		SuggestedQuestions:  SuggestedQuestions,
		ProcessedAt:         s.ProcessedAt,
	}
}
