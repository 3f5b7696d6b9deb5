package service

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/liliang-cn/finsight/internal/analysis"
	"github.com/liliang-cn/finsight/internal/domain"
	"github.com/liliang-cn/finsight/internal/observability/metrics"
)

// Reset reasons
const (
	ResetNewDocument       = "new_document"
	ResetProcessingFailure = "processing_failure"
	ResetNoFile            = "no_file"
)

// AnalysisService runs the upload pipeline: read, compute, ground
type AnalysisService struct {
	ingest *IngestService
	engine *analysis.Engine
	chat   *ChatService
	logger *zap.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	ingest *IngestService,
	engine *analysis.Engine,
	chat *ChatService,
	logger *zap.Logger,
) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		ingest: ingest,
		engine: engine,
		chat:   chat,
		logger: logger,
	}
}

// Load processes an uploaded file and installs the result in st. On any
// failure the whole state is reset and the error is returned. A reload that
// yields the same grounding document keeps the conversation.
func (s *AnalysisService) Load(ctx context.Context, st *State, r io.Reader, filename string) (*Snapshot, error) {
	start := time.Now()

	snapshot, err := s.process(r, filename)
	if err != nil {
		s.logger.Warn("Statement processing failed",
			zap.String("filename", filename),
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
		metrics.ObserveUpload(string(domain.KindOf(err)), time.Since(start))
		s.Reset(st, ResetProcessingFailure)
		return nil, err
	}

	if st.Snapshot == nil || st.Snapshot.Document.Digest != snapshot.Document.Digest {
		s.chat.Discard(st, ResetNewDocument)
	}
	st.Snapshot = snapshot

	metrics.ObserveUpload("", time.Since(start))
	s.logger.Info("Statement processed",
		zap.String("upload_id", snapshot.Upload.ID),
		zap.String("filename", filename),
		zap.Int("rows", snapshot.Table.Len()),
		zap.Bool("liquidity", snapshot.Liquidity.Available),
		zap.String("digest", snapshot.Document.Digest),
	)
	return snapshot, nil
}

func (s *AnalysisService) process(r io.Reader, filename string) (*Snapshot, error) {
	upload, raw, warnings, err := s.ingest.Read(r, filename)
	if err != nil {
		return nil, err
	}

	table, err := s.engine.Compute(raw)
	if err != nil {
		return nil, err
	}

	liquidity, err := s.engine.Liquidity(table)
	if err != nil {
		// not fatal: rendered as N/A
		warnings = append(warnings, Warning{Kind: domain.KindOf(err), Message: err.Error()})
	}

	growth, hasGrowth := s.engine.CurrentAssetsGrowth(table)

	return &Snapshot{
		Upload:              upload,
		Table:               table,
		Liquidity:           liquidity,
		CurrentAssetsGrowth: growth,
		HasGrowth:           hasGrowth,
		Document:            s.engine.BuildGrounding(table, liquidity),
		Warnings:            warnings,
		ProcessedAt:         time.Now(),
	}, nil
}

// Reset clears the statement and discards the conversation. Both the upload
// failure path and the no-file path go through here.
func (s *AnalysisService) Reset(st *State, reason string) {
	s.chat.Discard(st, reason)
	st.Snapshot = nil
}
