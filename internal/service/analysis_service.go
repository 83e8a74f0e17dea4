package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"clusterview/internal/clusterapi"
	"clusterview/internal/domain"
	"clusterview/internal/logging"
)

// AnalysisServiceImpl fronts the clustering service: every call gets a request
// ID and is logged, and successful analyses are kept in the result store.
type AnalysisServiceImpl struct {
	backend domain.Backend
	store   domain.ResultStore
	logger  *logging.Logger
	now     func() time.Time
}

func NewAnalysisService(backend domain.Backend, store domain.ResultStore, logger *logging.Logger) *AnalysisServiceImpl {
	return &AnalysisServiceImpl{backend: backend, store: store, logger: logger, now: time.Now}
}

func (s *AnalysisServiceImpl) Preview(ctx context.Context, upload domain.Upload) ([]domain.Column, error) {
	ctx, reqID := withRequestID(ctx)
	start := s.now()
	s.logger.Info(reqID, "preview %s (%d bytes)", upload.Name, len(upload.Data))
	cols, err := s.backend.Preview(ctx, upload)
	if err != nil {
		s.logger.Error(reqID, "preview %s failed: %v", upload.Name, err)
		return nil, err
	}
	numeric := 0
	for _, c := range cols {
		if c.IsNumeric() {
			numeric++
		}
	}
	s.logger.Info(reqID, "preview %s: %d columns, %d numeric in %s", upload.Name, len(cols), numeric, s.now().Sub(start))
	return cols, nil
}

func (s *AnalysisServiceImpl) Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResult, error) {
	ctx, reqID := withRequestID(ctx)
	start := s.now()
	s.logger.Info(reqID, "analyze %s k=%d features=%v", req.Upload.Name, req.K, req.Features)
	res, err := s.backend.Analyze(ctx, req)
	if err != nil {
		s.logger.Error(reqID, "analyze %s failed: %v", req.Upload.Name, err)
		return nil, err
	}
	s.logger.Info(reqID, "analyze %s: %d points, k=%d in %s", req.Upload.Name, len(res.Data), res.K, s.now().Sub(start))

	if s.store != nil {
		a := domain.Analysis{
			ID:        reqID,
			FileName:  req.Upload.Name,
			K:         req.K,
			Features:  append([]string(nil), req.Features...),
			Result:    *res,
			CreatedAt: s.now(),
		}
		if err := s.store.Put(a); err != nil {
			s.logger.Warn(reqID, "keep analysis: %v", err)
		}
	}
	return res, nil
}

// History lists stored analyses, newest first.
func (s *AnalysisServiceImpl) History() []domain.Analysis {
	if s.store == nil {
		return nil
	}
	return s.store.List()
}

// Latest returns the most recent stored analysis.
func (s *AnalysisServiceImpl) Latest() (domain.Analysis, bool) {
	h := s.History()
	if len(h) == 0 {
		return domain.Analysis{}, false
	}
	return h[0], true
}

func withRequestID(ctx context.Context) (context.Context, string) {
	if id := clusterapi.RequestIDFrom(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return clusterapi.WithRequestID(ctx, id), id
}
