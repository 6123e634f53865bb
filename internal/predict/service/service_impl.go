package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	classifierdomain "github.com/retailops/quantclass/internal/classifier/domain"
	"github.com/retailops/quantclass/internal/featureschema"
	"github.com/retailops/quantclass/internal/observability/logger"
	"github.com/retailops/quantclass/internal/observability/metrics"
	"github.com/retailops/quantclass/internal/predict/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Model   domain.Model
	Repo    domain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	model   domain.Model
	repo    domain.Repository
	metrics *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("predict.service"),
		genID:   p.GenID,
		model:   p.Model,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

// Ready reports whether the model artifacts are loaded and serving.
func (s *Service) Ready() bool {
	return s.model.Ready()
}

// Predict classifies one transaction. Online requests carry no per-group
// sales history, so the lag and rolling features are assembled as zero and
// the response marks history "none".
func (s *Service) Predict(ctx context.Context, req domain.PredictRequest) (*domain.PredictResponse, error) {
	if !s.model.Ready() {
		return nil, classifierdomain.ErrModelUnavailable
	}

	assembler, err := s.model.Assembler()
	if err != nil {
		return nil, err
	}

	tx := featureschema.Transaction{
		Date:          req.Date,
		BranchID:      req.BranchID,
		InvoiceNumber: req.InvoiceNumber,
		ItemCode:      req.ItemCode,
		QuantitySold:  req.QuantitySold,
	}

	vector, err := assembler.Assemble(tx, nil)
	if err != nil {
		s.metrics.RecordAssemblyFailure(ctx, "invalid_input")
		s.metrics.RecordPrediction(ctx, "rejected", "")
		return nil, err
	}

	classID, probs, err := s.model.Predict(vector)
	if err != nil {
		s.metrics.RecordPrediction(ctx, "failed", "")
		s.log.Error("prediction failed", zap.Error(err))
		return nil, domain.ErrPredictionFailed
	}

	label := classifierdomain.Label(classID)
	s.metrics.RecordPrediction(ctx, "ok", label)
	s.logPrediction(ctx, req, label, classID, probs)

	return &domain.PredictResponse{
		Prediction:    label,
		ClassID:       classID,
		Probabilities: probs,
		History:       "none",
	}, nil
}

// logPrediction records the served prediction. Failures are logged and
// swallowed so the audit trail never blocks the response.
func (s *Service) logPrediction(ctx context.Context, req domain.PredictRequest, label string, classID int, probs []float64) {
	if s.db == nil || s.repo == nil {
		return
	}
	entry := &domain.PredictionLog{
		ID:            s.genID.Generate(),
		RequestID:     logger.RequestIDFromContext(ctx),
		Date:          req.Date,
		BranchID:      req.BranchID,
		InvoiceNumber: req.InvoiceNumber,
		ItemCode:      req.ItemCode,
		Prediction:    label,
		ClassID:       classID,
		Probabilities: datatypes.NewJSONSlice(probs),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, entry); err != nil {
		s.log.Warn("prediction log insert failed", zap.Error(err))
	}
}
