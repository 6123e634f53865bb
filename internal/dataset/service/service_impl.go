package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/retailops/quantclass/internal/config"
	datasetdomain "github.com/retailops/quantclass/internal/dataset/domain"
	"github.com/retailops/quantclass/internal/featureschema"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	GenID *snowflake.Node
	DB    *gorm.DB                 `optional:"true"`
	Repo  datasetdomain.Repository `optional:"true"`
}

type Service struct {
	cfg   config.Config
	log   *zap.Logger
	genID *snowflake.Node
	db    *gorm.DB
	repo  datasetdomain.Repository
}

func NewService(p Params) *Service {
	return &Service{
		cfg:   p.Cfg,
		log:   p.Log.Named("dataset.service"),
		genID: p.GenID,
		db:    p.DB,
		repo:  p.Repo,
	}
}

// LoadSplit reads the labeled transactions for one split from the configured
// source.
func (s *Service) LoadSplit(ctx context.Context, split string) ([]datasetdomain.LabeledTransaction, error) {
	path, err := s.csvPath(split)
	if err != nil {
		return nil, err
	}

	switch s.cfg.DatasetSource {
	case "csv", "":
		return s.loadCSV(path)
	case "store":
		if s.db == nil || s.repo == nil {
			return nil, datasetdomain.ErrUnknownSource
		}
		rows, err := s.repo.ListBySplit(ctx, s.db, split)
		if err != nil {
			return nil, err
		}
		out := make([]datasetdomain.LabeledTransaction, 0, len(rows))
		for _, row := range rows {
			out = append(out, row.Labeled())
		}
		return out, nil
	default:
		return nil, datasetdomain.ErrUnknownSource
	}
}

// ImportSplit replaces one split in the historical transaction store with the
// contents of its CSV file.
func (s *Service) ImportSplit(ctx context.Context, split string) error {
	if s.db == nil || s.repo == nil {
		return datasetdomain.ErrUnknownSource
	}
	path, err := s.csvPath(split)
	if err != nil {
		return err
	}

	labeled, err := s.loadCSV(path)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	rows := make([]datasetdomain.HistoricalTransaction, 0, len(labeled))
	for _, tx := range labeled {
		rows = append(rows, datasetdomain.HistoricalTransaction{
			ID:            s.genID.Generate(),
			Split:         split,
			Date:          tx.Date,
			BranchID:      tx.BranchID,
			InvoiceNumber: tx.InvoiceNumber,
			ItemCode:      tx.ItemCode,
			QuantitySold:  tx.QuantitySold,
			Class:         tx.Class,
			CreatedAt:     now,
		})
	}

	if err := s.repo.DeleteSplit(ctx, s.db, split); err != nil {
		return err
	}
	if err := s.repo.BulkInsert(ctx, s.db, rows); err != nil {
		return err
	}

	s.log.Info("dataset split imported",
		zap.String("split", split),
		zap.String("path", path),
		zap.Int("rows", len(rows)),
	)
	return nil
}

func (s *Service) csvPath(split string) (string, error) {
	switch split {
	case datasetdomain.SplitTrain:
		return s.cfg.TrainCSVPath, nil
	case datasetdomain.SplitTest:
		return s.cfg.TestCSVPath, nil
	default:
		return "", datasetdomain.ErrUnknownSplit
	}
}

// Required CSV columns. Extra columns such as branch or item names are
// ignored.
var csvColumns = []string{"Date", "BranchID", "InvoiceNumber", "ItemCode", "QuantitySold", "y_class"}

func (s *Service) loadCSV(path string) ([]datasetdomain.LabeledTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := map[string]int{}
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range csvColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("csv %s: missing column %q", path, name)
		}
	}

	var out []datasetdomain.LabeledTransaction
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv %s line %d: %w", path, line+1, err)
		}
		line++

		quantity, err := strconv.ParseFloat(strings.TrimSpace(record[index["QuantitySold"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("csv %s line %d: quantity: %w", path, line, err)
		}
		class, err := strconv.Atoi(strings.TrimSpace(record[index["y_class"]]))
		if err != nil {
			return nil, fmt.Errorf("csv %s line %d: class: %w", path, line, err)
		}

		out = append(out, datasetdomain.LabeledTransaction{
			Transaction: featureschema.Transaction{
				Date:          strings.TrimSpace(record[index["Date"]]),
				BranchID:      strings.TrimSpace(record[index["BranchID"]]),
				InvoiceNumber: strings.TrimSpace(record[index["InvoiceNumber"]]),
				ItemCode:      strings.TrimSpace(record[index["ItemCode"]]),
				QuantitySold:  quantity,
			},
			Class: class,
		})
	}

	if len(out) == 0 {
		return nil, datasetdomain.ErrEmptyDataset
	}
	return out, nil
}
