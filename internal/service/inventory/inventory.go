package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/biomethane/internal/domain/models"
	repo "github.com/mamadbah2/biomethane/internal/repository/sheets"
)

// Source provides the current feedstock inventory.
type Source interface {
	Feedstocks(ctx context.Context) ([]models.FeedstockRecord, error)
}

// StaticSource serves a fixed inventory, typically the one of the scenario file.
type StaticSource struct {
	records []models.FeedstockRecord
}

// NewStaticSource copies the given records.
func NewStaticSource(records []models.FeedstockRecord) *StaticSource {
	return &StaticSource{records: append([]models.FeedstockRecord(nil), records...)}
}

// Feedstocks implements Source.
func (s *StaticSource) Feedstocks(context.Context) ([]models.FeedstockRecord, error) {
	return append([]models.FeedstockRecord(nil), s.records...), nil
}

// SheetSource reads the inventory from a spreadsheet range laid out as
//
//	name | tons/yr | yield m3/t | CH4 % | unit cost | kind (optional)
//
// CH4 values up to 1 are read as fractions, larger ones as percentages.
// Rows without a name or with unparseable numbers are skipped.
type SheetSource struct {
	repo       repo.Repository
	sheetRange string
	logger     *zap.Logger
}

// NewSheetSource wires a new sheet-backed inventory.
func NewSheetSource(repository repo.Repository, sheetRange string, logger *zap.Logger) *SheetSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetSource{repo: repository, sheetRange: sheetRange, logger: logger}
}

// Feedstocks implements Source.
func (s *SheetSource) Feedstocks(ctx context.Context) ([]models.FeedstockRecord, error) {
	rows, err := s.repo.ReadRange(ctx, s.sheetRange)
	if err != nil {
		return nil, fmt.Errorf("load inventory range: %w", err)
	}

	records := make([]models.FeedstockRecord, 0, len(rows))
	for i, row := range rows {
		record, err := parseRow(row)
		if err != nil {
			s.logger.Debug("skip inventory row", zap.Int("row", i), zap.Any("values", row), zap.Error(err))
			continue
		}
		records = append(records, record)
	}

	s.logger.Debug("inventory loaded", zap.Int("rows", len(rows)), zap.Int("records", len(records)))
	return records, nil
}

func parseRow(row []interface{}) (models.FeedstockRecord, error) {
	if len(row) < 2 {
		return models.FeedstockRecord{}, fmt.Errorf("expected at least 2 columns, got %d", len(row))
	}

	name := strings.TrimSpace(fmt.Sprint(row[0]))
	if name == "" {
		return models.FeedstockRecord{}, fmt.Errorf("empty name")
	}

	tons, err := parseFloat(row[1])
	if err != nil {
		return models.FeedstockRecord{}, fmt.Errorf("tons: %w", err)
	}

	record := models.FeedstockRecord{Name: name, TonsPerYear: tons}

	if record.YieldM3PerTon, err = optionalFloat(row, 2); err != nil {
		return models.FeedstockRecord{}, fmt.Errorf("yield: %w", err)
	}

	methane, err := optionalFloat(row, 3)
	if err != nil {
		return models.FeedstockRecord{}, fmt.Errorf("methane: %w", err)
	}
	record.MethaneFraction = methaneFraction(methane)

	if record.UnitCost, err = optionalFloat(row, 4); err != nil {
		return models.FeedstockRecord{}, fmt.Errorf("unit cost: %w", err)
	}

	if len(row) > 5 {
		record.Kind = strings.TrimSpace(fmt.Sprint(row[5]))
	}

	return record, nil
}

// methaneFraction accepts either a percentage (55) or the fraction a
// percent-formatted cell yields when read unformatted (0.55).
func methaneFraction(v float64) float64 {
	if v > 1 {
		return v / 100
	}
	return v
}

// optionalFloat treats a missing or blank cell as zero.
func optionalFloat(row []interface{}, idx int) (float64, error) {
	if idx >= len(row) || strings.TrimSpace(fmt.Sprint(row[idx])) == "" {
		return 0, nil
	}
	return parseFloat(row[idx])
}

func parseFloat(value interface{}) (float64, error) {
	str := strings.TrimSpace(fmt.Sprint(value))
	str = strings.NewReplacer(",", "", "%", "", "$", "").Replace(str)
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.ParseFloat(str, 64)
}
