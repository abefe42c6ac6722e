package reporting

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mamadbah2/biomethane/internal/domain/models"
	"github.com/mamadbah2/biomethane/internal/service/inventory"
)

const (
	dateLayout = "2006-01-02"

	SourceScenario   = "scenario"
	SourceMarketFeed = "market_feed"
)

var printer = message.NewPrinter(language.English)

// Evaluator runs the full model over a scenario.
type Evaluator interface {
	Evaluate(ctx context.Context, scenario models.Scenario) (*models.Evaluation, error)
}

// PriceSource returns the current gas and CO2 sale prices.
type PriceSource interface {
	Prices(ctx context.Context) (models.MarketAssumptions, error)
}

// Service builds the periodic snapshot of the plant economics.
type Service struct {
	base      models.Scenario
	inventory inventory.Source
	prices    PriceSource
	evaluator Evaluator
	logger    *zap.Logger
}

// NewService wires a new reporting service instance. A nil price source
// keeps the scenario prices.
func NewService(base models.Scenario, source inventory.Source, prices PriceSource, evaluator Evaluator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if source == nil {
		source = inventory.NewStaticSource(base.Feedstocks)
	}
	return &Service{base: base, inventory: source, prices: prices, evaluator: evaluator, logger: logger}
}

// GenerateSnapshot evaluates the base scenario against the latest inventory
// and prices. A failing price feed degrades to the scenario prices.
func (s *Service) GenerateSnapshot(ctx context.Context, now time.Time) (*models.SnapshotReport, error) {
	scenario := s.base

	feedstocks, err := s.inventory.Feedstocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	scenario.Feedstocks = feedstocks

	source := SourceScenario
	if s.prices != nil {
		market, err := s.prices.Prices(ctx)
		if err != nil {
			s.logger.Warn("price feed unavailable, keeping scenario prices", zap.Error(err))
		} else {
			scenario.Market = market
			source = SourceMarketFeed
		}
	}

	eval, err := s.evaluator.Evaluate(ctx, scenario)
	if err != nil {
		return nil, fmt.Errorf("evaluate snapshot: %w", err)
	}

	report := &models.SnapshotReport{
		EvaluationID:    eval.ID,
		Source:          source,
		GasPrice:        scenario.Market.GasPrice,
		CO2Price:        scenario.Market.CO2Price,
		ActiveFeedstock: eval.Active,
		EBITDA:          eval.Aggregate.EBITDA,
		NetCashFlow:     eval.Financing.NetCashFlow,
		IRR:             eval.Returns.IRR,
		SimplePayback:   eval.Returns.SimplePayback,
		GeneratedAt:     now,
	}
	if len(eval.Sensitivity.Rows) > 0 {
		report.TopDriver = eval.Sensitivity.Rows[0].Driver
	}

	s.logger.Info("snapshot generated",
		zap.String("evaluation_id", report.EvaluationID),
		zap.String("source", source),
		zap.Float64("ebitda", report.EBITDA))

	return report, nil
}

// SnapshotNotification renders a snapshot as a webhook message.
func SnapshotNotification(r *models.SnapshotReport) models.Notification {
	var b strings.Builder
	fmt.Fprintf(&b, "Prices (%s): gas $%.3f/m3, CO2 $%.2f/t\n", r.Source, r.GasPrice, r.CO2Price)
	fmt.Fprintf(&b, "Active feedstocks: %d\n", r.ActiveFeedstock)
	fmt.Fprintf(&b, "EBITDA: %s\n", formatMoney(r.EBITDA))
	fmt.Fprintf(&b, "Net cash flow after debt: %s\n", formatMoney(r.NetCashFlow))
	fmt.Fprintf(&b, "IRR: %s | Payback: %s\n", formatPercent(r.IRR), formatYears(r.SimplePayback))
	if r.TopDriver != "" {
		fmt.Fprintf(&b, "Largest EBITDA driver: %s", r.TopDriver)
	}

	return models.Notification{
		Title: fmt.Sprintf("Biomethane snapshot %s", r.GeneratedAt.Format(dateLayout)),
		Text:  strings.TrimRight(b.String(), "\n"),
	}
}

// FormatSummary renders a full evaluation as a plain-text report.
func FormatSummary(e *models.Evaluation) string {
	var b strings.Builder
	a := e.Aggregate

	fmt.Fprintf(&b, "Evaluation %s (%s, CO2 policy %s)\n", e.ID, e.EvaluatedAt.Format(dateLayout), e.CO2Policy)
	fmt.Fprintf(&b, "Active feedstocks: %d\n\n", e.Active)

	b.WriteString("Production\n")
	fmt.Fprintf(&b, "  Raw biogas        %14.0f m3/yr\n", a.TotalRawVolume)
	fmt.Fprintf(&b, "  Biomethane        %14.0f m3/yr\n", a.TotalMethaneVolume)
	fmt.Fprintf(&b, "  Captured CO2      %14.2f t/yr\n\n", a.TotalCO2Mass)

	b.WriteString("Profit and loss\n")
	fmt.Fprintf(&b, "  Gas revenue       %14s\n", formatMoney(a.RevenueGas))
	fmt.Fprintf(&b, "  CO2 revenue       %14s\n", formatMoney(a.RevenueCO2))
	fmt.Fprintf(&b, "  Gate fees         %14s\n", formatMoney(a.GateFeeIncome))
	fmt.Fprintf(&b, "  Feedstock cost    %14s\n", formatMoney(-a.PurchaseExpense))
	fmt.Fprintf(&b, "  Operating cost    %14s\n", formatMoney(-a.TotalOpex))
	fmt.Fprintf(&b, "  EBITDA            %14s\n\n", formatMoney(a.EBITDA))

	f := e.Financing
	b.WriteString("Financing\n")
	fmt.Fprintf(&b, "  Loan              %14s\n", formatMoney(f.LoanAmount))
	fmt.Fprintf(&b, "  Equity            %14s\n", formatMoney(f.EquityOutlay))
	fmt.Fprintf(&b, "  Debt service      %14s\n", formatMoney(f.AnnualDebtService))
	fmt.Fprintf(&b, "  Net cash flow     %14s\n", formatMoney(f.NetCashFlow))
	fmt.Fprintf(&b, "  DSCR              %14s\n\n", formatRatio(f.DebtServiceCoverage))

	r := e.Returns
	b.WriteString("Returns\n")
	fmt.Fprintf(&b, "  Investment        %14s\n", formatMoney(r.TotalInvestment))
	fmt.Fprintf(&b, "  Simple payback    %14s\n", formatYears(r.SimplePayback))
	fmt.Fprintf(&b, "  IRR (%d yrs)      %14s\n", r.HorizonYears, formatPercent(r.IRR))

	if len(e.Sensitivity.Rows) > 0 {
		b.WriteString("\nEBITDA sensitivity (ranked)\n")
		for _, row := range e.Sensitivity.Rows {
			fmt.Fprintf(&b, "  %d. %-20s range %14s  low %14s  high %14s\n",
				row.Rank, row.Driver, formatMoney(row.ImpactRange), formatMoney(-row.LowDelta), formatMoney(row.HighDelta))
		}
	}

	if len(e.Sensitivity.Capex) > 0 {
		b.WriteString("\nCAPEX sensitivity\n")
		for _, c := range e.Sensitivity.Capex {
			fmt.Fprintf(&b, "  %+5.0f%%  outlay %14s  IRR %8s  payback %s\n",
				c.Level*100, formatMoney(c.Outlay), formatPercent(c.IRR), formatYears(c.SimplePayback))
		}
	}

	return b.String()
}

func formatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
	}
	return sign + "$" + printer.Sprintf("%.0f", math.Abs(v))
}

func formatPercent(m models.Metric) string {
	v, ok := m.Get()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func formatYears(m models.Metric) string {
	v, ok := m.Get()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.1f yrs", v)
}

func formatRatio(m models.Metric) string {
	v, ok := m.Get()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.2fx", v)
}
