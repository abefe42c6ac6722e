package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/biomethane/internal/calc"
	"github.com/mamadbah2/biomethane/internal/domain/models"
)

// Operation labels reported to the Recorder.
const (
	OperationEvaluate    = "evaluate"
	OperationSensitivity = "sensitivity"
)

// Outcome labels reported to the Recorder.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Recorder receives evaluation telemetry.
type Recorder interface {
	ObserveEvaluation(operation, outcome string, took time.Duration)
	SetBaseCase(ebitda float64, activeFeedstocks int)
}

// Settings are the model options applied to every evaluation.
type Settings struct {
	HorizonYears    int
	Levels          []float64
	Drivers         []string
	CO2Policy       string
	CO2FlatFraction float64
}

// Service runs the calculation engine over a scenario snapshot.
type Service struct {
	catalog  Catalog
	recorder Recorder
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires a new evaluation service. A nil catalog disables kind
// resolution; a nil recorder disables telemetry.
func NewService(catalog Catalog, recorder Recorder, settings Settings, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.HorizonYears < 1 {
		settings.HorizonYears = calc.DefaultHorizonYears
	}
	if len(settings.Levels) == 0 {
		settings.Levels = calc.DefaultLevels
	}
	return &Service{
		catalog:  catalog,
		recorder: recorder,
		settings: settings,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Evaluate computes the base case, financing, returns and sensitivity.
func (s *Service) Evaluate(ctx context.Context, scenario models.Scenario) (*models.Evaluation, error) {
	start := s.now()

	res, err := s.runWithDrivers(ctx, scenario, s.settings.Drivers)
	if err != nil {
		s.observe(OperationEvaluate, err, start)
		return nil, err
	}

	eval := &models.Evaluation{
		ID:          s.newID(),
		EvaluatedAt: start.UTC(),
		CO2Policy:   res.Policy,
		Active:      res.Active,
		Aggregate:   res.Aggregate,
		Financing:   res.Financing,
		Returns:     res.Returns,
		Sensitivity: res.Sensitivity,
	}

	s.observe(OperationEvaluate, nil, start)
	if s.recorder != nil {
		s.recorder.SetBaseCase(res.Aggregate.EBITDA, res.Active)
	}

	s.logger.Info("scenario evaluated",
		zap.String("evaluation_id", eval.ID),
		zap.Int("active_feedstocks", eval.Active),
		zap.String("co2_policy", eval.CO2Policy),
		zap.Float64("ebitda", eval.Aggregate.EBITDA),
		zap.Duration("duration", s.now().Sub(start)))

	return eval, nil
}

// Sensitivity runs only the tornado sweep over the named drivers, or the
// configured ones when none are named.
func (s *Service) Sensitivity(ctx context.Context, scenario models.Scenario, driverNames []string) (*models.SensitivityReport, error) {
	start := s.now()

	if len(driverNames) == 0 {
		driverNames = s.settings.Drivers
	}
	res, err := s.runWithDrivers(ctx, scenario, driverNames)
	s.observe(OperationSensitivity, err, start)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("sensitivity computed",
		zap.Int("drivers", len(res.Sensitivity.Rows)),
		zap.Float64("base_ebitda", res.Sensitivity.BaseEBITDA))

	return &res.Sensitivity, nil
}

// ResolveFeedstocks fills missing yield and methane fraction of active
// records from the catalog profile of their kind.
func (s *Service) ResolveFeedstocks(ctx context.Context, records []models.FeedstockRecord) ([]models.FeedstockRecord, error) {
	out := make([]models.FeedstockRecord, len(records))
	copy(out, records)

	for i, r := range out {
		if !r.Active() || r.Kind == "" || (r.YieldM3PerTon > 0 && r.MethaneFraction > 0) {
			continue
		}
		if s.catalog == nil {
			return nil, fmt.Errorf("%w: %s (no catalog configured)", models.ErrProfileNotFound, r.Kind)
		}

		profile, err := s.catalog.Profile(ctx, r.Kind)
		if err != nil {
			return nil, err
		}
		if r.YieldM3PerTon == 0 {
			out[i].YieldM3PerTon = profile.YieldM3PerTon
		}
		if r.MethaneFraction == 0 {
			out[i].MethaneFraction = profile.MethaneFraction
		}
		s.logger.Debug("feedstock resolved from catalog", zap.String("name", r.Name), zap.String("kind", r.Kind))
	}

	return out, nil
}

func (s *Service) runWithDrivers(ctx context.Context, scenario models.Scenario, names []string) (calc.Result, error) {
	drivers := make([]calc.Driver, 0, len(names))
	for _, name := range names {
		d, err := calc.ParseDriver(name)
		if err != nil {
			return calc.Result{}, fmt.Errorf("%w: %v", models.ErrInvalidScenario, err)
		}
		drivers = append(drivers, d)
	}
	return s.run(ctx, scenario, drivers)
}

func (s *Service) run(ctx context.Context, scenario models.Scenario, drivers []calc.Driver) (calc.Result, error) {
	if err := scenario.Validate(); err != nil {
		return calc.Result{}, err
	}

	policyName := scenario.CO2Policy
	if policyName == "" {
		policyName = s.settings.CO2Policy
	}
	policy, err := calc.PolicyByName(policyName, s.settings.CO2FlatFraction)
	if err != nil {
		return calc.Result{}, fmt.Errorf("%w: %v", models.ErrInvalidScenario, err)
	}

	feedstocks, err := s.ResolveFeedstocks(ctx, scenario.Feedstocks)
	if err != nil {
		return calc.Result{}, err
	}
	scenario.Feedstocks = feedstocks

	return calc.Run(scenario, calc.Options{
		Policy:       policy,
		HorizonYears: s.settings.HorizonYears,
		Levels:       s.settings.Levels,
		Drivers:      drivers,
	})
}

func (s *Service) observe(operation string, err error, start time.Time) {
	if s.recorder == nil {
		return
	}
	outcome := OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, models.ErrInvalidScenario), errors.Is(err, models.ErrProfileNotFound):
		outcome = OutcomeInvalid
	default:
		outcome = OutcomeError
	}
	s.recorder.ObserveEvaluation(operation, outcome, s.now().Sub(start))
}
