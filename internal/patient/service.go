package patient

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"patient-manager/internal/vitals"
)

// AlertPublisher fans a freshly raised alert out to an external channel.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, a Alert, p Patient) error
}

type CreatePatientRequest struct {
	ID              string `json:"id" validate:"required,patient_id"`
	Name            string `json:"name" validate:"required"`
	Age             int    `json:"age" validate:"gte=0,lte=150"`
	Condition       string `json:"condition" validate:"required"`
	LastVisit       string `json:"last_visit" validate:"required,datetime=2006-01-02"`
	Floor           int    `json:"floor" validate:"gte=1"`
	RespiratoryRate int    `json:"respiratory_rate" validate:"gte=0"`
	Airflow         int    `json:"airflow" validate:"gte=0,lte=100"`
}

// VitalsUpdate uses pointers so a missing reading is distinguishable from 0.
type VitalsUpdate struct {
	PatientID       string `json:"patient_id" validate:"required,patient_id"`
	RespiratoryRate *int   `json:"respiratory_rate" validate:"required,gte=0"`
	Airflow         *int   `json:"airflow" validate:"required,gte=0,lte=100"`
}

type Service interface {
	List(ctx context.Context) ([]Patient, error)
	Get(ctx context.Context, id string) (*Patient, error)
	ListByFloor(ctx context.Context, floor int) ([]Patient, error)
	Add(ctx context.Context, req CreatePatientRequest) (*Patient, error)
	UpdateVitals(ctx context.Context, req VitalsUpdate) ([]Alert, error)
	History(ctx context.Context, id string, limit int) ([]VitalReading, error)
	Alerts(ctx context.Context) ([]Alert, error)
	AcknowledgeAlert(ctx context.Context, id int64) error
	Seed(ctx context.Context) (int, error)
}

// publishTimeout bounds each publisher call made during a vitals update.
const publishTimeout = 3 * time.Second

type service struct {
	repo           Repository
	validator      *Validator
	publishers     []AlertPublisher
	publishTimeout time.Duration
	logger         *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger, publishers ...AlertPublisher) Service {
	return &service{
		repo:           repo,
		validator:      NewValidator(),
		publishers:     publishers,
		publishTimeout: publishTimeout,
		logger:         logger,
	}
}

func (s *service) List(ctx context.Context) ([]Patient, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) Get(ctx context.Context, id string) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByFloor(ctx context.Context, floor int) ([]Patient, error) {
	return s.repo.GetByFloor(ctx, floor)
}

func (s *service) Add(ctx context.Context, req CreatePatientRequest) (*Patient, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	p := &Patient{
		ID:              req.ID,
		Name:            req.Name,
		Age:             req.Age,
		Condition:       req.Condition,
		LastVisit:       req.LastVisit,
		Floor:           req.Floor,
		RespiratoryRate: req.RespiratoryRate,
		Airflow:         req.Airflow,
	}
	if err := s.repo.Add(ctx, p); err != nil {
		s.logger.Error("Failed to add patient", zap.String("patient_id", req.ID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Patient added", zap.String("patient_id", p.ID), zap.Int("floor", p.Floor))
	return p, nil
}

// UpdateVitals stores the new readings and raises one alert per field that
// is outside the normal range. Publisher failures are logged only.
func (s *service) UpdateVitals(ctx context.Context, req VitalsUpdate) ([]Alert, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	rr, af := *req.RespiratoryRate, *req.Airflow
	if err := s.repo.UpdateVitals(ctx, req.PatientID, rr, af); err != nil {
		s.logger.Error("Failed to update vitals",
			zap.String("patient_id", req.PatientID),
			zap.Error(err),
		)
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	raised := []Alert{}
	for _, a := range alertsFor(*p) {
		if err := s.repo.AddAlert(ctx, &a); err != nil {
			s.logger.Error("Failed to add alert",
				zap.String("patient_id", p.ID),
				zap.String("alert_type", a.AlertType),
				zap.Error(err),
			)
			return raised, err
		}
		a.PatientName = p.Name
		raised = append(raised, a)
		s.publish(ctx, a, *p)
	}

	s.logger.Info("Vitals updated",
		zap.String("patient_id", p.ID),
		zap.Int("respiratory_rate", rr),
		zap.Int("airflow", af),
		zap.String("status", string(p.Status())),
		zap.Int("alerts", len(raised)),
	)
	return raised, nil
}

func (s *service) publish(ctx context.Context, a Alert, p Patient) {
	for _, pub := range s.publishers {
		pctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
		err := pub.PublishAlert(pctx, a, p)
		cancel()
		if err != nil {
			s.logger.Warn("Failed to publish alert",
				zap.String("patient_id", p.ID),
				zap.Int64("alert_id", a.ID),
				zap.Error(err),
			)
		}
	}
}

func alertsFor(p Patient) []Alert {
	var alerts []Alert
	if st := vitals.ClassifyRespiratoryRate(p.RespiratoryRate); st != vitals.StatusNormal {
		alerts = append(alerts, Alert{
			PatientID: p.ID,
			AlertType: AlertTypeRespiratoryRate,
			Severity:  st,
			Value:     float64(p.RespiratoryRate),
			Message:   fmt.Sprintf("%s respiratory rate %d bpm for %s", st.Label(), p.RespiratoryRate, p.Name),
		})
	}
	if st := vitals.ClassifyAirflow(p.Airflow); st != vitals.StatusNormal {
		alerts = append(alerts, Alert{
			PatientID: p.ID,
			AlertType: AlertTypeAirflow,
			Severity:  st,
			Value:     float64(p.Airflow),
			Message:   fmt.Sprintf("%s airflow %d%% for %s", st.Label(), p.Airflow, p.Name),
		})
	}
	return alerts
}

func (s *service) History(ctx context.Context, id string, limit int) ([]VitalReading, error) {
	if limit <= 0 {
		limit = 10
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetVitalsHistory(ctx, id, limit)
}

func (s *service) Alerts(ctx context.Context) ([]Alert, error) {
	return s.repo.GetUnacknowledgedAlerts(ctx)
}

func (s *service) AcknowledgeAlert(ctx context.Context, id int64) error {
	if err := s.repo.AcknowledgeAlert(ctx, id); err != nil {
		s.logger.Error("Failed to acknowledge alert", zap.Int64("alert_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("Alert acknowledged", zap.Int64("alert_id", id))
	return nil
}

// Seed loads SeedPatients into an empty store and reports how many were added.
func (s *service) Seed(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	for _, p := range SeedPatients {
		if err := s.repo.Add(ctx, &p); err != nil {
			s.logger.Error("Failed to seed patient", zap.String("patient_id", p.ID), zap.Error(err))
			return 0, err
		}
	}
	s.logger.Info("Seeded patient store", zap.Int("patients", len(SeedPatients)))
	return len(SeedPatients), nil
}
