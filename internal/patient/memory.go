package patient

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"patient-manager/internal/apperrors"
	"patient-manager/internal/vitals"
)

// memoryRepo keeps everything in process memory. It backs the demo mode used
// when no database is configured.
type memoryRepo struct {
	mu       sync.RWMutex
	patients map[string]Patient
	vitals   []VitalReading
	alerts   []Alert
	nextID   int64
	now      func() time.Time
}

func NewMemoryRepository() Repository {
	return &memoryRepo{
		patients: make(map[string]Patient),
		now:      time.Now,
	}
}

func (r *memoryRepo) filter(keep func(Patient) bool) []Patient {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Patient{}
	for _, p := range r.patients {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (r *memoryRepo) GetAll(ctx context.Context) ([]Patient, error) {
	return r.filter(func(Patient) bool { return true }), nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("patient %s not found", id))
	}
	return &p, nil
}

func (r *memoryRepo) GetByFloor(ctx context.Context, floor int) ([]Patient, error) {
	return r.filter(func(p Patient) bool { return p.Floor == floor }), nil
}

func (r *memoryRepo) Search(ctx context.Context, term string) ([]Patient, error) {
	needle := strings.ToLower(term)
	return r.filter(func(p Patient) bool {
		return strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.ID), needle)
	}), nil
}

func (r *memoryRepo) GetCritical(ctx context.Context) ([]Patient, error) {
	return r.filter(func(p Patient) bool { return p.Status() == vitals.StatusCritical }), nil
}

func (r *memoryRepo) GetWarning(ctx context.Context) ([]Patient, error) {
	return r.filter(func(p Patient) bool { return p.Status() == vitals.StatusWarning }), nil
}

func (r *memoryRepo) GetNormal(ctx context.Context) ([]Patient, error) {
	return r.filter(func(p Patient) bool { return p.Status() == vitals.StatusNormal }), nil
}

func (r *memoryRepo) GetVitalsHistory(ctx context.Context, id string, limit int) ([]VitalReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := []VitalReading{}
	// Appended in time order, so walk backwards for newest first.
	for i := len(r.vitals) - 1; i >= 0 && len(history) < limit; i-- {
		if r.vitals[i].PatientID == id {
			history = append(history, r.vitals[i])
		}
	}
	return history, nil
}

func (r *memoryRepo) GetUnacknowledgedAlerts(ctx context.Context) ([]Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	alerts := []Alert{}
	for i := len(r.alerts) - 1; i >= 0; i-- {
		a := r.alerts[i]
		if a.Acknowledged {
			continue
		}
		a.PatientName = r.patients[a.PatientID].Name
		alerts = append(alerts, a)
	}
	return alerts, nil
}

func (r *memoryRepo) Add(ctx context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.patients[p.ID]; exists {
		return apperrors.NewStoreError("failed to add patient",
			fmt.Errorf("duplicate patient id %s", p.ID))
	}
	now := r.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.patients[p.ID] = *p
	return nil
}

func (r *memoryRepo) UpdateVitals(ctx context.Context, id string, respiratoryRate, airflow int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.patients[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("patient %s not found", id))
	}
	now := r.now()
	p.RespiratoryRate = respiratoryRate
	p.Airflow = airflow
	p.UpdatedAt = now
	r.patients[id] = p

	r.nextID++
	r.vitals = append(r.vitals, VitalReading{
		ID:              r.nextID,
		PatientID:       id,
		RespiratoryRate: respiratoryRate,
		Airflow:         airflow,
		Timestamp:       now,
	})
	return nil
}

func (r *memoryRepo) AddAlert(ctx context.Context, a *Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[a.PatientID]; !ok {
		return apperrors.NewStoreError("failed to add alert",
			fmt.Errorf("unknown patient %s", a.PatientID))
	}
	r.nextID++
	a.ID = r.nextID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.now()
	}
	a.Acknowledged = false
	r.alerts = append(r.alerts, *a)
	return nil
}

func (r *memoryRepo) AcknowledgeAlert(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.alerts {
		if r.alerts[i].ID == id {
			r.alerts[i].Acknowledged = true
			return nil
		}
	}
	return apperrors.NewNotFoundError(fmt.Sprintf("alert %d not found", id))
}

func (r *memoryRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patients), nil
}

func (r *memoryRepo) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.patients = make(map[string]Patient)
	r.vitals = nil
	r.alerts = nil
	r.nextID = 0
	return nil
}
