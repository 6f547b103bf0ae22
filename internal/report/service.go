package report

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"patient-manager/internal/apperrors"
	"patient-manager/internal/patient"
)

// Store is the read side of the record store that reports are built from.
type Store interface {
	GetAll(ctx context.Context) ([]patient.Patient, error)
	GetCritical(ctx context.Context) ([]patient.Patient, error)
	GetWarning(ctx context.Context) ([]patient.Patient, error)
	GetNormal(ctx context.Context) ([]patient.Patient, error)
	GetUnacknowledgedAlerts(ctx context.Context) ([]patient.Alert, error)
}

type DocumentSender interface {
	SendDocument(ctx context.Context, chatID int64, data []byte, fileName, caption string) error
}

type Service struct {
	store    Store
	sender   DocumentSender
	chatID   int64
	fontPath string
	logger   *zap.Logger
	now      func() time.Time
}

// NewService builds the report service. sender may be nil when no Telegram
// bot is configured; SendWardReport then fails.
func NewService(store Store, sender DocumentSender, chatID int64, fontPath string, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		sender:   sender,
		chatID:   chatID,
		fontPath: fontPath,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	critical, err := s.store.GetCritical(ctx)
	if err != nil {
		return nil, err
	}
	warning, err := s.store.GetWarning(ctx)
	if err != nil {
		return nil, err
	}
	normal, err := s.store.GetNormal(ctx)
	if err != nil {
		return nil, err
	}
	alerts, err := s.store.GetUnacknowledgedAlerts(ctx)
	if err != nil {
		return nil, err
	}

	recent := alerts
	if len(recent) > recentAlertsShown {
		recent = recent[:recentAlertsShown]
	}

	return &Stats{
		Total:                len(all),
		Floors:               countFloors(all),
		Critical:             len(critical),
		Warning:              len(warning),
		Normal:               len(normal),
		UnacknowledgedAlerts: len(alerts),
		RecentAlerts:         recent,
		GeneratedAt:          s.now(),
	}, nil
}

func countFloors(patients []patient.Patient) []FloorCount {
	counts := make(map[int]int)
	for _, p := range patients {
		counts[p.Floor]++
	}
	floors := make([]FloorCount, 0, len(counts))
	for f, n := range counts {
		floors = append(floors, FloorCount{Floor: f, Patients: n})
	}
	sort.Slice(floors, func(i, j int) bool { return floors[i].Floor < floors[j].Floor })
	return floors
}

// FormatStats renders the plain-text summary printed by patientctl.
func FormatStats(st *Stats) string {
	var b strings.Builder
	b.WriteString("=== Patient Management Database Statistics ===\n")
	fmt.Fprintf(&b, "Total Patients: %d\n", st.Total)

	b.WriteString("\nPatients by Floor:\n")
	for _, f := range st.Floors {
		fmt.Fprintf(&b, "  Floor %d: %d patients\n", f.Floor, f.Patients)
	}

	b.WriteString("\nPatient Status:\n")
	fmt.Fprintf(&b, "  Critical: %d patients\n", st.Critical)
	fmt.Fprintf(&b, "  Warning: %d patients\n", st.Warning)
	fmt.Fprintf(&b, "  Normal: %d patients\n", st.Normal)

	fmt.Fprintf(&b, "\nUnacknowledged Alerts: %d\n", st.UnacknowledgedAlerts)
	if len(st.RecentAlerts) > 0 {
		b.WriteString("\nRecent Alerts:\n")
		for _, a := range st.RecentAlerts {
			fmt.Fprintf(&b, "  - %s: %s %s (%s)\n",
				a.PatientName, a.AlertType, a.Severity, strconv.FormatFloat(a.Value, 'f', -1, 64))
		}
	}
	return b.String()
}

func (s *Service) Census(ctx context.Context) ([]byte, error) {
	patients, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return ExportXLSX(patients)
}

// SendWardReport renders the PDF ward report and delivers it to the nurse
// station chat.
func (s *Service) SendWardReport(ctx context.Context) error {
	if s.sender == nil {
		return apperrors.NewUnavailableError("ward report delivery is not configured: set TELEGRAM_BOT_TOKEN and NURSE_CHAT_ID")
	}

	st, err := s.Stats(ctx)
	if err != nil {
		return err
	}
	patients, err := s.store.GetAll(ctx)
	if err != nil {
		return err
	}

	s.logger.Info("Generating ward report", zap.Int("patients", st.Total))
	pdf, err := RenderPDF(st, patients, s.fontPath)
	if err != nil {
		s.logger.Error("Failed to render ward report", zap.Error(err))
		return err
	}

	fileName := fmt.Sprintf("ward_report_%s.pdf", st.GeneratedAt.Format("20060102_1504"))
	if err := s.sender.SendDocument(ctx, s.chatID, pdf, fileName, "Ward report"); err != nil {
		s.logger.Error("Failed to send ward report", zap.Int64("chat_id", s.chatID), zap.Error(err))
		return err
	}

	s.logger.Info("Ward report sent", zap.Int64("chat_id", s.chatID), zap.String("file", fileName))
	return nil
}
