package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	"github.com/sangkips/hospitality-pos/internal/domain/pos"
	"github.com/sangkips/hospitality-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// SessionService opens cashier sessions and reconciles them with X and Z reports
type SessionService struct {
	tx                repository.Transactor
	sessionRepo       repository.SessionRepository
	orderRepo         repository.OrderRepository
	paymentRepo       repository.PaymentRepository
	events            EventPublisher
	logger            *zap.Logger
	location          *time.Location
	varianceThreshold decimal.Decimal
	now               func() time.Time
	onClosed          []func(sessionID uuid.UUID)
}

// NewSessionService creates a new session service. Business days are cut in
// location; a variance above varianceThreshold needs a written justification.
func NewSessionService(
	tx repository.Transactor,
	sessionRepo repository.SessionRepository,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	events EventPublisher,
	logger *zap.Logger,
	location *time.Location,
	varianceThreshold decimal.Decimal,
) *SessionService {
	if location == nil {
		location = time.UTC
	}
	return &SessionService{
		tx:                tx,
		sessionRepo:       sessionRepo,
		orderRepo:         orderRepo,
		paymentRepo:       paymentRepo,
		events:            events,
		logger:            logger,
		location:          location,
		varianceThreshold: varianceThreshold,
		now:               time.Now,
	}
}

// OnClosed registers fn to run after a Z report has closed a session
func (s *SessionService) OnClosed(fn func(sessionID uuid.UUID)) {
	s.onClosed = append(s.onClosed, fn)
}

// SessionReport is the non-destructive view of a session's takings
type SessionReport struct {
	Session        *entity.POSSession         `json:"session"`
	TotalSales     decimal.Decimal            `json:"total_sales"`
	OrderCount     int                        `json:"order_count"`
	PaymentSummary map[string]decimal.Decimal `json:"payment_summary"`
	ExpectedCash   decimal.Decimal            `json:"expected_cash"`
}

// Expected returns what the drawer should hold for method
func (r *SessionReport) Expected(method enum.PaymentMethod) decimal.Decimal {
	if method == enum.PaymentMethodCash {
		return r.ExpectedCash
	}
	return r.PaymentSummary[method.String()]
}

// Variance compares the counted amount of one payment method to the expected one
type Variance struct {
	Method     enum.PaymentMethod `json:"method"`
	Expected   decimal.Decimal    `json:"expected"`
	Counted    decimal.Decimal    `json:"counted"`
	Difference decimal.Decimal    `json:"difference"`
}

// Reconciliation is the outcome of comparing physical counts against a report
type Reconciliation struct {
	Variances             []Variance      `json:"variances"`
	TotalVariance         decimal.Decimal `json:"total_variance"`
	HasVariance           bool            `json:"has_variance"`
	RequiresJustification bool            `json:"requires_justification"`
}

// FinalizeInput carries the physical counts for an X or Z report
type FinalizeInput struct {
	EmployeeID    uuid.UUID
	Counts        map[enum.PaymentMethod]decimal.Decimal
	Justification string
	Confirmed     bool
}

// FinalizedReport is a persisted X or Z report
type FinalizedReport struct {
	Report         *SessionReport        `json:"report"`
	Reconciliation *Reconciliation       `json:"reconciliation"`
	Snapshot       *entity.SessionReport `json:"snapshot"`
}

// BusinessDay returns the calendar day of t in the configured location
func (s *SessionService) BusinessDay(t time.Time) time.Time {
	local := t.In(s.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// Open returns today's active session for the employee at the sales point,
// creating it if there is none. The boolean reports whether it was created.
func (s *SessionService) Open(ctx context.Context, employeeID, salesPointID uuid.UUID, openingBalance decimal.Decimal) (*entity.POSSession, bool, error) {
	if openingBalance.IsNegative() {
		return nil, false, ErrInvalidOpeningBalance
	}

	now := s.now()
	day := s.BusinessDay(now)

	existing, err := s.sessionRepo.FindActive(ctx, employeeID, salesPointID, day)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	session := &entity.POSSession{
		SalesPointID:   salesPointID,
		EmployeeID:     employeeID,
		BusinessDay:    day,
		OpenedAt:       now,
		OpeningBalance: openingBalance.Round(2),
		Status:         enum.SessionStatusActive,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, false, fmt.Errorf("open session: %w", err)
		}
		// Another request opened it first.
		existing, err := s.sessionRepo.FindActive(ctx, employeeID, salesPointID, day)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, fmt.Errorf("open session: active session vanished after conflict")
		}
		return existing, false, nil
	}

	s.logger.Info("session opened",
		zap.String("session_id", session.ID.String()),
		zap.String("employee_id", employeeID.String()),
		zap.String("business_day", day.Format("2006-01-02")))
	return session, true, nil
}

// Report totals the paid orders of the session. Held and voided orders are
// not part of it.
func (s *SessionService) Report(ctx context.Context, sessionID uuid.UUID) (*SessionReport, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	orders, err := s.orderRepo.ListPaidBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list paid orders: %w", err)
	}
	payments, err := s.paymentRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	report := &SessionReport{
		Session:        session,
		TotalSales:     decimal.Zero,
		OrderCount:     len(orders),
		PaymentSummary: make(map[string]decimal.Decimal),
	}
	for _, o := range orders {
		report.TotalSales = report.TotalSales.Add(o.TotalAmount)
	}
	for _, p := range payments {
		key := p.Method.String()
		report.PaymentSummary[key] = report.PaymentSummary[key].Add(p.Amount)
	}
	report.ExpectedCash = session.OpeningBalance.Add(report.PaymentSummary[enum.PaymentMethodCash.String()])
	return report, nil
}

// Reconcile compares the counts against the report. Only the methods that
// were counted are checked.
func (s *SessionService) Reconcile(report *SessionReport, counts map[enum.PaymentMethod]decimal.Decimal) *Reconciliation {
	methods := make([]enum.PaymentMethod, 0, len(counts))
	for m := range counts {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })

	rec := &Reconciliation{Variances: []Variance{}, TotalVariance: decimal.Zero}
	for _, m := range methods {
		expected := report.Expected(m)
		counted := counts[m]
		diff := counted.Sub(expected)
		rec.Variances = append(rec.Variances, Variance{
			Method:     m,
			Expected:   expected,
			Counted:    counted,
			Difference: diff,
		})
		if diff.Abs().GreaterThan(pos.Tolerance) {
			rec.HasVariance = true
			rec.TotalVariance = rec.TotalVariance.Add(diff.Abs())
		}
	}
	rec.RequiresJustification = rec.TotalVariance.GreaterThan(s.varianceThreshold)
	return rec
}

// FinalizeX records a checkpoint report; the session stays open
func (s *SessionService) FinalizeX(ctx context.Context, sessionID uuid.UUID, input FinalizeInput) (*FinalizedReport, error) {
	report, rec, err := s.prepare(ctx, sessionID, input)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.snapshot(report, rec, input, enum.ReportTypeX)
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.CreateReport(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("save X report: %w", err)
	}
	return &FinalizedReport{Report: report, Reconciliation: rec, Snapshot: snapshot}, nil
}

// FinalizeZ records the closing report and closes the session. It must be confirmed.
func (s *SessionService) FinalizeZ(ctx context.Context, sessionID uuid.UUID, input FinalizeInput) (*FinalizedReport, error) {
	if !input.Confirmed {
		return nil, pos.ErrConfirmationRequired
	}

	report, rec, err := s.prepare(ctx, sessionID, input)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.snapshot(report, rec, input, enum.ReportTypeZ)
	if err != nil {
		return nil, err
	}

	now := s.now()
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		closed, err := s.sessionRepo.Close(ctx, sessionID, now, report.ExpectedCash)
		if err != nil {
			return fmt.Errorf("close session: %w", err)
		}
		if !closed {
			return ErrSessionClosed
		}
		return s.sessionRepo.CreateReport(ctx, snapshot)
	})
	if err != nil {
		return nil, err
	}

	closing := report.ExpectedCash
	report.Session.Status = enum.SessionStatusClosed
	report.Session.ClosedAt = &now
	report.Session.ClosingBalance = &closing

	publish(ctx, s.events, s.logger, SubjectSessionClosed, SessionEvent{
		SessionID:     sessionID,
		SalesPointID:  report.Session.SalesPointID,
		EmployeeID:    input.EmployeeID,
		TotalSales:    report.TotalSales,
		ExpectedCash:  report.ExpectedCash,
		TotalVariance: rec.TotalVariance,
		OccurredAt:    now,
	})
	for _, fn := range s.onClosed {
		fn(sessionID)
	}
	s.logger.Info("session closed",
		zap.String("session_id", sessionID.String()),
		zap.String("total_sales", report.TotalSales.String()),
		zap.String("variance", rec.TotalVariance.String()))

	return &FinalizedReport{Report: report, Reconciliation: rec, Snapshot: snapshot}, nil
}

func (s *SessionService) prepare(ctx context.Context, sessionID uuid.UUID, input FinalizeInput) (*SessionReport, *Reconciliation, error) {
	report, err := s.Report(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if !report.Session.IsActive() {
		return nil, nil, ErrSessionClosed
	}
	for _, v := range input.Counts {
		if v.IsNegative() {
			return nil, nil, ErrInvalidCount
		}
	}

	rec := s.Reconcile(report, input.Counts)
	if rec.RequiresJustification && strings.TrimSpace(input.Justification) == "" {
		return nil, nil, ErrJustificationRequired
	}
	return report, rec, nil
}

func (s *SessionService) snapshot(report *SessionReport, rec *Reconciliation, input FinalizeInput, reportType enum.ReportType) (*entity.SessionReport, error) {
	summary, err := json.Marshal(report.PaymentSummary)
	if err != nil {
		return nil, fmt.Errorf("encode payment summary: %w", err)
	}
	counts := make(map[string]decimal.Decimal, len(input.Counts))
	for m, v := range input.Counts {
		counts[m.String()] = v
	}
	countsJSON, err := json.Marshal(counts)
	if err != nil {
		return nil, fmt.Errorf("encode counts: %w", err)
	}

	snapshot := &entity.SessionReport{
		SessionID:      report.Session.ID,
		ReportType:     reportType,
		TotalSales:     report.TotalSales,
		OrderCount:     report.OrderCount,
		ExpectedCash:   report.ExpectedCash,
		TotalVariance:  rec.TotalVariance,
		PaymentSummary: datatypes.JSON(summary),
		Counts:         datatypes.JSON(countsJSON),
		EmployeeID:     input.EmployeeID,
	}
	if j := strings.TrimSpace(input.Justification); j != "" {
		snapshot.Justification = &j
	}
	return snapshot, nil
}
