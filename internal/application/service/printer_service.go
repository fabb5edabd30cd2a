package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
	"github.com/sangkips/hospitality-pos/pkg/printer"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// PrinterService sends print jobs for orders. Slips of one sales point are
// spaced out because they reach the same print driver; tills never wait on
// each other.
type PrinterService struct {
	client  printer.Client
	limit   rate.Limit
	enabled bool
	logger  *zap.Logger

	mu     sync.Mutex
	pacers map[uuid.UUID]*rate.Limiter
}

// NewPrinterService creates a new printer service. A pacing of zero or less disables spacing.
func NewPrinterService(client printer.Client, enabled bool, pacing time.Duration, logger *zap.Logger) *PrinterService {
	limit := rate.Inf
	if pacing > 0 {
		limit = rate.Every(pacing)
	}
	return &PrinterService{
		client:  client,
		limit:   limit,
		enabled: enabled,
		logger:  logger,
		pacers:  make(map[uuid.UUID]*rate.Limiter),
	}
}

// pace blocks until the sales point's driver may take the next slip
func (s *PrinterService) pace(ctx context.Context, salesPointID uuid.UUID) error {
	s.mu.Lock()
	pacer, ok := s.pacers[salesPointID]
	if !ok {
		pacer = rate.NewLimiter(s.limit, 1)
		s.pacers[salesPointID] = pacer
	}
	s.mu.Unlock()
	return pacer.Wait(ctx)
}

// PrinterStatus aggregates the print service introspection endpoints.
type PrinterStatus struct {
	Configured bool            `json:"configured"`
	Connected  bool            `json:"connected"`
	Health     json.RawMessage `json:"health,omitempty"`
	Printers   json.RawMessage `json:"printers,omitempty"`
	Mapping    json.RawMessage `json:"mapping,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// GetStatus never fails; an unreachable service reports connected=false.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	status := &PrinterStatus{Configured: s.enabled}
	if !s.enabled {
		return status
	}

	health, err := s.client.Health(ctx)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Connected = true
	status.Health = health

	if printers, err := s.client.Printers(ctx); err == nil {
		status.Printers = printers
	} else {
		s.logger.Warn("printer list unavailable", zap.Error(err))
	}
	if mapping, err := s.client.Mapping(ctx); err == nil {
		status.Mapping = mapping
	} else {
		s.logger.Warn("printer mapping unavailable", zap.Error(err))
	}
	return status
}

// PrintTemplates prints the whole order once per template, in order.
// Every template is attempted; the failures are joined.
func (s *PrinterService) PrintTemplates(ctx context.Context, order *entity.Order, templates ...string) error {
	var errs []error
	for _, tpl := range templates {
		if err := s.pace(ctx, order.SalesPointID); err != nil {
			return err
		}
		if err := s.client.Print(ctx, order.ID, order.SalesPointID, tpl); err != nil {
			s.logger.Warn("print failed",
				zap.String("order", order.OrderNumber),
				zap.String("template", tpl),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s slip: %w", tpl, err))
		}
	}
	return errors.Join(errs...)
}

// PrintItems prints only the given lines of the order
func (s *PrinterService) PrintItems(ctx context.Context, order *entity.Order, lines []entity.OrderLine, template string) error {
	if len(lines) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ID
	}
	if err := s.pace(ctx, order.SalesPointID); err != nil {
		return err
	}
	if err := s.client.PrintSpecificItems(ctx, order.ID, order.SalesPointID, ids, template); err != nil {
		s.logger.Warn("item print failed", zap.String("order", order.OrderNumber), zap.Error(err))
		return fmt.Errorf("%s slip: %w", template, err)
	}
	return nil
}

// PrintCancellation announces voided lines to the production printers
func (s *PrinterService) PrintCancellation(ctx context.Context, order *entity.Order, lines []entity.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	items := make([]printer.CancelledItem, len(lines))
	for i, l := range lines {
		items[i] = printer.CancelledItem{ID: l.ID, ProductName: l.ProductName, Quantity: l.Quantity}
	}
	if err := s.pace(ctx, order.SalesPointID); err != nil {
		return err
	}
	if err := s.client.PrintCancellation(ctx, order.ID, order.SalesPointID, order.OrderNumber, items); err != nil {
		s.logger.Warn("cancellation print failed", zap.String("order", order.OrderNumber), zap.Error(err))
		return fmt.Errorf("cancellation slip: %w", err)
	}
	return nil
}
