package catalog

import (
	"context"
	"fmt"
	"strings"

	appnotification "github.com/iwaqasmaqbool/gms-sub002/internal/application/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/application/transaction"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/catalog"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"go.uber.org/zap"
)

// maxListedMaterials caps the codes written into one alert body
const maxListedMaterials = 5

// StockAlertService tells the production roles which raw materials need reordering
type StockAlertService struct {
	repos     transaction.Repositories
	scope     transaction.Scope
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewStockAlertService creates a new StockAlertService
func NewStockAlertService(repos transaction.Repositories, scope transaction.Scope, publisher shared.EventPublisher, logger *zap.Logger) *StockAlertService {
	if publisher == nil {
		publisher = shared.NopEventPublisher{}
	}
	return &StockAlertService{repos: repos, scope: scope, publisher: publisher, logger: logger}
}

// Name identifies the job in scheduler logs
func (s *StockAlertService) Name() string {
	return "low_stock_alert"
}

// Run sends one low-stock notification per production user when any raw
// material is at or below its reorder level
func (s *StockAlertService) Run(ctx context.Context) error {
	_, err := s.NotifyLowStock(ctx)
	return err
}

// NotifyLowStock returns the number of low materials found; zero sends nothing
func (s *StockAlertService) NotifyLowStock(ctx context.Context) (int, error) {
	materials, err := s.repos.Materials().FindAllList(ctx)
	if err != nil {
		return 0, err
	}
	low := make([]catalog.RawMaterial, 0)
	for i := range materials {
		if materials[i].IsLowStock() {
			low = append(low, materials[i])
		}
	}
	if len(low) == 0 {
		return 0, nil
	}

	var notified []*notification.Notification
	err = s.scope.Execute(ctx, func(tx transaction.Repositories) error {
		notified, err = appnotification.NotifyRoles(ctx, tx.Users(), tx.Notifications(), appnotification.Message{
			Type:  notification.TypeLowStock,
			Title: lowStockTitle(len(low)),
			Body:  lowStockBody(low),
			Link:  "/raw-materials?low_stock=1",
		}, editorRoles...)
		return err
	})
	if err != nil {
		return 0, err
	}

	if err := s.publisher.Publish(ctx, notification.Events(notified)...); err != nil {
		s.logger.Warn("Failed to publish low-stock notifications", zap.Error(err))
	}
	s.logger.Info("Low-stock alert sent",
		zap.Int("materials", len(low)),
		zap.Int("recipients", len(notified)),
	)
	return len(low), nil
}

func lowStockTitle(n int) string {
	if n == 1 {
		return "1 raw material needs reordering"
	}
	return fmt.Sprintf("%d raw materials need reordering", n)
}

func lowStockBody(low []catalog.RawMaterial) string {
	parts := make([]string, 0, maxListedMaterials)
	for i, m := range low {
		if i == maxListedMaterials {
			break
		}
		parts = append(parts, fmt.Sprintf("%s (%s %s left)", m.Code, m.StockQuantity.String(), m.Unit))
	}
	body := strings.Join(parts, ", ")
	if extra := len(low) - len(parts); extra > 0 {
		body += fmt.Sprintf(" and %d more", extra)
	}
	return body
}
