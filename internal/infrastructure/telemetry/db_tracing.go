package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InstrumentDB registers the otelgorm plugin so every query becomes a span
// under the request span. Query variables are left out of the spans.
func InstrumentDB(db *gorm.DB, dbName string, logger *zap.Logger) error {
	if err := db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName(dbName),
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return fmt.Errorf("failed to register otelgorm: %w", err)
	}
	logger.Info("Database tracing enabled", zap.String("db_name", dbName))
	return nil
}
