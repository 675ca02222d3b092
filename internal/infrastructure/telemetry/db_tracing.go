package telemetry

import (
	"fmt"

	"github.com/erp/barcode/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// dbSystems maps GORM dialector names to db.system values
var dbSystems = map[string]string{
	"postgres": "postgresql",
	"sqlite":   "sqlite",
}

// RegisterDBTracing installs the otelgorm plugin so repository lookups show
// up as children of the resolver spans. Bound variables, which include raw
// barcode payloads, stay out of spans unless full SQL logging is configured.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	dialect := db.Dialector.Name()
	system, ok := dbSystems[dialect]
	if !ok {
		system = dialect
	}

	opts := []otelgorm.Option{
		otelgorm.WithAttributes(attribute.String("db.system", system)),
	}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to register otelgorm plugin: %w", err)
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", system),
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
	)
	return nil
}
