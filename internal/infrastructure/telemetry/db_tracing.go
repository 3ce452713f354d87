package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// InstrumentGorm adds a span per query. Query variables stay out of spans
// unless withVariables is set.
func InstrumentGorm(db *gorm.DB, dbName string, withVariables bool) error {
	opts := []otelgorm.Option{otelgorm.WithDBName(dbName)}
	if !withVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	return db.Use(otelgorm.NewPlugin(opts...))
}
