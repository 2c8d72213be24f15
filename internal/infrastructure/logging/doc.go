// Package logging provides structured logging using uber/zap.
//
// This package offers two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Workshop components log with stable field names so a single order can be
// followed through intake, coverage, solve and delivery:
//   - order_id, material, customer
//   - supplier_id, worker, stage
//
// Example Usage:
//
//	logger, err := logging.New(logging.ConfigFor("info", false))
//	defer logger.Close()
//	logger = logger.Named("workshop")
//	logger.Info("Order delivered", zap.String("order_id", id), zap.Uint32("material", 7))
//	logger.Error("Solve failed", zap.Error(err))
package logging
