// Package router sets up HTTP routes for the report server.
package router

import (
	"github.com/go-chi/chi/v5"

	reportsFeature "github.com/leapstack-labs/datareport/internal/ui/features/reports"
	"github.com/leapstack-labs/datareport/internal/ui/resources"
)

// SetupRoutes configures all routes for the report server.
func SetupRoutes(router chi.Router, reports *reportsFeature.Handlers) error {
	router.Handle("/static/*", resources.Handler())

	if err := reportsFeature.SetupRoutes(router, reports); err != nil {
		return err
	}
	return nil
}
