package goldprice

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
}

// NewFeature creates the gold price feature. The updater may be nil when the
// feed is disabled.
func NewFeature(service *Service, updater *Updater, logger *zap.Logger) *Feature {
	return &Feature{handler: NewHandler(service, updater, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "goldprice"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
