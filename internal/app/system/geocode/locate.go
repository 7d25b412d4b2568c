// internal/app/system/geocode/locate.go
package geocode

import (
	"context"
	"strings"

	"github.com/dalemusser/sfahub/internal/domain/models"
)

// Locate fills c's coordinates when both are missing or partial, c has an
// address and apiKey is set. It reports whether c changed. A failed lookup
// leaves c untouched and returns the error for the caller to log.
func Locate(ctx context.Context, g Geocoder, apiKey string, c *models.Customer) (bool, error) {
	if g == nil || apiKey == "" || c.HasCoordinates() {
		return false, nil
	}
	addr := strings.TrimSpace(c.GeocodeAddress())
	if addr == "" {
		return false, nil
	}
	lat, lng, err := g.Geocode(ctx, addr, apiKey)
	if err != nil {
		return false, err
	}
	c.Latitude, c.Longitude = &lat, &lng
	return true, nil
}
