// Package locate resolves the observer position at startup: public IP, then
// geolocation, then ground elevation.
package locate

import (
	"context"
	"fmt"
	"strings"

	"github.com/devskill-org/nightvision/geoip"
	"github.com/devskill-org/nightvision/sun"
)

// IPResolver returns the public address of this host
type IPResolver interface {
	Lookup(ctx context.Context) (string, error)
}

// GeoResolver maps an address to a location record
type GeoResolver interface {
	Lookup(ip string) (*geoip.Record, error)
}

// ElevationResolver returns the ground elevation in meters
type ElevationResolver interface {
	Lookup(ctx context.Context, lat, lng float64) (float64, error)
}

// Location is the resolved identity of the operator's site
type Location struct {
	IP       string       `json:"ip"`
	City     string       `json:"city"`
	Region   string       `json:"region"`
	Country  string       `json:"country"`
	TimeZone string       `json:"time_zone"`
	Observer sun.Observer `json:"observer"`
}

// Locator runs the resolver chain
type Locator struct {
	IP        IPResolver
	Geo       GeoResolver
	Elevation ElevationResolver
}

// Resolve runs IP → geo → elevation once. Any failure aborts.
func (l *Locator) Resolve(ctx context.Context) (*Location, error) {
	ip, err := l.IP.Lookup(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve public IP: %w", err)
	}

	record, err := l.Geo.Lookup(ip)
	if err != nil {
		return nil, fmt.Errorf("failed to geolocate %s: %w", ip, err)
	}

	meters, err := l.Elevation.Lookup(ctx, record.Latitude, record.Longitude)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve elevation at %f,%f: %w", record.Latitude, record.Longitude, err)
	}

	location := &Location{
		IP:       ip,
		City:     record.City,
		Region:   record.Region,
		Country:  record.Country,
		TimeZone: record.TimeZone,
		Observer: sun.Observer{
			Latitude:  record.Latitude,
			Longitude: record.Longitude,
			Elevation: meters,
		},
	}
	if err := location.Observer.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observer position: %w", err)
	}

	return location, nil
}

// Place returns "City, Region" leaving out empty parts
func (l *Location) Place() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{l.City, l.Region} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "unknown place"
	}
	return strings.Join(parts, ", ")
}

// Banner returns the startup banner lines
func (l *Location) Banner() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Public IP: %s\n", l.IP)
	fmt.Fprintf(&b, "  Location: %s\n", l.Place())
	fmt.Fprintf(&b, "  Coordinates: %.4f, %.4f\n", l.Observer.Latitude, l.Observer.Longitude)
	fmt.Fprintf(&b, "  Elevation: %.1f m\n", l.Observer.Elevation)
	return b.String()
}
