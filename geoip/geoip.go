// Package geoip maps IP addresses to approximate locations using an offline
// MaxMind GeoLite2/GeoIP2 City database.
package geoip

import (
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// DefaultDatabasePath is where distribution packages install the GeoLite2 City database
const DefaultDatabasePath = "/usr/share/GeoIP/GeoLite2-City.mmdb"

// ErrNotFound is returned when the database holds no location for an address
var ErrNotFound = errors.New("no location record for address")

// Record is the city-level location of an IP address
type Record struct {
	Latitude  float64
	Longitude float64
	City      string
	Region    string // most specific subdivision
	Country   string
	TimeZone  string
}

// cityReader is the part of *geoip2.Reader used here
type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

// Resolver looks up addresses in a city database
type Resolver struct {
	reader cityReader
	path   string
}

// Open opens the database file at path
func Open(path string) (*Resolver, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geolocation database %s: %w", path, err)
	}
	return &Resolver{reader: reader, path: path}, nil
}

// Close releases the database
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}

// Lookup returns the city-level record for ip
func (r *Resolver) Lookup(ip string) (*Record, error) {
	addr := net.ParseIP(ip)
	if addr == nil {
		return nil, fmt.Errorf("invalid IP address %q", ip)
	}

	city, err := r.reader.City(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s in %s: %w", ip, r.path, err)
	}

	// The reader answers unknown addresses with an empty record rather than an error.
	if city.Location.Latitude == 0 && city.Location.Longitude == 0 && city.Location.AccuracyRadius == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ip)
	}

	record := &Record{
		Latitude:  city.Location.Latitude,
		Longitude: city.Location.Longitude,
		City:      city.City.Names["en"],
		Country:   city.Country.Names["en"],
		TimeZone:  city.Location.TimeZone,
	}
	if n := len(city.Subdivisions); n > 0 {
		record.Region = city.Subdivisions[n-1].Names["en"]
	}

	return record, nil
}
