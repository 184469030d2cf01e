package geoip

import (
	"encoding/json"
	"errors"
	"net"
	"path/filepath"
	"testing"

	"github.com/oschwald/geoip2-golang"
)

type fakeReader struct {
	records map[string]*geoip2.City
	err     error
	closed  bool
}

func (f *fakeReader) City(ip net.IP) (*geoip2.City, error) {
	if f.err != nil {
		return nil, f.err
	}
	if city, ok := f.records[ip.String()]; ok {
		return city, nil
	}
	return &geoip2.City{}, nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

// londonRecord builds the fixture through JSON so the test does not depend on the
// anonymous struct types of geoip2.City.
func londonRecord(t *testing.T) *geoip2.City {
	t.Helper()
	const fixture = `{
		"City": {"Names": {"en": "London"}},
		"Country": {"Names": {"en": "United Kingdom"}},
		"Location": {"Latitude": 51.5074, "Longitude": -0.1278, "AccuracyRadius": 20, "TimeZone": "Europe/London"},
		"Subdivisions": [
			{"Names": {"en": "England"}},
			{"Names": {"en": "Greater London"}}
		]
	}`
	city := &geoip2.City{}
	if err := json.Unmarshal([]byte(fixture), city); err != nil {
		t.Fatalf("failed to build fixture: %v", err)
	}
	return city
}

func TestLookup(t *testing.T) {
	reader := &fakeReader{records: map[string]*geoip2.City{"203.0.113.7": londonRecord(t)}}
	resolver := &Resolver{reader: reader, path: "test.mmdb"}

	record, err := resolver.Lookup("203.0.113.7")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}

	if record.Latitude != 51.5074 || record.Longitude != -0.1278 {
		t.Errorf("Unexpected coordinates %v,%v", record.Latitude, record.Longitude)
	}
	if record.City != "London" {
		t.Errorf("Expected city London, got %q", record.City)
	}
	if record.Region != "Greater London" {
		t.Errorf("Expected most specific subdivision 'Greater London', got %q", record.Region)
	}
	if record.TimeZone != "Europe/London" {
		t.Errorf("Expected time zone Europe/London, got %q", record.TimeZone)
	}

	if err := resolver.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
	if !reader.closed {
		t.Error("Expected reader to be closed")
	}
}

func TestLookupFailures(t *testing.T) {
	tests := []struct {
		name     string
		ip       string
		reader   *fakeReader
		notFound bool
	}{
		{
			name:   "invalid address",
			ip:     "not-an-ip",
			reader: &fakeReader{},
		},
		{
			name:     "unknown address",
			ip:       "192.0.2.1",
			reader:   &fakeReader{},
			notFound: true,
		},
		{
			name:   "reader error",
			ip:     "192.0.2.1",
			reader: &fakeReader{err: errors.New("corrupt database")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &Resolver{reader: tt.reader, path: "test.mmdb"}
			record, err := resolver.Lookup(tt.ip)
			if err == nil {
				t.Fatalf("Expected error, got record %+v", record)
			}
			if errors.Is(err, ErrNotFound) != tt.notFound {
				t.Errorf("errors.Is(err, ErrNotFound) = %v, expected %v (%v)", !tt.notFound, tt.notFound, err)
			}
		})
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.mmdb"))
	if err == nil {
		t.Fatal("Expected error opening missing database")
	}
}

func TestCloseNilResolver(t *testing.T) {
	var resolver *Resolver
	if err := resolver.Close(); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}
