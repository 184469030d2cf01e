// Package elevation provides a small Go client for the Google Maps Elevation API.
//
// The client resolves the ground elevation, in meters, of a single latitude and
// longitude pair. Only the first result of the response is consumed.
//
// Basic Usage:
//
//	client := elevation.NewClient("YourApp/1.0 (your-email@example.com)")
//
//	meters, err := client.Lookup(ctx, 56.9496, 24.1052)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Elevation: %.1f m\n", meters)
//
// An empty results list is reported as ErrNoResults. The client never substitutes a
// default elevation.
//
// For more information about the API, visit: https://developers.google.com/maps/documentation/elevation
package elevation
