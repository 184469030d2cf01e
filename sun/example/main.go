// Package main provides an example of classifying day and night from sunrise/sunset times.
package main

import (
	"fmt"
	"math"
	"time"

	"github.com/devskill-org/nightvision/sun"
	"github.com/sixdouglas/suncalc"
)

func main() {
	observer := sun.Observer{Latitude: 56.9496, Longitude: 24.1052, Elevation: 6} // Riga
	now := time.Now()

	// Get sun position (azimuth and altitude)
	pos := suncalc.GetPosition(now, observer.Latitude, observer.Longitude)
	fmt.Printf("Azimuth: %.2f°, Altitude: %.2f°\n",
		pos.Azimuth*180/math.Pi,
		pos.Altitude*180/math.Pi)

	phase := sun.Classify(observer, now)
	fmt.Println("Next sunrise:", phase.NextSunrise.In(time.Local))
	fmt.Println("Next sunset:", phase.NextSunset.In(time.Local))
	fmt.Println("Night:", phase.Night)
	fmt.Println(sun.Describe(phase, time.Local))
}
