package sun

import (
	"log"
	"time"

	"github.com/devskill-org/nightvision/utils"
)

// Classifier classifies instants for one observer and logs the countdown to
// the next solar event.
type Classifier struct {
	observer Observer
	location *time.Location
	logger   *log.Logger
}

// NewClassifier creates a classifier. A nil location logs clock times in
// time.Local, a nil logger uses log.Default().
func NewClassifier(observer Observer, location *time.Location, logger *log.Logger) *Classifier {
	if logger == nil {
		logger = log.Default()
	}
	if location == nil {
		location = time.Local
	}
	return &Classifier{
		observer: observer,
		location: location,
		logger:   logger,
	}
}

// Observer returns the observer the classifier was built for
func (c *Classifier) Observer() Observer {
	return c.observer
}

// Classify classifies now and logs the time remaining until the next event
func (c *Classifier) Classify(now time.Time) Phase {
	phase := Classify(c.observer, now)
	c.logger.Print(Describe(phase, c.location))
	return phase
}

// Describe renders the countdown line for a phase, in elapsed-duration and
// local-clock form.
func Describe(phase Phase, location *time.Location) string {
	name, at := phase.NextEvent()
	if at.IsZero() {
		state := "day"
		if phase.Night {
			state = "night"
		}
		return "No " + name + " within the next days (polar " + state + ")"
	}
	return "Next " + name + " in " + utils.FormatDuration(at.Sub(phase.At)) +
		" (at " + utils.FormatClock(at, location) + ")"
}
