// Package sample generates synthetic Metrica event logs and EPTS metadata
// and can upload them to a running touchline server.
package sample

import "time"

// Config holds the knobs of a synthetic match.
type Config struct {
	Seed            uint64        // PRNG seed; the same seed yields the same match
	Periods         int           // Number of periods, 1 to 4
	EventsPerPeriod int           // Events generated in each period
	FrameRate       int           // Frames per second
	PitchLength     float64       // Metres
	PitchWidth      float64       // Metres
	Date            time.Time     // Match date; only the calendar day is used
	HomeTeamID      string        // e.g. FIFATMA
	AwayTeamID      string        // e.g. FIFATMB
	OutputDir       string        // Where Run writes the two files
	BaseURL         string        // Server to upload to; empty skips the upload
	Timeout         time.Duration // HTTP request timeout
}

// DefaultConfig returns a two-period match of moderate size.
func DefaultConfig() Config {
	return Config{
		Seed:            1,
		Periods:         2,
		EventsPerPeriod: 200,
		FrameRate:       25,
		PitchLength:     105,
		PitchWidth:      68,
		Date:            time.Date(2019, 2, 21, 0, 0, 0, 0, time.UTC),
		HomeTeamID:      "FIFATMA",
		AwayTeamID:      "FIFATMB",
		OutputDir:       ".",
		Timeout:         30 * time.Second,
	}
}

// Ref names a team or player in the event log.
type Ref struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Type is the vendor event type.
type Type struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

// Point is a start or end location. Nil coordinates encode as null.
type Point struct {
	Frame int      `json:"frame"`
	Time  float64  `json:"time"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

// Subtype is a vendor event sub-type.
type Subtype struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

// Event is one entry of the Metrica event log. Subtypes is nil, a Subtype or
// a []Subtype.
type Event struct {
	Index    int   `json:"index"`
	Team     Ref   `json:"team"`
	Type     Type  `json:"type"`
	Subtypes any   `json:"subtypes"`
	Start    Point `json:"start"`
	End      Point `json:"end"`
	Period   int   `json:"period"`
	From     Ref   `json:"from"`
	To       *Ref  `json:"to"`
}

// Player is a squad member of a synthetic match.
type Player struct {
	ID       string
	TeamID   string
	Name     string
	Shirt    int
	Position string
	// Starter players are tracked from the first frame, others from the
	// second period on.
	Starter bool
}

// PeriodFrames bounds a period in frames.
type PeriodFrames struct {
	ID         int
	StartFrame int
	EndFrame   int
}

// Match is a complete synthetic match: the event log and everything the
// metadata document describes.
type Match struct {
	Config    Config
	HomeName  string
	AwayName  string
	HomeScore int
	AwayScore int
	Players   []Player
	Periods   []PeriodFrames
	Events    []Event
}

// Stats summarizes a Run.
type Stats struct {
	EventsGenerated int
	Goals           int
	EventsPath      string
	MetadataPath    string
	MatchID         string
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
