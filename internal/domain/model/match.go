package model

// Match bundles everything parsed from one event file and its metadata.
type Match struct {
	Events    *EventData
	Metadata  *Metadata
	Canonical Events
}

// Summary is a compact per-match digest used by listings and logs.
type Summary struct {
	HomeTeam           string `json:"home_team"`
	AwayTeam           string `json:"away_team"`
	HomeScore          int    `json:"home_score"`
	AwayScore          int    `json:"away_score"`
	Records            int    `json:"records"`
	Shots              int    `json:"shots"`
	Goals              int    `json:"goals"`
	Passes             int    `json:"passes"`
	SuccessfulPasses   int    `json:"successful_passes"`
	Dribbles           int    `json:"dribbles"`
	SuccessfulDribbles int    `json:"successful_dribbles"`
}

// Summarize counts canonical events and their outcomes.
func (m *Match) Summarize() Summary {
	if m == nil {
		return Summary{}
	}
	s := Summary{
		Records:  m.Events.Len(),
		Shots:    len(m.Canonical.Shots),
		Passes:   len(m.Canonical.Passes),
		Dribbles: len(m.Canonical.Dribbles),
	}
	if m.Metadata != nil {
		s.HomeTeam = m.Metadata.HomeTeamName
		s.AwayTeam = m.Metadata.AwayTeamName
		s.HomeScore = m.Metadata.HomeScore
		s.AwayScore = m.Metadata.AwayScore
	}
	for _, shot := range m.Canonical.Shots {
		if shot.ShotOutcome == ShotGoal {
			s.Goals++
		}
	}
	for _, pass := range m.Canonical.Passes {
		if pass.Outcome == PassSuccessful {
			s.SuccessfulPasses++
		}
	}
	for _, dribble := range m.Canonical.Dribbles {
		if dribble.Outcome != nil && *dribble.Outcome {
			s.SuccessfulDribbles++
		}
	}
	return s
}
