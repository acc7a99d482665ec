package sample

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Vendor type ids used in generated logs.
const (
	typePass      = 1
	typeShot      = 2
	typeRecovery  = 3
	typeBallLost  = 7
	typeCarry     = 10
	typeChallenge = 9
	typeBallOut   = 5
)

const (
	periodSeconds   = 45 * 60
	squadStarters   = 11
	squadSubstitute = 1
	firstPlayerNum  = 3568
)

// Action thresholds on a uniform draw.
const (
	passShare      = 0.55
	carryShare     = 0.75
	shotShare      = 0.82
	ballLostShare  = 0.92
	challengeShare = 0.97
	passSuccess    = 0.8
	carrySuccess   = 0.85
	goalChance     = 0.3
)

var positions = []string{
	"Goalkeeper", "Right Back", "Center Back", "Center Back", "Left Back",
	"Defensive Midfield", "Central Midfield", "Central Midfield",
	"Right Winger", "Left Winger", "Center Forward",
}

type generator struct {
	cfg   Config
	rng   *rand.Rand
	match *Match
	squad map[string][]Player
}

// Generate builds a deterministic synthetic match from cfg. Home attacks +x
// in odd periods. Every pass and carry is followed by an event that decides
// its outcome, and shots carry a GOAL sub-type when they score.
func Generate(cfg Config) (*Match, error) {
	if cfg.Periods < 1 || cfg.Periods > 4 {
		return nil, fmt.Errorf("periods must be between 1 and 4, got %d", cfg.Periods)
	}
	if cfg.EventsPerPeriod < 1 {
		return nil, fmt.Errorf("events per period must be positive, got %d", cfg.EventsPerPeriod)
	}
	if cfg.FrameRate <= 0 {
		return nil, fmt.Errorf("frame rate must be positive, got %d", cfg.FrameRate)
	}
	if cfg.HomeTeamID == "" || cfg.AwayTeamID == "" || cfg.HomeTeamID == cfg.AwayTeamID {
		return nil, fmt.Errorf("team ids must be set and distinct")
	}

	g := &generator{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		match: &Match{
			Config:   cfg,
			HomeName: "Team A",
			AwayName: "Team B",
		},
		squad: map[string][]Player{},
	}
	g.buildSquads()
	for p := 1; p <= cfg.Periods; p++ {
		g.playPeriod(p)
	}
	return g.match, nil
}

func (g *generator) buildSquads() {
	num := firstPlayerNum
	for _, teamID := range []string{g.cfg.HomeTeamID, g.cfg.AwayTeamID} {
		for i := 0; i < squadStarters+squadSubstitute; i++ {
			p := Player{
				ID:      fmt.Sprintf("P%d", num),
				TeamID:  teamID,
				Name:    fmt.Sprintf("Player%d", num-firstPlayerNum+1),
				Shirt:   i + 1,
				Starter: i < squadStarters,
			}
			if i < len(positions) {
				p.Position = positions[i]
			} else {
				p.Position = "Substitute"
			}
			g.match.Players = append(g.match.Players, p)
			if p.Starter {
				g.squad[teamID] = append(g.squad[teamID], p)
			}
			num++
		}
	}
}

func (g *generator) playPeriod(period int) {
	fps := g.cfg.FrameRate
	periodFrames := periodSeconds * fps
	startFrame := (period-1)*periodFrames + 1
	g.match.Periods = append(g.match.Periods, PeriodFrames{
		ID:         period,
		StartFrame: startFrame,
		EndFrame:   startFrame + periodFrames - 1,
	})

	team := g.cfg.HomeTeamID
	if period%2 == 0 {
		team = g.cfg.AwayTeamID
	}
	// Leaves room for the extra recoveries so every frame stays inside the period.
	step := float64(periodSeconds) / (2.5 * float64(g.cfg.EventsPerPeriod+1))
	elapsed := 0.0

	for i := 0; i < g.cfg.EventsPerPeriod; i++ {
		elapsed += step * (0.5 + g.rng.Float64())
		ev := Event{
			Index:  len(g.match.Events) + 1,
			Period: period,
			Team:   g.teamRef(team),
			From:   g.randomPlayer(team),
		}
		ev.Start = g.point(period, elapsed, startFrame)
		ev.End = ev.Start

		switch draw := g.rng.Float64(); {
		case draw < passShare:
			ev.Type = Type{Name: "PASS", ID: typePass}
			to := g.randomPlayer(team)
			ev.To = &to
			ev.End = g.point(period, elapsed+1, startFrame)
			if g.rng.Float64() >= passSuccess {
				team = g.other(team)
			}
		case draw < carryShare:
			ev.Type = Type{Name: "CARRY", ID: typeCarry}
			ev.End = g.point(period, elapsed+1, startFrame)
			if g.rng.Float64() >= carrySuccess {
				team = g.other(team)
			}
		case draw < shotShare:
			ev.Type = Type{Name: "SHOT", ID: typeShot}
			g.shoot(&ev, period, team)
			team = g.other(team)
		case draw < ballLostShare:
			ev.Type = Type{Name: "BALL LOST", ID: typeBallLost}
			ev.Subtypes = Subtype{Name: "INTERCEPTION", ID: 1}
			team = g.other(team)
		case draw < challengeShare:
			ev.Type = Type{Name: "CHALLENGE", ID: typeChallenge}
			ev.Subtypes = []Subtype{{Name: "GROUND", ID: 1}, {Name: "WON", ID: 2}}
		default:
			ev.Type = Type{Name: "BALL OUT", ID: typeBallOut}
			ev.End = Point{Frame: ev.Start.Frame, Time: ev.Start.Time}
			team = g.other(team)
		}
		g.match.Events = append(g.match.Events, ev)

		// A change of possession starts with a recovery by the new team.
		if ev.Team.ID != team && ev.Type.ID != typeBallOut {
			elapsed += step / 2
			rec := Event{
				Index:  len(g.match.Events) + 1,
				Period: period,
				Team:   g.teamRef(team),
				From:   g.randomPlayer(team),
				Type:   Type{Name: "RECOVERY", ID: typeRecovery},
			}
			rec.Start = g.point(period, elapsed, startFrame)
			rec.End = rec.Start
			g.match.Events = append(g.match.Events, rec)
		}
	}
}

// shoot places the shot near the goal the team attacks in this period and
// decides whether it scores.
func (g *generator) shoot(ev *Event, period int, team string) {
	attacksPositive := (team == g.cfg.HomeTeamID) == (period%2 == 1)
	x := 0.85 + 0.1*g.rng.Float64()
	endX := 1.0
	if !attacksPositive {
		x, endX = 1-x, 0
	}
	y := 0.35 + 0.3*g.rng.Float64()
	ev.Start.X, ev.Start.Y = &x, &y
	endY := 0.5
	ev.End = Point{Frame: ev.Start.Frame + g.cfg.FrameRate, Time: ev.Start.Time + 1, X: &endX, Y: &endY}

	subtypes := []Subtype{{Name: "ON TARGET", ID: 1}}
	if g.rng.Float64() < goalChance {
		subtypes = append(subtypes, Subtype{Name: "GOAL", ID: 2})
		if team == g.cfg.HomeTeamID {
			g.match.HomeScore++
		} else {
			g.match.AwayScore++
		}
	} else {
		subtypes[0] = Subtype{Name: "OFF TARGET", ID: 3}
	}
	ev.Subtypes = subtypes
}

func (g *generator) point(period int, elapsed float64, startFrame int) Point {
	x, y := g.rng.Float64(), g.rng.Float64()
	return Point{
		Frame: startFrame + int(elapsed*float64(g.cfg.FrameRate)),
		Time:  float64((period-1)*periodSeconds) + elapsed,
		X:     &x,
		Y:     &y,
	}
}

func (g *generator) teamRef(teamID string) Ref {
	name := g.match.HomeName
	if teamID == g.cfg.AwayTeamID {
		name = g.match.AwayName
	}
	return Ref{Name: name, ID: teamID}
}

func (g *generator) randomPlayer(teamID string) Ref {
	squad := g.squad[teamID]
	p := squad[g.rng.IntN(len(squad))]
	return Ref{Name: p.Name, ID: p.ID}
}

func (g *generator) other(teamID string) string {
	if teamID == g.cfg.HomeTeamID {
		return g.cfg.AwayTeamID
	}
	return g.cfg.HomeTeamID
}

// Goals counts events with a GOAL sub-type.
func (m *Match) Goals() int {
	n := 0
	for _, ev := range m.Events {
		if list, ok := ev.Subtypes.([]Subtype); ok {
			for _, st := range list {
				if strings.EqualFold(st.Name, "GOAL") {
					n++
				}
			}
		}
	}
	return n
}
