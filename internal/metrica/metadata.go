package metrica

import (
	"bytes"
	"encoding/xml"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/touchline/internal/domain/model"
)

// periodParams maps provider parameter names to period ids and which end of
// the period they bound.
var periodParams = map[string]struct {
	id    int
	start bool
}{
	"first_half_start":        {1, true},
	"first_half_end":          {1, false},
	"second_half_start":       {2, true},
	"second_half_end":         {2, false},
	"first_extra_half_start":  {3, true},
	"first_extra_half_end":    {3, false},
	"second_extra_half_start": {4, true},
	"second_extra_half_end":   {4, false},
}

const positionParam = "position_type"

// eptsScan accumulates what a single token walk over the metadata finds.
type eptsScan struct {
	width, height string
	frameRate     string
	fileDate      string
	sessionStart  string
	homeID        string
	awayID        string
	homeScore     string
	awayScore     string
	teamNames     map[string]string
	periodStart   map[int]string
	periodEnd     map[int]string
	players       []*scannedPlayer
	channels      map[string]string // channel id -> player id
	specs         []*formatSpec
}

type scannedPlayer struct {
	id, teamID, name, shirt, position string
}

type formatSpec struct {
	startFrame, endFrame string
	channelRefs          []string
}

// ParseMetadata reads Metrica EPTS XML metadata: pitch size, frame rate,
// teams, periods, players and the tracking channels that bound each
// player's frames.
func ParseMetadata(raw []byte) (*model.Metadata, error) {
	scan, err := scanMetadata(raw)
	if err != nil {
		return nil, wrapMark(err, ErrMalformedMetadata, "read metadata xml")
	}

	md := &model.Metadata{
		HomeTeamID:   scan.homeID,
		AwayTeamID:   scan.awayID,
		HomeTeamName: scan.teamNames[scan.homeID],
		AwayTeamName: scan.teamNames[scan.awayID],
		HomeScore:    intOrMissing(scan.homeScore),
		AwayScore:    intOrMissing(scan.awayScore),
	}

	if md.PitchDimensions[0], err = parseFloat(scan.width); err != nil {
		return nil, wrapMark(err, ErrMalformedMetadata, "pitch width")
	}
	if md.PitchDimensions[1], err = parseFloat(scan.height); err != nil {
		return nil, wrapMark(err, ErrMalformedMetadata, "pitch height")
	}
	frameRate, err := parseFloat(scan.frameRate)
	if err != nil {
		return nil, wrapMark(err, ErrMalformedMetadata, "frame rate")
	}
	md.FrameRate = int(frameRate)

	rawDate := scan.sessionStart
	if rawDate == "" {
		rawDate = scan.fileDate
	}
	date, err := parseMatchDate(rawDate)
	if err != nil {
		return nil, err
	}
	md.Periods = buildPeriods(scan, date, md.FrameRate)

	frames := playerFrames(scan)
	for _, sp := range scan.players {
		p := buildPlayer(sp, frames)
		switch sp.teamID {
		case md.HomeTeamID:
			md.HomePlayers = append(md.HomePlayers, p)
		case md.AwayTeamID:
			md.AwayPlayers = append(md.AwayPlayers, p)
		}
	}

	if err := md.Validate(); err != nil {
		return nil, wrapMark(err, ErrMalformedMetadata, "validate metadata")
	}
	return md, nil
}

// scanMetadata walks every element once, keeping the stack of open element
// names so a tag is interpreted by where it appears.
func scanMetadata(raw []byte) (*eptsScan, error) {
	s := &eptsScan{
		teamNames:   map[string]string{},
		periodStart: map[int]string{},
		periodEnd:   map[int]string{},
		channels:    map[string]string{},
	}

	dec := xml.NewDecoder(bytes.NewReader(raw))
	var (
		stack     []string
		text      strings.Builder
		teamID    string
		player    *scannedPlayer
		spec      *formatSpec
		paramName string
		paramVal  string
	)

	parent := func(n int) string {
		if len(stack) > n {
			return stack[len(stack)-1-n]
		}
		return ""
	}
	inside := func(name string) bool {
		for _, el := range stack {
			if el == name {
				return true
			}
		}
		return false
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			text.Reset()
			switch name {
			case "Score":
				s.homeID = attr(t, "idLocalTeam")
				s.awayID = attr(t, "idVisitingTeam")
			case "Team":
				teamID = attr(t, "id")
			case "Player":
				if parent(0) == "Players" {
					player = &scannedPlayer{id: attr(t, "id"), teamID: attr(t, "teamId")}
					s.players = append(s.players, player)
				}
			case "ProviderParameter":
				paramName, paramVal = "", ""
			case "PlayerChannel":
				s.channels[attr(t, "id")] = attr(t, "playerId")
			case "DataFormatSpecification":
				spec = &formatSpec{startFrame: attr(t, "startFrame"), endFrame: attr(t, "endFrame")}
				s.specs = append(s.specs, spec)
			case "PlayerChannelRef":
				if spec != nil {
					spec.channelRefs = append(spec.channelRefs, attr(t, "playerChannelId"))
				}
			}
			stack = append(stack, name)

		case xml.CharData:
			text.Write(t)

		case xml.EndElement:
			name := t.Name.Local
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			value := strings.TrimSpace(text.String())
			text.Reset()

			switch name {
			case "Width":
				if parent(0) == "FieldSize" && s.width == "" {
					s.width = value
				}
			case "Height":
				if parent(0) == "FieldSize" && s.height == "" {
					s.height = value
				}
			case "FrameRate":
				if s.frameRate == "" {
					s.frameRate = value
				}
			case "FileDate":
				s.fileDate = value
			case "Start":
				if parent(0) == "Session" {
					s.sessionStart = value
				}
			case "LocalTeamScore":
				s.homeScore = value
			case "VisitingTeamScore":
				s.awayScore = value
			case "Name":
				switch parent(0) {
				case "Team":
					s.teamNames[teamID] = value
				case "Player":
					if player != nil {
						player.name = value
					}
				case "ProviderParameter":
					paramName = value
				}
			case "Value":
				if parent(0) == "ProviderParameter" {
					paramVal = value
				}
			case "ShirtNumber":
				if player != nil {
					player.shirt = value
				}
			case "ProviderParameter":
				applyParam(s, player, inside("Player"), paramName, paramVal)
			case "Player":
				player = nil
			case "DataFormatSpecification":
				spec = nil
			}
		}
	}
	return s, nil
}

func applyParam(s *eptsScan, player *scannedPlayer, inPlayer bool, name, value string) {
	if inPlayer {
		if player != nil && name == positionParam {
			player.position = value
		}
		return
	}
	if p, ok := periodParams[name]; ok {
		if p.start {
			s.periodStart[p.id] = value
		} else {
			s.periodEnd[p.id] = value
		}
	}
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// parseMatchDate keeps only the calendar date of a timestamp such as
// "2019-02-21T03:30:07.000Z".
func parseMatchDate(v string) (time.Time, error) {
	if len(v) < len(time.DateOnly) {
		return time.Time{}, malformedMetadata("metadata has no match date")
	}
	d, err := time.Parse(time.DateOnly, v[:len(time.DateOnly)])
	if err != nil {
		return time.Time{}, wrapMark(err, ErrMalformedMetadata, "match date %q", v)
	}
	return d.UTC(), nil
}

func buildPeriods(s *eptsScan, date time.Time, frameRate int) []model.Period {
	periods := make([]model.Period, 0, len(s.periodStart))
	for id := 1; id <= 5; id++ {
		rawStart, ok := s.periodStart[id]
		if !ok {
			continue
		}
		start := intOrMissing(rawStart)
		if start == model.MissingInt {
			continue
		}
		p := model.Period{
			ID:            id,
			StartFrame:    start,
			EndFrame:      intOrMissing(s.periodEnd[id]),
			StartDatetime: frameTime(date, start, frameRate),
		}
		if p.EndFrame != model.MissingInt {
			p.EndDatetime = frameTime(date, p.EndFrame, frameRate)
		}
		periods = append(periods, p)
	}
	return periods
}

func frameTime(date time.Time, frame, frameRate int) time.Time {
	if frameRate <= 0 {
		return date
	}
	return date.Add(frameOffset(frame, frameRate))
}

type frameSpan struct{ start, end int }

// playerFrames takes, per player, the earliest start and latest end frame of
// the format specifications that reference one of the player's channels.
func playerFrames(s *eptsScan) map[string]frameSpan {
	out := map[string]frameSpan{}
	for _, spec := range s.specs {
		start, end := intOrMissing(spec.startFrame), intOrMissing(spec.endFrame)
		for _, ref := range spec.channelRefs {
			playerID, ok := s.channels[ref]
			if !ok {
				continue
			}
			span, seen := out[playerID]
			if !seen {
				out[playerID] = frameSpan{start: start, end: end}
				continue
			}
			if start != model.MissingInt && (span.start == model.MissingInt || start < span.start) {
				span.start = start
			}
			if end > span.end {
				span.end = end
			}
			out[playerID] = span
		}
	}
	return out
}

func buildPlayer(sp *scannedPlayer, frames map[string]frameSpan) model.Player {
	p := model.Player{
		ID:         playerNumber(sp.id),
		FullName:   sp.name,
		ShirtNum:   intOrMissing(sp.shirt),
		Position:   sp.position,
		StartFrame: model.MissingInt,
		EndFrame:   model.MissingInt,
	}
	if span, ok := frames[sp.id]; ok {
		p.StartFrame, p.EndFrame = span.start, span.end
	}
	return p
}

func parseFloat(v string) (float64, error) {
	if v == "" {
		return 0, malformedMetadata("value is empty")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return f, nil
}

// intOrMissing parses integers written either as "12" or "12.0".
func intOrMissing(v string) int {
	if v == "" {
		return model.MissingInt
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return model.MissingInt
	}
	return int(f)
}
