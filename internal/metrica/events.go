package metrica

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bytedance/sonic"

	"github.com/okian/touchline/internal/domain/dedupe"
	"github.com/okian/touchline/internal/domain/model"
	"github.com/okian/touchline/pkg/metrics"
)

// Raw payload shapes. Pointers tell absent or null keys apart from zero
// values; keys records which members were present, explicit nulls included.
type rawPayload struct {
	Data *[]rawEvent `json:"data"`
}

type rawEvent struct {
	Index    *int      `json:"index"`
	Team     *rawRef   `json:"team"`
	Type     *rawType  `json:"type"`
	Subtypes subtypes  `json:"subtypes"`
	Start    *rawPoint `json:"start"`
	End      *rawPoint `json:"end"`
	Period   *int      `json:"period"`
	From     *rawRef   `json:"from"`
	To       *rawRef   `json:"to"`

	keys keySet
}

func (e *rawEvent) UnmarshalJSON(b []byte) error {
	type plain rawEvent
	var p plain
	if err := sonic.Unmarshal(b, &p); err != nil {
		return err
	}
	keys, err := objectKeys(b)
	if err != nil {
		return err
	}
	*e = rawEvent(p)
	e.keys = keys
	return nil
}

type rawRef struct {
	Name *string `json:"name"`
	ID   *string `json:"id"`
}

type rawType struct {
	Name *string `json:"name"`
	ID   *int    `json:"id"`
}

type rawPoint struct {
	Frame *int     `json:"frame"`
	Time  *float64 `json:"time"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`

	keys keySet
}

func (pt *rawPoint) UnmarshalJSON(b []byte) error {
	type plain rawPoint
	var p plain
	if err := sonic.Unmarshal(b, &p); err != nil {
		return err
	}
	keys, err := objectKeys(b)
	if err != nil {
		return err
	}
	*pt = rawPoint(p)
	pt.keys = keys
	return nil
}

type keySet map[string]struct{}

func (k keySet) has(key string) bool {
	_, ok := k[key]
	return ok
}

func objectKeys(b []byte) (keySet, error) {
	var members map[string]json.RawMessage
	if err := sonic.Unmarshal(b, &members); err != nil {
		return nil, err
	}
	keys := make(keySet, len(members))
	for k := range members {
		keys[k] = struct{}{}
	}
	return keys, nil
}

type rawSubtype struct {
	Name string `json:"name"`
}

// subtypes accepts null, a single sub-type object or a list of them and
// keeps only the names.
type subtypes []string

func (s *subtypes) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*s = nil
		return nil
	case b[0] == '[':
		var list []rawSubtype
		if err := sonic.Unmarshal(b, &list); err != nil {
			return err
		}
		names := make(subtypes, 0, len(list))
		for _, st := range list {
			names = append(names, st.Name)
		}
		*s = names
		return nil
	default:
		var one rawSubtype
		if err := sonic.Unmarshal(b, &one); err != nil {
			return err
		}
		*s = subtypes{one.Name}
		return nil
	}
}

// unwrapText returns the text content of the payload read as an HTML
// document, which unescapes entities around the JSON body.
func unwrapText(raw []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Text()), nil
}

// ExtractEvents decodes a Metrica JSON event log into the event table,
// applying the canonical mapping and outcome inference. Coordinates are left
// in the vendor's [0, 1] range.
func ExtractEvents(raw []byte) (*model.EventData, error) {
	text, err := unwrapText(raw)
	if err != nil {
		return nil, wrapMark(err, ErrMalformedRecord, "read event payload")
	}

	var payload rawPayload
	if err := sonic.UnmarshalString(text, &payload); err != nil {
		return nil, wrapMark(err, ErrMalformedRecord, "decode event payload")
	}
	if payload.Data == nil {
		return nil, malformedRecord("event payload has no %q key", "data")
	}

	events := *payload.Data
	records := make([]model.EventRecord, len(events))
	seen := dedupe.New[int]()
	var resolver outcomeResolver

	for i := range events {
		if err := fillRecord(&records[i], &events[i], i); err != nil {
			return nil, err
		}
		if seen.SeenAndRecord(records[i].EventID) {
			return nil, malformedRecord("event %d: duplicate index %d", i, records[i].EventID)
		}
		resolver.observe(&records[i])
		metrics.RecordParsed(records[i].VendorEvent)
	}

	return model.NewEventData(records), nil
}

func fillRecord(rec *model.EventRecord, ev *rawEvent, pos int) error {
	if err := checkRequired(ev, pos); err != nil {
		return err
	}

	label := strings.ToLower(*ev.Type.Name)
	t := *ev.Start.Time

	*rec = model.EventRecord{
		EventID:     *ev.Index,
		TypeID:      *ev.Type.ID,
		Category:    CanonicalCategory(label),
		PeriodID:    *ev.Period,
		Minutes:     int(math.Floor(t / 60)),
		Seconds:     floorMod(t, 60),
		PlayerID:    playerNumber(*ev.From.ID),
		PlayerName:  *ev.From.Name,
		TeamID:      *ev.Team.ID,
		Outcome:     model.MissingInt,
		StartX:      floatOrNaN(ev.Start.X),
		StartY:      floatOrNaN(ev.Start.Y),
		ToPlayerID:  model.MissingInt,
		EndX:        floatOrNaN(ev.End.X),
		EndY:        floatOrNaN(ev.End.Y),
		Frame:       *ev.Start.Frame,
		VendorEvent: label,
	}

	if label == labelShot {
		rec.Outcome = shotOutcome(ev.Subtypes)
	}

	if ev.To != nil {
		if ev.To.ID == nil {
			return malformedRecord("event %d: missing key %q", pos, "to.id")
		}
		rec.ToPlayerID = playerNumber(*ev.To.ID)
		rec.ToPlayerName = ev.To.Name
	}
	return nil
}

func checkRequired(ev *rawEvent, pos int) error {
	missing := ""
	switch {
	case ev.Index == nil:
		missing = "index"
	case ev.Type == nil:
		missing = "type"
	case ev.Type.ID == nil:
		missing = "type.id"
	case ev.Type.Name == nil:
		missing = "type.name"
	case ev.Period == nil:
		missing = "period"
	case ev.Start == nil:
		missing = "start"
	case ev.Start.Time == nil:
		missing = "start.time"
	case ev.Start.Frame == nil:
		missing = "start.frame"
	case !ev.Start.keys.has("x"):
		missing = "start.x"
	case !ev.Start.keys.has("y"):
		missing = "start.y"
	case ev.From == nil:
		missing = "from"
	case ev.From.ID == nil:
		missing = "from.id"
	case ev.From.Name == nil:
		missing = "from.name"
	case ev.Team == nil:
		missing = "team"
	case ev.Team.ID == nil:
		missing = "team.id"
	case ev.End == nil:
		missing = "end"
	case !ev.End.keys.has("x"):
		missing = "end.x"
	case !ev.End.keys.has("y"):
		missing = "end.y"
	case !ev.keys.has("to"):
		missing = "to"
	case strings.ToLower(*ev.Type.Name) == labelShot && !ev.keys.has("subtypes"):
		missing = "subtypes"
	}
	if missing != "" {
		return malformedRecord("event %d: missing key %q", pos, missing)
	}
	return nil
}

// playerNumber strips the one-character prefix of ids such as "P3578". Ids
// whose remainder is not an integer give MissingInt.
func playerNumber(id string) int {
	if len(id) < 2 {
		return model.MissingInt
	}
	n, err := strconv.Atoi(strings.TrimSpace(id[1:]))
	if err != nil {
		return model.MissingInt
	}
	return n
}

func floatOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// floorMod matches floored division, so the result has the sign of m.
func floorMod(v, m float64) float64 {
	r := math.Mod(v, m)
	if r != 0 && (r < 0) != (m < 0) {
		r += m
	}
	return r
}
