package sample

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
)

// EncodeEvents renders the event log the way Metrica exports it.
func EncodeEvents(m *Match) ([]byte, error) {
	payload := struct {
		Data []Event `json:"data"`
	}{Data: m.Events}
	b, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode events: %w", err)
	}
	return b, nil
}

type xmlDoc struct {
	XMLName  xml.Name    `xml:"main"`
	Metadata xmlMetadata `xml:"Metadata"`
	Specs    []xmlSpec   `xml:"DataFormatSpecifications>DataFormatSpecification"`
}

type xmlMetadata struct {
	GlobalConfig xmlGlobalConfig    `xml:"GlobalConfig"`
	Sessions     []xmlSession       `xml:"Sessions>Session"`
	Teams        []xmlTeam          `xml:"Teams>Team"`
	Players      []xmlPlayer        `xml:"Players>Player"`
	Channels     []xmlPlayerChannel `xml:"Devices>Device>Sensors>Sensor>Channels>PlayerChannels>PlayerChannel"`
}

type xmlGlobalConfig struct {
	FileDate     string     `xml:"FileDate"`
	ProviderName string     `xml:"ProviderName"`
	FrameRate    int        `xml:"FrameRate"`
	Params       []xmlParam `xml:"ProviderGlobalParameters>ProviderParameter"`
}

type xmlParam struct {
	Name  string `xml:"Name"`
	Value string `xml:"Value"`
}

type xmlSession struct {
	ID        string       `xml:"id,attr"`
	Type      string       `xml:"SessionType"`
	FieldSize xmlFieldSize `xml:"MatchParameters>FieldSize"`
	Score     xmlScore     `xml:"Score"`
}

type xmlFieldSize struct {
	Width  float64 `xml:"Width"`
	Height float64 `xml:"Height"`
}

type xmlScore struct {
	LocalTeam     string `xml:"idLocalTeam,attr"`
	VisitingTeam  string `xml:"idVisitingTeam,attr"`
	LocalScore    int    `xml:"LocalTeamScore"`
	VisitingScore int    `xml:"VisitingTeamScore"`
}

type xmlTeam struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"Name"`
}

type xmlPlayer struct {
	ID          string     `xml:"id,attr"`
	TeamID      string     `xml:"teamId,attr"`
	Name        string     `xml:"Name"`
	ShirtNumber int        `xml:"ShirtNumber"`
	Params      []xmlParam `xml:"ProviderPlayerParameters>ProviderParameter"`
}

type xmlPlayerChannel struct {
	ID        string `xml:"id,attr"`
	PlayerID  string `xml:"playerId,attr"`
	ChannelID string `xml:"channelId,attr"`
}

type xmlSpec struct {
	StartFrame int             `xml:"startFrame,attr"`
	EndFrame   int             `xml:"endFrame,attr"`
	Separator  string          `xml:"separator,attr"`
	Refs       []xmlChannelRef `xml:"SplitRegister>SplitRegister>PlayerChannelRef"`
}

type xmlChannelRef struct {
	PlayerChannelID string `xml:"playerChannelId,attr"`
}

var periodParamNames = [...]string{"first_half", "second_half", "first_extra_half", "second_extra_half"}

// EncodeMetadata renders the EPTS XML metadata of m. Starters are tracked
// from the first period, substitutes from the second.
func EncodeMetadata(m *Match) ([]byte, error) {
	cfg := m.Config
	doc := xmlDoc{}
	md := &doc.Metadata

	md.GlobalConfig = xmlGlobalConfig{
		FileDate:     cfg.Date.UTC().Format(time.RFC3339),
		ProviderName: "Metrica Sports",
		FrameRate:    cfg.FrameRate,
	}
	for _, p := range m.Periods {
		name := periodParamNames[p.ID-1]
		md.GlobalConfig.Params = append(md.GlobalConfig.Params,
			xmlParam{Name: name + "_start", Value: strconv.Itoa(p.StartFrame)},
			xmlParam{Name: name + "_end", Value: strconv.Itoa(p.EndFrame)},
		)
	}
	md.Sessions = []xmlSession{{
		ID:        "Synthetic_Game",
		Type:      "Match",
		FieldSize: xmlFieldSize{Width: cfg.PitchLength, Height: cfg.PitchWidth},
		Score: xmlScore{
			LocalTeam:     cfg.HomeTeamID,
			VisitingTeam:  cfg.AwayTeamID,
			LocalScore:    m.HomeScore,
			VisitingScore: m.AwayScore,
		},
	}}
	md.Teams = []xmlTeam{
		{ID: cfg.HomeTeamID, Name: m.HomeName},
		{ID: cfg.AwayTeamID, Name: m.AwayName},
	}

	var starters, all []xmlChannelRef
	for _, p := range m.Players {
		md.Players = append(md.Players, xmlPlayer{
			ID:          p.ID,
			TeamID:      p.TeamID,
			Name:        p.Name,
			ShirtNumber: p.Shirt,
			Params:      []xmlParam{{Name: "position_type", Value: p.Position}},
		})
		for _, axis := range []string{"x", "y"} {
			channelID := fmt.Sprintf("%s_%s", p.ID, axis)
			md.Channels = append(md.Channels, xmlPlayerChannel{ID: channelID, PlayerID: p.ID, ChannelID: axis})
			ref := xmlChannelRef{PlayerChannelID: channelID}
			all = append(all, ref)
			if p.Starter {
				starters = append(starters, ref)
			}
		}
	}

	for i, p := range m.Periods {
		refs := starters
		if i > 0 {
			refs = all
		}
		doc.Specs = append(doc.Specs, xmlSpec{
			StartFrame: p.StartFrame,
			EndFrame:   p.EndFrame,
			Separator:  ":",
			Refs:       refs,
		})
	}

	b, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return append([]byte(xml.Header), b...), nil
}
