package metrica_test

import (
	"strings"

	"github.com/bytedance/sonic"
)

const (
	teamA = "FIFATMA"
	teamB = "FIFATMB"
)

type eventOpt func(map[string]any)

func withSubtypes(v any) eventOpt {
	return func(m map[string]any) { m["subtypes"] = v }
}

func withTo(id, name string) eventOpt {
	return func(m map[string]any) { m["to"] = map[string]any{"id": id, "name": name} }
}

func withStart(x, y any) eventOpt {
	return func(m map[string]any) {
		start := m["start"].(map[string]any)
		start["x"], start["y"] = x, y
	}
}

func withPeriod(p int) eventOpt {
	return func(m map[string]any) { m["period"] = p }
}

func withTime(seconds float64, frame int) eventOpt {
	return func(m map[string]any) {
		start := m["start"].(map[string]any)
		start["time"], start["frame"] = seconds, frame
	}
}

func without(key string) eventOpt {
	return func(m map[string]any) {
		if i := strings.IndexByte(key, '.'); i > 0 {
			delete(m[key[:i]].(map[string]any), key[i+1:])
			return
		}
		delete(m, key)
	}
}

func set(key string, v any) eventOpt {
	return func(m map[string]any) {
		if i := strings.IndexByte(key, '.'); i > 0 {
			m[key[:i]].(map[string]any)[key[i+1:]] = v
			return
		}
		m[key] = v
	}
}

// event builds one vendor record; label is the upper-case Metrica type name.
func event(index int, label, team string, opts ...eventOpt) map[string]any {
	m := map[string]any{
		"index":    index,
		"team":     map[string]any{"name": team, "id": team},
		"type":     map[string]any{"name": label, "id": 1},
		"subtypes": nil,
		"start":    map[string]any{"frame": index * 25, "time": float64(index), "x": 0.5, "y": 0.5},
		"end":      map[string]any{"frame": index*25 + 10, "time": float64(index) + 0.4, "x": 0.75, "y": 0.25},
		"period":   1,
		"from":     map[string]any{"name": "Player1", "id": "P3578"},
		"to":       nil,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func payload(events ...map[string]any) []byte {
	b, err := sonic.Marshal(map[string]any{"data": events})
	if err != nil {
		panic(err)
	}
	return b
}

const metadataXML = `<?xml version="1.0" encoding="UTF-8"?>
<main>
  <Metadata>
    <GlobalConfig>
      <FileDate>2019-02-21T03:30:07.000Z</FileDate>
      <ProviderName>Metrica Sports</ProviderName>
      <FrameRate>25</FrameRate>
      <ProviderGlobalParameters>
        <ProviderParameter><Name>first_half_start</Name><Value>1</Value></ProviderParameter>
        <ProviderParameter><Name>first_half_end</Name><Value>67500.0</Value></ProviderParameter>
        <ProviderParameter><Name>second_half_start</Name><Value>67501</Value></ProviderParameter>
        <ProviderParameter><Name>second_half_end</Name><Value>135000</Value></ProviderParameter>
        <ProviderParameter><Name>first_extra_half_start</Name><Value></Value></ProviderParameter>
      </ProviderGlobalParameters>
    </GlobalConfig>
    <Sessions>
      <Session id="Sample_Game">
        <MatchParameters>
          <FieldSize><Width>100</Width><Height>50</Height></FieldSize>
        </MatchParameters>
        <Score idLocalTeam="FIFATMA" idVisitingTeam="FIFATMB">
          <LocalTeamScore>0</LocalTeamScore>
          <VisitingTeamScore>2</VisitingTeamScore>
        </Score>
      </Session>
    </Sessions>
    <Teams>
      <Team id="FIFATMA"><Name>Team A</Name></Team>
      <Team id="FIFATMB"><Name>Team B</Name></Team>
    </Teams>
    <Players>
      <Player id="P3578" teamId="FIFATMA">
        <Name>Player 11</Name>
        <ShirtNumber>11</ShirtNumber>
        <ProviderPlayerParameters>
          <ProviderParameter><Name>position_type</Name><Value>Goalkeeper</Value></ProviderParameter>
        </ProviderPlayerParameters>
      </Player>
      <Player id="P3579" teamId="FIFATMB">
        <Name>Player 1</Name>
        <ShirtNumber>1</ShirtNumber>
        <ProviderPlayerParameters>
          <ProviderParameter><Name>position_type</Name><Value>Right Back</Value></ProviderParameter>
        </ProviderPlayerParameters>
      </Player>
      <Player id="P3580" teamId="FIFATMB">
        <Name>Player 2</Name>
        <ShirtNumber>2</ShirtNumber>
      </Player>
    </Players>
    <Devices><Device><Sensors><Sensor><Channels><PlayerChannels>
      <PlayerChannel id="player1_x" playerId="P3578" channelId="x"/>
      <PlayerChannel id="player1_y" playerId="P3578" channelId="y"/>
      <PlayerChannel id="player2_x" playerId="P3579" channelId="x"/>
    </PlayerChannels></Channels></Sensor></Sensors></Device></Devices>
  </Metadata>
  <DataFormatSpecifications>
    <DataFormatSpecification separator=":" startFrame="1" endFrame="100">
      <SplitRegister separator=";"><SplitRegister separator=",">
        <PlayerChannelRef playerChannelId="player1_x"/>
        <PlayerChannelRef playerChannelId="player1_y"/>
      </SplitRegister></SplitRegister>
    </DataFormatSpecification>
    <DataFormatSpecification separator=":" startFrame="101" endFrame="135000">
      <SplitRegister separator=";"><SplitRegister separator=",">
        <PlayerChannelRef playerChannelId="player1_x"/>
        <PlayerChannelRef playerChannelId="player2_x"/>
      </SplitRegister></SplitRegister>
    </DataFormatSpecification>
  </DataFormatSpecifications>
</main>
`
