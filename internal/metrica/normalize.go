package metrica

import (
	"math"
	"time"

	"github.com/okian/touchline/internal/domain/model"
)

// Rescale maps vendor coordinates in [0, 1] to metres centred on the pitch
// midpoint: x*length - length/2 and y*width - width/2. NaN stays NaN.
func Rescale(data *model.EventData, dims [2]float64) {
	if data == nil {
		return
	}
	for i := range data.Records {
		r := &data.Records[i]
		r.StartX = r.StartX*dims[0] - dims[0]/2
		r.EndX = r.EndX*dims[0] - dims[0]/2
		r.StartY = r.StartY*dims[1] - dims[1]/2
		r.EndY = r.EndY*dims[1] - dims[1]/2
	}
}

// Unscale is the inverse of Rescale.
func Unscale(data *model.EventData, dims [2]float64) {
	if data == nil {
		return
	}
	for i := range data.Records {
		r := &data.Records[i]
		r.StartX = (r.StartX + dims[0]/2) / dims[0]
		r.EndX = (r.EndX + dims[0]/2) / dims[0]
		r.StartY = (r.StartY + dims[1]/2) / dims[1]
		r.EndY = (r.EndY + dims[1]/2) / dims[1]
	}
}

// AttachDatetimes stamps every row with the first period's start datetime
// plus the frame offset from the first period's start frame, in UTC.
func AttachDatetimes(data *model.EventData, md *model.Metadata) error {
	if md == nil {
		return malformedMetadata("metadata is nil")
	}
	first, ok := md.Period(1)
	if !ok {
		return malformedMetadata("metadata has no first period")
	}
	if md.FrameRate <= 0 {
		return malformedMetadata("frame rate %d is not positive", md.FrameRate)
	}
	if data == nil {
		return nil
	}
	start := first.StartDatetime.UTC()
	for i := range data.Records {
		r := &data.Records[i]
		r.Datetime = start.Add(frameOffset(r.Frame-first.StartFrame, md.FrameRate))
	}
	return nil
}

// frameOffset converts a frame count to elapsed time, rounded to the
// microsecond.
func frameOffset(frames, frameRate int) time.Duration {
	us := math.Round(float64(frames) / float64(frameRate) * 1e6)
	return time.Duration(us) * time.Microsecond
}

// NormalizePlayingDirection flips rows so that every team attacks towards
// +x. Teams swap ends every period. The home team's end per period is
// voted by its shots (and the away team's shots, mirrored). A period without
// shots takes the nearest voted period's end, alternated by period parity;
// with no shots at all home is taken to attack +x in odd periods.
func NormalizePlayingDirection(data *model.EventData, homeTeamID string) {
	if data == nil {
		return
	}
	dirs := homeDirections(data, homeTeamID)
	for i := range data.Records {
		r := &data.Records[i]
		dir := dirs.of(r.PeriodID)
		if r.TeamID != homeTeamID {
			dir = -dir
		}
		if dir < 0 {
			r.StartX, r.StartY = -r.StartX, -r.StartY
			r.EndX, r.EndY = -r.EndX, -r.EndY
		}
	}
}

// periodDirections holds the home team's attacking direction (+1 or -1)
// for periods with a shot vote.
type periodDirections map[int]int

func homeDirections(data *model.EventData, homeTeamID string) periodDirections {
	votes := map[int]float64{}
	for _, r := range data.Records {
		if r.Category != model.CategoryShot || math.IsNaN(r.StartX) || r.StartX == 0 {
			continue
		}
		v := math.Copysign(1, r.StartX)
		if r.TeamID != homeTeamID {
			v = -v
		}
		votes[r.PeriodID] += v
	}
	dirs := periodDirections{}
	for period, v := range votes {
		switch {
		case v > 0:
			dirs[period] = 1
		case v < 0:
			dirs[period] = -1
		}
	}
	return dirs
}

// of returns the home direction for period, inferring unvoted periods.
func (d periodDirections) of(period int) int {
	if dir, ok := d[period]; ok {
		return dir
	}
	best, bestDist := 0, math.MaxInt
	for p := range d {
		dist := p - period
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist || (dist == bestDist && p < best) {
			best, bestDist = p, dist
		}
	}
	if bestDist == math.MaxInt {
		if period%2 == 0 {
			return -1
		}
		return 1
	}
	if bestDist%2 == 0 {
		return d[best]
	}
	return -d[best]
}
