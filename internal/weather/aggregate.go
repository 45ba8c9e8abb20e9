package weather

import (
	"math"
	"time"
)

// Range is the min/avg/max of one measurement across a set of observations.
type Range struct {
	Min float64 `json:"min"`
	Avg float64 `json:"avg"`
	Max float64 `json:"max"`
}

// Summary aggregates a window of observations for one device.
type Summary struct {
	DeviceID       int       `json:"deviceId"`
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	Count          int       `json:"count"`
	AirTemperature Range     `json:"airTemperature"`
	WindAvg        Range     `json:"windAvg"`
	WindGust       Range     `json:"windGust"`
	WindLull       Range     `json:"windLull"`
	Pressure       Range     `json:"stationPressure"`
	// WindDirection is the circular mean of the wind direction in degrees.
	WindDirection float64 `json:"windDirection"`
}

type accumulator struct {
	min, max, sum float64
	n             int
}

func (a *accumulator) add(v float64) {
	if a.n == 0 || v < a.min {
		a.min = v
	}
	if a.n == 0 || v > a.max {
		a.max = v
	}
	a.sum += v
	a.n++
}

func (a *accumulator) result() Range {
	if a.n == 0 {
		return Range{}
	}
	return Range{Min: a.min, Avg: a.sum / float64(a.n), Max: a.max}
}

// Summarize combines observations into a Summary. Scalar fields are reduced to
// min/avg/max; direction uses a vector mean so 350° and 10° average to 0°.
// From and To span the observation timestamps.
func Summarize(deviceID int, observations []Observation) Summary {
	s := Summary{DeviceID: deviceID, Count: len(observations)}
	if len(observations) == 0 {
		return s
	}

	var temp, avg, gust, lull, pressure accumulator
	var sinSum, cosSum float64

	for i, o := range observations {
		temp.add(o.AirTemperature)
		avg.add(o.WindAvg)
		gust.add(o.WindGust)
		lull.add(o.WindLull)
		pressure.add(o.StationPressure)

		rad := o.WindDirection * math.Pi / 180
		sinSum += math.Sin(rad)
		cosSum += math.Cos(rad)

		ts := o.Time()
		if i == 0 || ts.Before(s.From) {
			s.From = ts
		}
		if i == 0 || ts.After(s.To) {
			s.To = ts
		}
	}

	s.AirTemperature = temp.result()
	s.WindAvg = avg.result()
	s.WindGust = gust.result()
	s.WindLull = lull.result()
	s.Pressure = pressure.result()

	dir := math.Atan2(sinSum, cosSum) * 180 / math.Pi
	if dir < 0 {
		dir += 360
	}
	s.WindDirection = math.Mod(math.Round(dir*10)/10, 360)
	return s
}
