package weather

import "time"

// Store is the contract for observation history, keyed by device id.
type Store interface {
	Save(deviceID int, obs Observation)
	Latest(deviceID int) (Observation, error)
	Range(deviceID int, from, to time.Time) ([]Observation, error)
}
