// Package world owns the shared simulation state every joined character
// observes: the world clock, the weather, and the day counter.
package world

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/pixil98/go-worldsync/internal/protocol"
)

type Weather string

const (
	WeatherClear  Weather = "clear"
	WeatherRain   Weather = "rain"
	WeatherCloudy Weather = "cloudy"
	WeatherFog    Weather = "fog"
	WeatherSnow   Weather = "snow"
	WeatherStorm  Weather = "storm"
)

var weathers = []Weather{WeatherClear, WeatherRain, WeatherCloudy, WeatherFog, WeatherSnow, WeatherStorm}

func (w Weather) valid() bool {
	for _, known := range weathers {
		if w == known {
			return true
		}
	}
	return false
}

// weatherChance is the probability per completed world update that the
// weather is rerolled. A reroll landing on the current value is suppressed,
// so observed changes are rarer still.
const weatherChance = 0.25

// State is the mutable world simulation. One minute of world time passes per
// completed update; updates complete when at least the configured interval
// of wall-clock time has elapsed since the previous one.
type State struct {
	mu sync.Mutex

	name    string
	hour    int
	minute  int
	day     int
	weather Weather

	tick       uint64
	interval   time.Duration
	lastUpdate time.Time
	rng        *rand.Rand
}

type StateOpt func(*State)

// WithRand overrides the weather RNG. Tests use this for determinism.
func WithRand(rng *rand.Rand) StateOpt {
	return func(s *State) {
		s.rng = rng
	}
}

func NewState(name string, interval time.Duration, opts ...StateOpt) *State {
	s := &State{
		name:       name,
		hour:       8,
		weather:    WeatherClear,
		day:        1,
		interval:   interval,
		lastUpdate: time.Now(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Restore replaces the clock and weather with a persisted snapshot, so the
// world picks up where it left off across restarts.
func (s *State) Restore(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hour = snap.Hour
	s.minute = snap.Minute
	s.day = snap.Day
	s.weather = snap.Weather
}

// Advance runs one scheduler invocation. The tick counter always moves; the
// clock and weather only move when the update interval has elapsed. The
// returned updates are broadcast-shaped, one per observable change, and the
// bool reports whether an update completed (the autosave pass keys off it).
func (s *State) Advance(now time.Time) ([]*protocol.WorldUpdate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++

	if now.Sub(s.lastUpdate) < s.interval {
		return nil, false
	}
	s.lastUpdate = now

	var updates []*protocol.WorldUpdate

	s.minute++
	if s.minute >= 60 {
		s.minute = 0
		s.hour++
		if s.hour >= 24 {
			s.hour = 0
			s.day++
		}
	}
	updates = append(updates, protocol.NewWorldUpdate("time", s.clockLocked(), s.day, string(s.weather)))

	if s.rng.Float64() < weatherChance {
		next := weathers[s.rng.Intn(len(weathers))]
		if next != s.weather {
			s.weather = next
			updates = append(updates, protocol.NewWorldUpdate("weather", s.clockLocked(), s.day, string(s.weather)))
		}
	}

	return updates, true
}

// Tick returns the scheduler invocation count, echoed in heartbeat replies.
func (s *State) Tick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

func (s *State) clockLocked() string {
	return fmt.Sprintf("%02d:%02d", s.hour, s.minute)
}

// Info builds the snapshot sent to joining clients.
func (s *State) Info(players int) protocol.WorldInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	return protocol.WorldInfo{
		Name:    s.name,
		Time:    s.clockLocked(),
		Day:     s.day,
		Weather: string(s.weather),
		Players: players,
	}
}

// Snapshot returns the persistable form of the current state.
func (s *State) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &Snapshot{
		Name:    s.name,
		Hour:    s.hour,
		Minute:  s.minute,
		Day:     s.day,
		Weather: s.weather,
	}
}
