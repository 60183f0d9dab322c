// Package audio plays synthesized sound effects and a per-category music
// loop.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/verte-zerg/dotdaily/internal/model"
)

const (
	sampleRate = beep.SampleRate(44100)
	// FadeTime is how long the music takes to fade in or out.
	FadeTime = 500 * time.Millisecond
)

// Effect names a sound effect.
type Effect int

// Sound effects.
const (
	Correct Effect = iota
	Incorrect
	Guess
	Hint
	Complete
)

// Player is the audio surface used by the game screens.
type Player interface {
	PlayEffect(e Effect)
	StartMusic(c model.Category)
	StopMusic()
	Apply(s model.Settings)
	Close()
}

// Nop is a silent Player.
type Nop struct{}

// PlayEffect implements Player.
func (Nop) PlayEffect(Effect) {}

// StartMusic implements Player.
func (Nop) StartMusic(model.Category) {}

// StopMusic implements Player.
func (Nop) StopMusic() {}

// Apply implements Player.
func (Nop) Apply(model.Settings) {}

// Close implements Player.
func (Nop) Close() {}

// Gain converts a 0-100 percentage into an effects.Volume level on base 2.
func Gain(percent int) (volume float64, silent bool) {
	if percent <= 0 {
		return 0, true
	}
	if percent > 100 {
		percent = 100
	}
	return math.Log2(float64(percent) / 100), false
}

// note is a tone of freq Hz held for d. A zero freq is a rest.
type note struct {
	freq float64
	d    time.Duration
}

var tunes = map[Effect][]note{
	Correct:   {{660, 70 * time.Millisecond}, {880, 90 * time.Millisecond}},
	Incorrect: {{220, 120 * time.Millisecond}, {165, 180 * time.Millisecond}},
	Guess:     {{523.25, 60 * time.Millisecond}},
	Hint:      {{987.77, 60 * time.Millisecond}, {0, 30 * time.Millisecond}, {987.77, 60 * time.Millisecond}},
	Complete: {
		{523.25, 110 * time.Millisecond}, {659.25, 110 * time.Millisecond},
		{783.99, 110 * time.Millisecond}, {1046.5, 260 * time.Millisecond},
	},
}

// Duration is the total length of an effect.
func Duration(e Effect) time.Duration {
	var total time.Duration
	for _, n := range tunes[e] {
		total += n.d
	}
	return total
}

func tune(sr beep.SampleRate, notes []note) beep.Streamer {
	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		samples := sr.N(n.d)
		if n.freq <= 0 {
			parts = append(parts, beep.Silence(samples))
			continue
		}
		tone, err := generators.SineTone(sr, n.freq)
		if err != nil {
			parts = append(parts, beep.Silence(samples))
			continue
		}
		parts = append(parts, envelope(beep.Take(samples, tone), samples))
	}
	return beep.Seq(parts...)
}

// envelope applies a short attack and release to avoid clicks.
func envelope(s beep.Streamer, total int) beep.Streamer {
	ramp := min(total/4, sampleRate.N(10*time.Millisecond))
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := 0; i < n; i++ {
			g := 1.0
			if ramp > 0 {
				if pos < ramp {
					g = float64(pos) / float64(ramp)
				} else if rest := total - pos; rest < ramp {
					g = float64(rest) / float64(ramp)
				}
			}
			samples[i][0] *= g * 0.3
			samples[i][1] *= g * 0.3
			pos++
		}
		return n, ok
	})
}

// rootFrequency is the tonic of each category's music loop.
func rootFrequency(c model.Category) float64 {
	switch c {
	case model.Yellow:
		return 261.63
	case model.Green:
		return 293.66
	case model.Blue:
		return 329.63
	case model.Red:
		return 392.00
	}
	return 220
}

// arpeggio loops a major arpeggio over root forever.
type arpeggio struct {
	sr   beep.SampleRate
	root float64
	step int
	pos  int
}

var arpeggioRatios = []float64{1, 1.25, 1.5, 2, 1.5, 1.25}

func (a *arpeggio) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		idx := (a.pos / a.step) % len(arpeggioRatios)
		freq := a.root * arpeggioRatios[idx]
		within := float64(a.pos%a.step) / float64(a.step)
		amp := 0.08 * (1 - within)
		t := float64(a.pos) / float64(a.sr)
		v := amp * math.Sin(2*math.Pi*freq*t)
		samples[i][0] = v
		samples[i][1] = v
		a.pos++
	}
	return len(samples), true
}

func (a *arpeggio) Err() error { return nil }

// fader ramps gain linearly towards a target and ends the stream once it has
// faded out.
type fader struct {
	s      beep.Streamer
	gain   float64
	target float64
	delta  float64
	left   int
}

func newFader(s beep.Streamer, from, to float64, over int) *fader {
	f := &fader{s: s, gain: from}
	f.fadeTo(to, over)
	return f
}

func (f *fader) fadeTo(target float64, over int) {
	f.target = target
	if over <= 0 {
		f.gain = target
		f.delta = 0
		f.left = 0
		return
	}
	f.delta = (target - f.gain) / float64(over)
	f.left = over
}

func (f *fader) Stream(samples [][2]float64) (int, bool) {
	if f.left == 0 && f.gain == 0 && f.target == 0 {
		return 0, false
	}
	n, ok := f.s.Stream(samples)
	for i := 0; i < n; i++ {
		if f.left > 0 {
			f.gain += f.delta
			f.left--
			if f.left == 0 {
				f.gain = f.target
			}
		}
		samples[i][0] *= f.gain
		samples[i][1] *= f.gain
	}
	return n, ok
}

func (f *fader) Err() error { return f.s.Err() }

// Speaker plays through the system audio device.
type Speaker struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	music       *fader
	musicVolume *effects.Volume
	sfxVolume   *effects.Volume
	sfx         *beep.Mixer
	settings    model.Settings
	initialized bool
}

// NewSpeaker builds a speaker with the given settings. Call Init before use.
func NewSpeaker(s model.Settings) *Speaker {
	sfx := &beep.Mixer{}
	sp := &Speaker{
		mixer:     &beep.Mixer{},
		sfx:       sfx,
		sfxVolume: &effects.Volume{Streamer: sfx, Base: 2},
		settings:  s.Normalize(),
	}
	sp.applyLocked()
	return sp
}

// Init opens the audio device.
func (sp *Speaker) Init() error {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	sp.mixer.Add(sp.sfxVolume)
	speaker.Play(sp.mixer)
	sp.initialized = true
	return nil
}

// PlayEffect queues a sound effect.
func (sp *Speaker) PlayEffect(e Effect) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if !sp.initialized || !sp.settings.AudioEnabled {
		return
	}
	notes, ok := tunes[e]
	if !ok {
		return
	}
	speaker.Lock()
	sp.sfx.Add(tune(sampleRate, notes))
	speaker.Unlock()
}

// StartMusic fades in the loop for category c, replacing any current loop.
func (sp *Speaker) StartMusic(c model.Category) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if !sp.initialized || !sp.settings.AudioEnabled {
		return
	}
	speaker.Lock()
	defer speaker.Unlock()
	if sp.music != nil {
		sp.music.fadeTo(0, sampleRate.N(FadeTime))
	}
	loop := &arpeggio{sr: sampleRate, root: rootFrequency(c), step: sampleRate.N(300 * time.Millisecond)}
	sp.music = newFader(loop, 0, 1, sampleRate.N(FadeTime))
	vol, silent := Gain(sp.settings.MusicVolume)
	sp.musicVolume = &effects.Volume{Streamer: sp.music, Base: 2, Volume: vol, Silent: silent}
	sp.mixer.Add(sp.musicVolume)
}

// StopMusic fades the current loop out.
func (sp *Speaker) StopMusic() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if !sp.initialized || sp.music == nil {
		return
	}
	speaker.Lock()
	sp.music.fadeTo(0, sampleRate.N(FadeTime))
	speaker.Unlock()
	sp.music = nil
	sp.musicVolume = nil
}

// Apply updates volumes and the enabled flag.
func (sp *Speaker) Apply(s model.Settings) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.settings = s.Normalize()
	if sp.initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	sp.applyLocked()
	if !sp.settings.AudioEnabled && sp.music != nil {
		sp.music.fadeTo(0, sampleRate.N(FadeTime))
		sp.music = nil
		sp.musicVolume = nil
	}
}

func (sp *Speaker) applyLocked() {
	vol, silent := Gain(sp.settings.SfxVolume)
	sp.sfxVolume.Volume = vol
	sp.sfxVolume.Silent = silent || !sp.settings.AudioEnabled
	if sp.musicVolume != nil {
		vol, silent := Gain(sp.settings.MusicVolume)
		sp.musicVolume.Volume = vol
		sp.musicVolume.Silent = silent
	}
}

// Close silences everything.
func (sp *Speaker) Close() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if !sp.initialized {
		return
	}
	speaker.Clear()
	sp.music = nil
	sp.musicVolume = nil
	sp.initialized = false
}
