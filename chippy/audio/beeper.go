package audio

// Beeper is the audio collaborator driven by the sound timer. Start
// begins a looping tone and Stop silences it; the timer unit guarantees
// the two are only called on the silent-to-beeping transition edges.
type Beeper interface {
	Start()
	Stop()
	Close() error
}

// Null is a Beeper that produces no sound, used in headless runs and as
// a fallback when no audio device is available.
type Null struct{}

func (Null) Start()      {}
func (Null) Stop()       {}
func (Null) Close() error { return nil }
