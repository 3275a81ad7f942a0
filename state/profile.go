package state

// ProfileSlots is the number of instrumentation slots
const ProfileSlots = 5

// Profile slot assignments used by the controller
const (
	ProfileTick    = 0 // whole control tick
	ProfileControl = 1 // active mode control step
	ProfileRx      = 2 // rx queue drain
)

// Profile records the duration of a repeated code section in microseconds
type Profile struct {
	start uint32

	Last    uint32
	LastTag uint32
	Max     uint32
	MaxTag  uint32
}

// Profiles is the fixed set of profiling slots
type Profiles [ProfileSlots]Profile

// Start marks the beginning of a measured section
func (p *Profile) Start(now uint32) {
	p.start = now
}

// End closes the section started by Start and tags the sample.
// Durations use wrap-safe subtraction of the 32-bit microsecond clock.
func (p *Profile) End(now uint32, tag uint32) {
	d := now - p.start
	p.Last = d
	p.LastTag = tag
	if d > p.Max {
		p.Max = d
		p.MaxTag = tag
	}
}

// Clear resets every slot
func (p *Profiles) Clear() {
	for i := range p {
		p[i] = Profile{}
	}
}
