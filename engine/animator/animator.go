package animator

import (
	"log"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/tanema/gween/ease"
)

// Phase identifies which of the three playback states an AnimationState is in.
type Phase int

const (
	// PhaseIdle means no clip is set.
	PhaseIdle Phase = iota

	// PhasePlaying means a single clip is playing at full weight.
	PhasePlaying

	// PhaseFading means the current clip is being blended in over a previous clip.
	PhaseFading
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePlaying:
		return "playing"
	case PhaseFading:
		return "fading"
	default:
		return "unknown"
	}
}

// Cursor is a playback position: the clip, the seconds elapsed since it became active, and
// whether it loops. Time is never wrapped; looping is applied when the clip is sampled.
type Cursor struct {
	Clip *model.AnimationClip
	Time float32
	Loop bool
}

// QueueEntry is a pending transition. Delay is an absolute activation time on the current
// cursor's clock: the entry is promoted once the current cursor's Time reaches Delay.
type QueueEntry struct {
	Clip  *model.AnimationClip
	Loop  bool
	Delay float32
}

// crossfade is the outgoing half of an active transition. It only exists while blending, so a
// previous cursor can never be present without its mix progress and duration.
type crossfade struct {
	previous    Cursor
	mixTime     float32
	mixDuration float32
}

// progress returns the linear completion of the crossfade. mixDuration is always > 0.
func (f *crossfade) progress() float32 {
	return f.mixTime / f.mixDuration
}

// animationState is the implementation of the AnimationState interface.
type animationState struct {
	data *StateData

	current Cursor
	fade    *crossfade
	queue   []QueueEntry

	curve  ease.TweenFunc
	logger *log.Logger
}

// AnimationState tracks the clip playing on one skeleton, crossfades between clips when the
// current clip changes, and promotes queued clips on schedule.
//
// At most one previous clip is blended. Committing a new clip while a crossfade is in flight
// discards the outgoing clip and its partial progress; the abandoned fade never resumes.
//
// A finished crossfade is only retired by Apply. Calling Update alone past the end of a fade
// leaves the previous cursor in place until the next Apply observes the fade at full weight.
//
// AnimationState is not safe for concurrent use. The owner calls Update and then Apply once
// per frame from a single goroutine.
type AnimationState interface {
	// Data returns the mix table and clip catalog this state was created with.
	//
	// Returns:
	//   - *StateData: the shared state data
	Data() *StateData

	// Update advances the current cursor, the previous cursor and the crossfade progress by delta,
	// then promotes the head of the queue if the current cursor's time has reached its delay.
	// At most one queued entry is promoted per call even if several are overdue.
	//
	// Parameters:
	//   - delta: elapsed time since the last update in seconds
	Update(delta float32)

	// Apply poses the skeleton for the current frame. Without a crossfade the current clip is
	// applied at full weight. During a crossfade the previous clip is applied first and the
	// current clip is mixed over it by the blend weight; when the weight reaches 1 the
	// crossfade is finished and the previous cursor is cleared. No-op without a current clip.
	//
	// Parameters:
	//   - skel: the skeleton pose to write into
	Apply(skel *model.Skeleton)

	// SetAnimation clears the queue and makes clip current immediately, crossfading from the
	// old current clip when the mix table has a positive duration for the pair.
	// A nil clip leaves the state idle.
	//
	// Parameters:
	//   - clip: the clip to play, or nil
	//   - loop: whether the clip loops
	SetAnimation(clip *model.AnimationClip, loop bool)

	// SetAnimationByName resolves name in the clip catalog and calls SetAnimation.
	// The state is left unchanged if the name is unknown.
	//
	// Parameters:
	//   - name: the clip name
	//   - loop: whether the clip loops
	//
	// Returns:
	//   - error: an error wrapping ErrClipNotFound if the name is unknown
	SetAnimationByName(name string, loop bool) error

	// AddAnimation queues clip to become current later.
	//
	// A positive delay is an absolute activation time on the current cursor's clock and is
	// stored verbatim. A zero or negative delay is relative: it resolves, now, to the duration
	// of the clip at the tail of the timeline (the last queued clip, or the current clip when
	// the queue is empty) minus the mix duration from that clip to this one, plus delay.
	// Without a tail clip it resolves to 0. Note the asymmetry: positive values are absolute
	// while non-positive values are offsets from the tail clip's end.
	//
	// Parameters:
	//   - clip: the clip to queue
	//   - loop: whether the clip loops once promoted
	//   - delay: the activation time, see above
	AddAnimation(clip *model.AnimationClip, loop bool, delay float32)

	// AddAnimationByName resolves name in the clip catalog and calls AddAnimation.
	// The queue is left unchanged if the name is unknown.
	//
	// Parameters:
	//   - name: the clip name
	//   - loop: whether the clip loops once promoted
	//   - delay: the activation time, see AddAnimation
	//
	// Returns:
	//   - error: an error wrapping ErrClipNotFound if the name is unknown
	AddAnimationByName(name string, loop bool, delay float32) error

	// ClearAnimation drops the current clip, any crossfade and the whole queue.
	ClearAnimation()

	// IsComplete reports whether there is no current clip or the current time has reached the
	// current clip's duration. Looping and any active crossfade are ignored.
	//
	// Returns:
	//   - bool: true if playback of the current clip has run its nominal length
	IsComplete() bool

	// Animation returns the current clip.
	//
	// Returns:
	//   - *model.AnimationClip: the current clip, or nil when idle
	Animation() *model.AnimationClip

	// Time returns the seconds elapsed on the current cursor.
	Time() float32

	// SetTime moves the current cursor, allowing callers to scrub the active clip.
	// Queue delays are compared against this clock.
	//
	// Parameters:
	//   - time: the new elapsed time in seconds
	SetTime(time float32)

	// Loop returns whether the current clip loops.
	Loop() bool

	// SetLoop changes whether the current clip loops.
	//
	// Parameters:
	//   - loop: the new loop flag
	SetLoop(loop bool)

	// Previous returns the outgoing cursor of the active crossfade.
	//
	// Returns:
	//   - Cursor: the previous cursor
	//   - bool: false if no crossfade is active
	Previous() (Cursor, bool)

	// MixAlpha returns the blend weight Apply would use right now, without finishing the
	// crossfade. It is 1 when no crossfade is active.
	//
	// Returns:
	//   - float32: the blend weight in [0, 1]
	MixAlpha() float32

	// MixDuration returns the duration fixed for the active crossfade when it was committed.
	//
	// Returns:
	//   - float32: the crossfade duration, or 0 if no crossfade is active
	MixDuration() float32

	// Phase returns the playback phase.
	//
	// Returns:
	//   - Phase: PhaseIdle, PhasePlaying or PhaseFading
	Phase() Phase

	// Queue returns a copy of the pending entries in promotion order.
	//
	// Returns:
	//   - []QueueEntry: the queued transitions
	Queue() []QueueEntry

	// String returns the current clip name, or "<none>" when idle.
	String() string
}

var _ AnimationState = &animationState{}

// NewAnimationState creates an AnimationState bound to the given state data.
//
// Parameters:
//   - data: the mix table and clip catalog (must not be nil)
//   - options: functional options to configure the state
//
// Returns:
//   - AnimationState: the new state, idle
//   - error: ErrNilStateData if data is nil
func NewAnimationState(data *StateData, options ...AnimationStateBuilderOption) (AnimationState, error) {
	if data == nil {
		return nil, ErrNilStateData
	}

	s := &animationState{
		data:  data,
		curve: ease.Linear,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func (s *animationState) Data() *StateData {
	return s.data
}

func (s *animationState) Update(delta float32) {
	s.current.Time += delta
	if s.fade != nil {
		s.fade.previous.Time += delta
		s.fade.mixTime += delta
	}

	if len(s.queue) == 0 {
		return
	}

	// Decide on the head first, then pop; the queue is never edited while deciding.
	head := s.queue[0]
	if s.current.Time < head.Delay {
		return
	}
	s.queue[0] = QueueEntry{}
	s.queue = s.queue[1:]

	if s.logger != nil {
		s.logger.Printf("[AnimationState] promoting queued %s at %.3fs (delay %.3fs)", clipName(head.Clip), s.current.Time, head.Delay)
	}
	s.setAnimationInternal(head.Clip, head.Loop)
}

func (s *animationState) Apply(skel *model.Skeleton) {
	if s.current.Clip == nil {
		return
	}

	if s.fade == nil {
		s.current.Clip.Apply(skel, s.current.Time, s.current.Loop)
		return
	}

	prev := s.fade.previous
	prev.Clip.Apply(skel, prev.Time, prev.Loop)

	alpha, done := s.blendWeight()
	if done {
		s.fade = nil
	}
	s.current.Clip.Mix(skel, s.current.Time, s.current.Loop, alpha)
}

func (s *animationState) SetAnimation(clip *model.AnimationClip, loop bool) {
	s.clearQueue()
	s.setAnimationInternal(clip, loop)
}

func (s *animationState) SetAnimationByName(name string, loop bool) error {
	clip, err := s.data.FindClip(name)
	if err != nil {
		return err
	}
	s.SetAnimation(clip, loop)
	return nil
}

func (s *animationState) AddAnimation(clip *model.AnimationClip, loop bool, delay float32) {
	if delay <= 0 {
		anchor := s.current.Clip
		if n := len(s.queue); n > 0 {
			anchor = s.queue[n-1].Clip
		}
		if anchor != nil {
			delay = anchor.Duration - s.data.Mix(anchor, clip) + delay
		} else {
			delay = 0
		}
	}

	s.queue = append(s.queue, QueueEntry{Clip: clip, Loop: loop, Delay: delay})
}

func (s *animationState) AddAnimationByName(name string, loop bool, delay float32) error {
	clip, err := s.data.FindClip(name)
	if err != nil {
		return err
	}
	s.AddAnimation(clip, loop, delay)
	return nil
}

func (s *animationState) ClearAnimation() {
	s.fade = nil
	s.current.Clip = nil
	s.clearQueue()
}

func (s *animationState) IsComplete() bool {
	return s.current.Clip == nil || s.current.Time >= s.current.Clip.Duration
}

func (s *animationState) Animation() *model.AnimationClip {
	return s.current.Clip
}

func (s *animationState) Time() float32 {
	return s.current.Time
}

func (s *animationState) SetTime(time float32) {
	s.current.Time = time
}

func (s *animationState) Loop() bool {
	return s.current.Loop
}

func (s *animationState) SetLoop(loop bool) {
	s.current.Loop = loop
}

func (s *animationState) Previous() (Cursor, bool) {
	if s.fade == nil {
		return Cursor{}, false
	}
	return s.fade.previous, true
}

func (s *animationState) MixAlpha() float32 {
	if s.fade == nil {
		return 1
	}
	alpha, _ := s.blendWeight()
	return alpha
}

func (s *animationState) MixDuration() float32 {
	if s.fade == nil {
		return 0
	}
	return s.fade.mixDuration
}

func (s *animationState) Phase() Phase {
	switch {
	case s.current.Clip == nil:
		return PhaseIdle
	case s.fade != nil:
		return PhaseFading
	default:
		return PhasePlaying
	}
}

func (s *animationState) Queue() []QueueEntry {
	out := make([]QueueEntry, len(s.queue))
	copy(out, s.queue)
	return out
}

func (s *animationState) String() string {
	if s.current.Clip != nil && s.current.Clip.Name != "" {
		return s.current.Clip.Name
	}
	return "<none>"
}

// setAnimationInternal commits clip as the current cursor. Any crossfade in flight is dropped.
// A new crossfade starts only when both the old and new clips exist and the mix table returns
// a positive duration for the pair; the old current cursor becomes the previous cursor.
func (s *animationState) setAnimationInternal(clip *model.AnimationClip, loop bool) {
	from := s.current.Clip
	s.fade = nil

	if clip != nil && from != nil {
		if d := s.data.Mix(from, clip); d > 0 {
			s.fade = &crossfade{
				previous:    s.current,
				mixDuration: d,
			}
		}
	}

	if s.logger != nil {
		s.logger.Printf("[AnimationState] %s -> %s (mix %.3fs)", clipName(from), clipName(clip), s.MixDuration())
	}

	s.current = Cursor{Clip: clip, Time: 0, Loop: loop}
}

// blendWeight returns the weight of the current clip over the previous one and whether the
// crossfade has reached its end. Must only be called while a crossfade is active.
func (s *animationState) blendWeight() (float32, bool) {
	if s.fade.progress() >= 1 {
		return 1, true
	}
	alpha := s.curve(s.fade.mixTime, 0, 1, s.fade.mixDuration)
	return common.Clamp(alpha, 0, 1), false
}

func (s *animationState) clearQueue() {
	clear(s.queue)
	s.queue = s.queue[:0]
}

func clipName(c *model.AnimationClip) string {
	if c == nil {
		return "<none>"
	}
	return c.Name
}
