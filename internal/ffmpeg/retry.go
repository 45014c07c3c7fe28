package ffmpeg

// RetryAction identifies which fallback was applied (or none).
type RetryAction int

const (
	RetryNone          RetryAction = iota
	RetryFixTimestamps             // Enable +genpts+discardcorrupt.
	RetryAccurateSeek              // Move -ss after -i and decode up to the timestamp.
)

func (a RetryAction) String() string {
	switch a {
	case RetryFixTimestamps:
		return "regenerate timestamps"
	case RetryAccurateSeek:
		return "accurate seek"
	default:
		return "none"
	}
}

// RetryState tracks which fallbacks have been applied across attempts for
// a single frame. It is owned by one worker and never shared.
type RetryState struct {
	Attempt     int
	MaxAttempts int

	TimestampFix bool
	AccurateSeek bool
}

// NewRetryState returns a state allowing maxAttempts runs in total.
// Values below 1 are treated as 1.
func NewRetryState(maxAttempts int) *RetryState {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryState{MaxAttempts: maxAttempts}
}

// Advance inspects a failed attempt, applies the first fallback that has not
// been tried yet and could plausibly help, and returns it. RetryNone means
// the frame is given up.
//
// Timeouts, cancellation and permission errors are never retried. Container
// timestamp damage is tried first, then an accurate seek for keyframe
// indexes that input-side seeking cannot use (common in VOB and broken AVI
// files).
func (s *RetryState) Advance(f *ExtractionFailure) RetryAction {
	s.Attempt++
	if s.Attempt >= s.MaxAttempts {
		return RetryNone
	}

	switch f.Kind {
	case KindTimeout, KindCanceled, KindPermission:
		return RetryNone
	}

	if !s.TimestampFix && MatchTimestampIssue(f.Stderr) {
		s.TimestampFix = true
		return RetryFixTimestamps
	}
	if !s.AccurateSeek && f.Kind != KindInvalidInput {
		s.AccurateSeek = true
		return RetryAccurateSeek
	}
	return RetryNone
}
