package session

import (
	"context"
	"errors"
)

// ErrSpeechUnsupported is returned by a Listener when the platform has no
// speech recognition.
var ErrSpeechUnsupported = errors.New("speech recognition is not supported")

var ErrInvalidSpeechRate = errors.New("speech rate must be positive")

// speech rate presets offered by the interview page
const (
	RateSlow   = 0.8
	RateNormal = 1.0
	RateFast   = 1.3
)

// Speaker reads assistant replies aloud.
type Speaker interface {
	Speak(text string, rate float64)
	Cancel()
}

// Listener captures a single spoken utterance as text.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}
