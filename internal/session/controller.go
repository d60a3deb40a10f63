package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"intervai/server/internal/models"
)

type State int

const (
	NotStarted State = iota
	Active
	Ended
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Active:
		return "active"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// NoAnswer is submitted when the turn countdown expires on an empty input.
const NoAnswer = "(No Answer)"

// rapid-fire round defaults
const (
	RapidFireQuestions   = 10
	RapidFireTurnTimeout = 60 * time.Second
)

var (
	ErrInvalidMode  = errors.New("unsupported interview mode")
	ErrInvalidLevel = errors.New("unsupported interview level")
)

// Client sends one chat turn and returns the interviewer's reply.
type Client interface {
	Send(ctx context.Context, req models.ChatRequest) (string, error)
}

// Recorder receives the completed interview record.
type Recorder interface {
	Append(ctx context.Context, record *models.InterviewRecord) error
}

// TurnError wraps a failed chat turn. Op is start, submit or end.
type TurnError struct {
	Op  string
	Err error
}

func (e *TurnError) Error() string {
	return e.Op + " failed: " + e.Err.Error()
}

func (e *TurnError) Unwrap() error {
	return e.Err
}

type Option func(*Controller)

func WithSpeaker(speaker Speaker) Option {
	return func(c *Controller) { c.speaker = speaker }
}

func WithRecorder(recorder Recorder) Option {
	return func(c *Controller) { c.recorder = recorder }
}

func WithIdentity(identity models.Identity) Option {
	return func(c *Controller) { c.identity = identity }
}

// WithMaxTurns caps progress; answering the last question ends the interview.
func WithMaxTurns(n int) Option {
	return func(c *Controller) { c.maxTurns = n }
}

// WithTurnTimeout submits the pending input when a turn runs longer than d.
func WithTurnTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.countdown = NewCountdown(d)
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// Controller drives one interview from the first question to the scored
// evaluation. At most one turn is in flight at a time; calls made while a
// turn is pending, after the interview ended, or after Close are no-ops.
type Controller struct {
	mu sync.Mutex

	client    Client
	speaker   Speaker
	recorder  Recorder
	identity  models.Identity
	maxTurns  int
	countdown *Countdown
	logger    *zap.Logger
	now       func() time.Time

	// background context for countdown-driven turns, canceled by Close
	ctx    context.Context
	cancel context.CancelFunc

	state       State
	mode        models.Mode
	level       models.Level
	transcript  []models.Message
	score       int
	hasScore    bool
	progress    int
	input       string
	pending     bool
	turn        uint64
	muted       bool
	rate        float64
	noSpeech    bool
	closed      bool
	completedAt time.Time
}

func New(client Client, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		client: client,
		logger: zap.NewNop(),
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
		rate:   RateNormal,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewRapidFire returns a controller for the timed ten-question round.
func NewRapidFire(client Client, opts ...Option) *Controller {
	base := []Option{WithMaxTurns(RapidFireQuestions), WithTurnTimeout(RapidFireTurnTimeout)}
	return New(client, append(base, opts...)...)
}

// Start requests the first question. The reply becomes the only message of
// the transcript. On failure the session stays NotStarted and may be retried.
func (c *Controller) Start(ctx context.Context, mode, level string) error {
	m, ok := models.ParseMode(mode)
	if !ok {
		return ErrInvalidMode
	}
	l, ok := models.ParseLevel(level)
	if !ok {
		return ErrInvalidLevel
	}

	c.mu.Lock()
	if c.closed || c.state != NotStarted || c.pending {
		c.mu.Unlock()
		return nil
	}
	c.pending = true
	c.turn++
	c.mode, c.level = m, l
	c.mu.Unlock()

	reply, err := c.client.Send(ctx, models.ChatRequest{
		Messages: []models.Message{},
		Mode:     string(m),
		Level:    string(l),
	})

	c.mu.Lock()
	c.pending = false
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("Failed to start interview",
			zap.String("mode", string(m)), zap.String("level", string(l)), zap.Error(err))
		return &TurnError{Op: "start", Err: err}
	}
	c.transcript = []models.Message{{Role: models.RoleAssistant, Content: reply}}
	c.state = Active
	c.armCountdownLocked()
	speak := c.speechLocked(reply)
	c.mu.Unlock()

	c.logger.Info("Interview started", zap.String("mode", string(m)), zap.String("level", string(l)))
	speak()
	return nil
}

// Submit sends one answer. Blank text is ignored. A failed turn removes the
// answer from the transcript and puts it back in the input buffer.
func (c *Controller) Submit(ctx context.Context, text string) error {
	c.mu.Lock()
	if strings.TrimSpace(text) == "" || !c.acceptingLocked() || c.exhaustedLocked() {
		c.mu.Unlock()
		return nil
	}
	return c.submitLocked(ctx, text, text)
}

// SubmitInput submits the current input buffer.
func (c *Controller) SubmitInput(ctx context.Context) error {
	c.mu.Lock()
	text := c.input
	if strings.TrimSpace(text) == "" || !c.acceptingLocked() || c.exhaustedLocked() {
		c.mu.Unlock()
		return nil
	}
	return c.submitLocked(ctx, text, text)
}

// submitLocked runs one turn. It is called with mu held and releases it.
// restore is written back to an empty input buffer if the turn fails.
func (c *Controller) submitLocked(ctx context.Context, text, restore string) error {
	c.turn++
	c.pending = true
	c.input = ""
	c.stopCountdownLocked()
	c.transcript = append(c.transcript, models.Message{Role: models.RoleUser, Content: text})
	req := c.requestLocked(c.transcript)
	c.mu.Unlock()

	reply, err := c.client.Send(ctx, req)

	c.mu.Lock()
	c.pending = false
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.transcript = c.transcript[:len(c.transcript)-1]
		if c.input == "" {
			c.input = restore
		}
		c.armCountdownLocked()
		mode := c.mode
		c.mu.Unlock()
		c.logger.Warn("Interview turn failed", zap.String("mode", string(mode)), zap.Error(err))
		return &TurnError{Op: "submit", Err: err}
	}

	c.transcript = append(c.transcript, models.Message{Role: models.RoleAssistant, Content: reply})
	if c.maxTurns <= 0 || c.progress < c.maxTurns {
		c.progress++
	}
	if c.exhaustedLocked() {
		// the last answer goes straight to evaluation without releasing mu
		return c.endLocked(ctx)
	}
	c.armCountdownLocked()
	speak := c.speechLocked(reply)
	c.mu.Unlock()

	speak()
	return nil
}

// End asks for the evaluation. On success the termination message and the
// evaluation are appended, the score is extracted and the session is Ended.
// On failure nothing is appended and the session stays Active.
func (c *Controller) End(ctx context.Context) error {
	c.mu.Lock()
	if !c.acceptingLocked() {
		c.mu.Unlock()
		return nil
	}
	return c.endLocked(ctx)
}

// endLocked runs the evaluation turn. It is called with mu held and releases it.
func (c *Controller) endLocked(ctx context.Context) error {
	c.turn++
	c.pending = true
	c.stopCountdownLocked()
	sentinel := models.Message{Role: models.RoleUser, Content: models.TerminationSentinel}
	messages := make([]models.Message, 0, len(c.transcript)+1)
	messages = append(messages, c.transcript...)
	req := c.requestLocked(append(messages, sentinel))
	speaker := c.speaker
	c.mu.Unlock()

	if speaker != nil {
		speaker.Cancel()
	}

	reply, err := c.client.Send(ctx, req)

	c.mu.Lock()
	c.pending = false
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		if !c.exhaustedLocked() {
			c.armCountdownLocked()
		}
		mode := c.mode
		c.mu.Unlock()
		c.logger.Warn("Failed to end interview", zap.String("mode", string(mode)), zap.Error(err))
		return &TurnError{Op: "end", Err: err}
	}

	c.transcript = append(c.transcript, sentinel, models.Message{Role: models.RoleAssistant, Content: reply})
	c.score, c.hasScore = ExtractScore(reply)
	c.state = Ended
	c.input = ""
	c.completedAt = c.now()
	record := c.recordLocked()
	c.mu.Unlock()

	c.logger.Info("Interview ended",
		zap.String("mode", record.Mode),
		zap.String("level", record.Level),
		zap.Bool("scored", record.Score != nil))

	if c.recorder != nil {
		if err := c.recorder.Append(ctx, record); err != nil {
			c.logger.Error("Failed to record completed interview", zap.Error(err))
		}
	}
	return nil
}

// expire handles the countdown for the given turn. A turn that already
// moved on makes it a no-op.
func (c *Controller) expire(turn uint64) {
	c.mu.Lock()
	if c.turn != turn || !c.acceptingLocked() || c.exhaustedLocked() {
		c.mu.Unlock()
		return
	}
	restore := c.input
	text := restore
	if strings.TrimSpace(text) == "" {
		text = NoAnswer
	}
	if err := c.submitLocked(c.ctx, text, restore); err != nil {
		c.logger.Warn("Timed submission failed", zap.Error(err))
	}
}

// Listen captures one utterance and overwrites the input buffer with it.
// Missing speech support is reported once; later calls are no-ops.
func (c *Controller) Listen(ctx context.Context, listener Listener) error {
	c.mu.Lock()
	if c.closed || c.state == Ended || c.noSpeech {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	var (
		text string
		err  = ErrSpeechUnsupported
	)
	if listener != nil {
		text, err = listener.Listen(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if errors.Is(err, ErrSpeechUnsupported) {
		if c.noSpeech {
			return nil
		}
		c.noSpeech = true
		return ErrSpeechUnsupported
	}
	if err != nil {
		return err
	}
	if c.closed || c.state == Ended {
		return nil
	}
	c.input = text
	return nil
}

func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state == Ended {
		return
	}
	c.input = text
}

func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// SetMuted suppresses speech; muting also cancels the current utterance.
func (c *Controller) SetMuted(muted bool) {
	c.mu.Lock()
	c.muted = muted
	speaker := c.speaker
	c.mu.Unlock()
	if muted && speaker != nil {
		speaker.Cancel()
	}
}

func (c *Controller) SetSpeechRate(rate float64) error {
	if rate <= 0 {
		return ErrInvalidSpeechRate
	}
	c.mu.Lock()
	c.rate = rate
	c.mu.Unlock()
	return nil
}

// Close discards the session. Replies still in flight are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopCountdownLocked()
	speaker := c.speaker
	c.mu.Unlock()

	c.cancel()
	if speaker != nil {
		speaker.Cancel()
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Transcript returns a copy of the conversation so far.
func (c *Controller) Transcript() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Message(nil), c.transcript...)
}

func (c *Controller) Ended() bool {
	return c.State() == Ended
}

// Score reports the evaluation score; false means the evaluation had none.
func (c *Controller) Score() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.score, c.hasScore
}

func (c *Controller) Progress() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

func (c *Controller) Mode() models.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) Level() models.Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// Remaining is the time left on the current turn, zero without a countdown.
func (c *Controller) Remaining() time.Duration {
	if c.countdown == nil {
		return 0
	}
	return c.countdown.Remaining()
}

func (c *Controller) acceptingLocked() bool {
	return !c.closed && !c.pending && c.state == Active
}

// exhaustedLocked reports that every question has been answered and only
// the evaluation remains.
func (c *Controller) exhaustedLocked() bool {
	return c.maxTurns > 0 && c.progress >= c.maxTurns
}

func (c *Controller) requestLocked(messages []models.Message) models.ChatRequest {
	return models.ChatRequest{
		Messages: append([]models.Message(nil), messages...),
		Mode:     string(c.mode),
		Level:    string(c.level),
	}
}

func (c *Controller) armCountdownLocked() {
	if c.countdown == nil {
		return
	}
	turn := c.turn
	c.countdown.Reset(func() { c.expire(turn) })
}

func (c *Controller) stopCountdownLocked() {
	if c.countdown != nil {
		c.countdown.Stop()
	}
}

// speechLocked returns the speech side effect for an assistant reply, to be
// run after mu is released.
func (c *Controller) speechLocked(text string) func() {
	if c.speaker == nil || c.muted || c.closed || c.state == Ended {
		return func() {}
	}
	speaker, rate := c.speaker, c.rate
	return func() {
		speaker.Cancel()
		speaker.Speak(text, rate)
	}
}

func (c *Controller) recordLocked() *models.InterviewRecord {
	record := &models.InterviewRecord{
		UserID:      c.identity.UserID,
		UserEmail:   c.identity.Email,
		Mode:        string(c.mode),
		Level:       string(c.level),
		CompletedAt: c.completedAt,
	}
	if c.hasScore {
		score := c.score
		record.Score = &score
	}
	return record
}
