package progress

import (
	"fmt"
	"sync"
)

// Stage is a step of recommendation generation. Stages advance linearly.
type Stage string

const (
	StageLoadingResorts    Stage = "loading_resorts"
	StageFetchingWeather   Stage = "fetching_weather"
	StageScrapingSnow      Stage = "scraping_snow"
	StageFetchingTransport Stage = "fetching_transport"
	StageScoring           Stage = "scoring"
	StageGeneratingAI      Stage = "generating_ai"
	StageComplete          Stage = "complete"
)

// Update is a single progress notification.
type Update struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
}

// Reporter receives progress notifications. Calls must not block the caller
// for long and Increment may be called concurrently.
type Reporter interface {
	SetStage(stage Stage, message string, total int)
	Increment(current, total int)
	Complete()
}

// Nop discards every update.
type Nop struct{}

func (Nop) SetStage(Stage, string, int) {}
func (Nop) Increment(int, int)          {}
func (Nop) Complete()                   {}

// DefaultBuffer is large enough for a full run over the catalog without a reader.
const DefaultBuffer = 256

// Tracker queues updates on a channel for a single consumer.
type Tracker struct {
	mu    sync.Mutex
	stage Stage

	// sendMu guards closed; senders hold it shared so Close never races a send.
	sendMu  sync.RWMutex
	closed  bool
	updates chan Update
	done    chan struct{}
	once    sync.Once
}

func NewTracker(buffer int) *Tracker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Tracker{
		updates: make(chan Update, buffer),
		done:    make(chan struct{}),
	}
}

// Updates is closed by Close.
func (t *Tracker) Updates() <-chan Update {
	return t.updates
}

func (t *Tracker) SetStage(stage Stage, message string, total int) {
	t.mu.Lock()
	t.stage = stage
	t.mu.Unlock()

	t.send(Update{Stage: stage, Message: message, Total: total})
}

// Increment reports a completion count inside the current stage. It is a no-op
// before the first SetStage. Pairs may arrive out of order.
func (t *Tracker) Increment(current, total int) {
	t.mu.Lock()
	stage := t.stage
	t.mu.Unlock()

	if stage == "" {
		return
	}
	t.send(Update{
		Stage:   stage,
		Message: IncrementMessage(stage, current, total),
		Current: current,
		Total:   total,
	})
}

func (t *Tracker) Complete() {
	t.mu.Lock()
	t.stage = StageComplete
	t.mu.Unlock()

	t.send(Update{Stage: StageComplete, Message: "Complete!"})
}

// Abandon signals that the consumer stopped reading. Later updates are dropped
// instead of blocking the producer.
func (t *Tracker) Abandon() {
	t.once.Do(func() { close(t.done) })
}

// Close ends the update stream. It must be called once the producer is finished.
func (t *Tracker) Close() {
	t.sendMu.Lock()
	defer t.sendMu.Unlock()
	if !t.closed {
		t.closed = true
		close(t.updates)
	}
}

func (t *Tracker) send(u Update) {
	t.sendMu.RLock()
	defer t.sendMu.RUnlock()
	if t.closed {
		return
	}

	select {
	case t.updates <- u:
	case <-t.done:
	}
}

// StartMessage is the stage-entry message for the fetch stages.
func StartMessage(stage Stage, total int) string {
	return IncrementMessage(stage, 0, total)
}

func IncrementMessage(stage Stage, current, total int) string {
	switch stage {
	case StageFetchingWeather:
		return fmt.Sprintf("Fetching weather from OpenWeather... (%d/%d)", current, total)
	case StageScrapingSnow:
		return fmt.Sprintf("Getting snow conditions from snow-forecast.com... (%d/%d)", current, total)
	case StageFetchingTransport:
		return fmt.Sprintf("Getting transport from Swiss Transport API... (%d/%d)", current, total)
	default:
		return fmt.Sprintf("Processing... (%d/%d)", current, total)
	}
}
