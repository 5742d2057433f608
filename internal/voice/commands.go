// Package voice maps recognized speech to application actions. Producers
// hand recognized phrases to Submit, which never blocks; a single dispatcher
// goroutine drains the queue and invokes the registered callbacks, so
// callbacks never run on a producer goroutine.
package voice

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// phraseActions maps spoken phrases to action names. Matching is
// substring-based over the lowercased transcript, first hit wins.
var phraseActions = []struct {
	Phrase string
	Action string
}{
	{"new chat", "new_chat"},
	{"clear chat", "new_chat"},
	{"start new", "new_chat"},
	{"logout", "logout"},

	{"use gemini", "select_model_gemini"},
	{"switch to gemini", "select_model_gemini"},
	{"use claude", "select_model_claude"},
	{"switch to claude", "select_model_claude"},
	{"use gpt", "select_model_gpt"},
	{"switch to gpt", "select_model_gpt"},
	{"use openai", "select_model_gpt"},
	{"switch to openai", "select_model_gpt"},

	{"increase temperature", "increase_temperature"},
	{"more creative", "increase_temperature"},
	{"decrease temperature", "decrease_temperature"},
	{"more precise", "decrease_temperature"},

	{"send message", "send_message"},
	{"submit message", "send_message"},
}

// Command is one recognized utterance, resolved to an action. Payload
// carries dictated message text for send_message.
type Command struct {
	Action  string
	Payload string
}

type Callback func(cmd Command)

type Processor struct {
	queue  chan Command
	logger *zap.Logger

	mu        sync.RWMutex
	callbacks map[string]Callback

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewProcessor(queueSize int, logger *zap.Logger) *Processor {
	if queueSize <= 0 {
		queueSize = 16
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		queue:     make(chan Command, queueSize),
		logger:    logger,
		callbacks: make(map[string]Callback),
		done:      make(chan struct{}),
	}
}

func (p *Processor) Register(action string, cb Callback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks[action] = cb
}

// Resolve maps a transcript to a Command; ok is false when no phrase
// matches.
func Resolve(transcript string) (Command, bool) {
	text := strings.ToLower(strings.TrimSpace(transcript))
	if text == "" {
		return Command{}, false
	}

	for _, entry := range phraseActions {
		if !strings.Contains(text, entry.Phrase) {
			continue
		}
		cmd := Command{Action: entry.Action}
		if entry.Action == "send_message" {
			// "send message hello there" dictates "hello there".
			if _, rest, found := strings.Cut(text, "message"); found {
				cmd.Payload = strings.TrimSpace(rest)
			}
		}
		return cmd, true
	}

	// Dictation mode: "dictate <message>".
	if strings.Contains(text, "dictate") {
		message := strings.TrimSpace(strings.ReplaceAll(text, "dictate", ""))
		if message != "" {
			return Command{Action: "send_message", Payload: message}, true
		}
	}
	return Command{}, false
}

// Submit enqueues a recognized transcript. Returns false when no phrase
// matched or the queue is full; a full queue drops the command rather than
// blocking the producer.
func (p *Processor) Submit(transcript string) bool {
	cmd, ok := Resolve(transcript)
	if !ok {
		return false
	}
	select {
	case p.queue <- cmd:
		return true
	default:
		p.logger.Warn("voice command queue full, dropping command",
			zap.String("action", cmd.Action))
		return false
	}
}

// Start launches the dispatcher goroutine. Safe to call once; commands
// submitted before Start stay queued.
func (p *Processor) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		runCtx, cancel := context.WithCancel(ctx)
		p.cancel = cancel
		go p.run(runCtx)
	})
}

func (p *Processor) run(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-p.queue:
			p.mu.RLock()
			cb := p.callbacks[cmd.Action]
			p.mu.RUnlock()
			if cb == nil {
				p.logger.Debug("no callback registered for voice command",
					zap.String("action", cmd.Action))
				continue
			}
			cb(cmd)
		}
	}
}

func (p *Processor) Close() {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}
}
