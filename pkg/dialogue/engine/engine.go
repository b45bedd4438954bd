// Package engine runs one chat turn: it resolves pending slots, classifies
// the message, picks the first handler that answers it and mutates the
// session for the next turn.
package engine

import (
	"strings"
	"time"

	"heystack-be/pkg/dialogue/content"
	"heystack-be/pkg/dialogue/fallback"
	"heystack-be/pkg/dialogue/intent"
	"heystack-be/pkg/dialogue/name"
	"heystack-be/pkg/dialogue/response"
	"heystack-be/pkg/store"
)

// Stage names the part of the turn algorithm that answered
type Stage string

const (
	StageGreeting   Stage = "greeting"
	StageName       Stage = "name"
	StageSongChoice Stage = "song_choice"
	StageDispatch   Stage = "dispatch"
	StageFallback   Stage = "fallback"
)

// Checkpoint is called once per dispatched turn, right after classification
// and before any handler runs. Callers use it to persist the session.
type Checkpoint func(s *store.Session)

// Outcome is the result of one turn
type Outcome struct {
	Responses []string
	Stage     Stage
	Intent    intent.Intent // empty unless the turn reached classification
	Handler   string        // handler that answered, empty outside dispatch
}

// Engine is stateless between turns; all conversation state lives in the
// session passed to Process. Safe for concurrent use across sessions.
type Engine struct {
	catalog    *content.Catalog
	classifier *intent.Classifier
	matcher    fallback.Matcher
	now        func() time.Time
	handlers   []handler
}

// Option configures an Engine
type Option func(*Engine)

// WithClock replaces time.Now for the time-of-day greeting
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMatcher sets the fallback text matcher
func WithMatcher(m fallback.Matcher) Option {
	return func(e *Engine) { e.matcher = m }
}

// WithClassifier replaces the default rule table
func WithClassifier(c *intent.Classifier) Option {
	return func(e *Engine) { e.classifier = c }
}

// New creates an engine serving catalog. Without WithMatcher the engine
// indexes the catalog's knowledge paragraphs.
func New(catalog *content.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		now:     time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	if e.classifier == nil {
		e.classifier = intent.NewClassifier()
	}
	if e.matcher == nil {
		e.matcher = fallback.NewTFIDF(catalog.Knowledge)
	}
	e.handlers = e.defaultHandlers()
	return e
}

// Process handles text for the session s, mutating s in place. checkpoint
// may be nil.
func (e *Engine) Process(text string, s *store.Session, checkpoint Checkpoint) Outcome {
	text = strings.TrimSpace(text)

	if text == "" {
		return e.greet(s)
	}
	if s.AwaitingName {
		return e.resolveName(text, s)
	}
	if s.HasName() && s.AwaitingSongChoice {
		return e.resolveSong(text, s)
	}
	return e.dispatch(text, s, checkpoint)
}

// greet answers the empty first-contact message. A session that already has
// a name keeps it: the name slot is only armed for unnamed senders.
func (e *Engine) greet(s *store.Session) Outcome {
	hello := Greeting(e.now().Hour()) + "! I am Al-Atrash, your guide to the world of the Oud. 🎵"
	if s.HasName() {
		return Outcome{
			Stage:     StageGreeting,
			Responses: []string{hello, menuQuestion(s.UserName)},
		}
	}
	s.AwaitingName = true
	return Outcome{
		Stage: StageGreeting,
		Responses: []string{
			hello,
			"May I know your name? (You can type 'skip' if you prefer not to share)",
		},
	}
}

func menuQuestion(userName string) string {
	if userName == "" || strings.EqualFold(userName, store.FriendName) {
		return "Would you like to begin with understanding the Oud or how to play it?"
	}
	return "Would you like to begin with understanding the Oud or how to play it, " + userName + "?"
}

// Greeting returns the time-of-day salutation for hour (0-23)
func Greeting(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "Good Morning"
	case hour >= 12 && hour < 18:
		return "Good Afternoon"
	case hour >= 18 && hour < 24:
		return "Good Evening"
	default:
		return "Are you still waking up yet?"
	}
}

func (e *Engine) resolveName(text string, s *store.Session) Outcome {
	n := name.Extract(text)
	if n == "" {
		return Outcome{
			Stage:     StageName,
			Responses: []string{"I didn’t quite catch your name. Could you please tell me again?"},
		}
	}

	s.UserName = n
	s.AwaitingName = false
	s.LearningTopic = ""

	if strings.EqualFold(n, store.FriendName) {
		return Outcome{
			Stage:     StageName,
			Responses: []string{"No problem! I'll call you my friend 🎵", menuQuestion(n)},
		}
	}
	return Outcome{
		Stage:     StageName,
		Responses: []string{"Nice to meet you, " + n + "! 🎶", menuQuestion(n)},
	}
}

// resolveSong reads text as a pick from the song catalog. Matching is by
// substring, so "1" anywhere in the text selects the first song.
func (e *Engine) resolveSong(text string, s *store.Session) Outcome {
	choice := strings.ToLower(text)

	var n int
	switch {
	case strings.Contains(choice, "noura") || strings.Contains(choice, "1"):
		n = 1
	case strings.Contains(choice, "leila") || strings.Contains(choice, "layla") || strings.Contains(choice, "2"):
		n = 2
	default:
		return Outcome{
			Stage:     StageSongChoice,
			Responses: []string{"Please choose 1 or 2 from the list above 🎶"},
		}
	}

	song := e.catalog.Song(n)
	s.AwaitingSongChoice = false

	var b response.Builder
	b.Say("Excellent choice! Here's **" + song.Title + "** 🎵")
	b.Add(response.Video(song.URL))
	return Outcome{Stage: StageSongChoice, Responses: b.Strings()}
}

func (e *Engine) dispatch(text string, s *store.Session, checkpoint Checkpoint) Outcome {
	res := e.classifier.Classify(text, s)
	s.LastIntent = res.Intent.String()

	t := &turn{
		text:   text,
		lower:  strings.ToLower(text),
		intent: res.Intent,
		s:      s,
	}

	checkpointed := false
	for _, h := range e.handlers {
		if h.stage == postCheckpoint && !checkpointed {
			checkpointed = true
			if checkpoint != nil {
				checkpoint(s)
			}
			// a stale picture offer must not resurface once the user moved on
			if s.AwaitingPicture && res.Intent != intent.Affirm && res.Intent != intent.AskNameOrigin {
				s.AwaitingPicture = false
			}
		}
		if h.run(t); !t.out.Empty() {
			return t.outcome(StageDispatch, h.name)
		}
	}

	if answers := e.matcher.Match(text); len(answers) > 0 {
		t.out.Say(answers...)
	} else {
		t.out.Say("I’m not sure I understood. Could you rephrase that, or would you like to explore the Oud’s History, Structure, Audio, or Image?")
	}
	return t.outcome(StageFallback, "")
}

// Handlers lists handler names in evaluation order
func (e *Engine) Handlers() []string {
	out := make([]string, len(e.handlers))
	for i, h := range e.handlers {
		out[i] = h.name
	}
	return out
}

type turn struct {
	text   string
	lower  string
	intent intent.Intent
	s      *store.Session
	out    response.Builder
}

func (t *turn) outcome(stage Stage, handler string) Outcome {
	return Outcome{
		Responses: t.out.Strings(),
		Stage:     stage,
		Intent:    t.intent,
		Handler:   handler,
	}
}
