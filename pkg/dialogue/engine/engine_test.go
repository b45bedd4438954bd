package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heystack-be/pkg/dialogue/content"
	"heystack-be/pkg/dialogue/intent"
	"heystack-be/pkg/store"
)

type stubMatcher struct {
	answers map[string][]string
	calls   []string
}

func (m *stubMatcher) Match(text string) []string {
	m.calls = append(m.calls, text)
	return m.answers[text]
}

func clockAt(hour int) func() time.Time {
	return func() time.Time { return time.Date(2026, 3, 1, hour, 30, 0, 0, time.UTC) }
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	catalog, err := content.Default()
	require.NoError(t, err)
	return New(catalog, append([]Option{WithClock(clockAt(9))}, opts...)...)
}

func named() *store.Session {
	return &store.Session{UserName: "Sara"}
}

func TestGreetingBands(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "Are you still waking up yet?"},
		{4, "Are you still waking up yet?"},
		{5, "Good Morning"},
		{11, "Good Morning"},
		{12, "Good Afternoon"},
		{17, "Good Afternoon"},
		{18, "Good Evening"},
		{23, "Good Evening"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Greeting(tt.hour), "hour %d", tt.hour)
	}
}

func TestEmptyMessageOnFreshSession(t *testing.T) {
	e := newEngine(t, WithClock(clockAt(18)))
	s := store.NewSession()

	out := e.Process("   ", s, nil)

	require.Len(t, out.Responses, 2)
	assert.Equal(t, StageGreeting, out.Stage)
	assert.Equal(t, "Good Evening! I am Al-Atrash, your guide to the world of the Oud. 🎵", out.Responses[0])
	assert.Equal(t, "May I know your name? (You can type 'skip' if you prefer not to share)", out.Responses[1])
	assert.True(t, s.AwaitingName)
}

func TestEmptyMessageKeepsCapturedName(t *testing.T) {
	e := newEngine(t)
	s := named()

	out := e.Process("", s, nil)

	require.Len(t, out.Responses, 2)
	assert.False(t, s.AwaitingName)
	assert.Equal(t, "Would you like to begin with understanding the Oud or how to play it, Sara?", out.Responses[1])
}

func TestNameCapture(t *testing.T) {
	e := newEngine(t)

	t.Run("i am", func(t *testing.T) {
		s := store.NewSession()
		s.LearningTopic = store.LearningPlayOud
		out := e.Process("I am Sara", s, nil)

		assert.Equal(t, "Sara", s.UserName)
		assert.False(t, s.AwaitingName)
		assert.Empty(t, s.LearningTopic)
		assert.Equal(t, []string{
			"Nice to meet you, Sara! 🎶",
			"Would you like to begin with understanding the Oud or how to play it, Sara?",
		}, out.Responses)
	})

	t.Run("skip", func(t *testing.T) {
		s := store.NewSession()
		out := e.Process("skip", s, nil)

		assert.Equal(t, store.FriendName, s.UserName)
		assert.False(t, s.AwaitingName)
		assert.Equal(t, []string{
			"No problem! I'll call you my friend 🎵",
			"Would you like to begin with understanding the Oud or how to play it?",
		}, out.Responses)
	})

	t.Run("unreadable", func(t *testing.T) {
		s := store.NewSession()
		out := e.Process("what is an oud?", s, nil)

		assert.True(t, s.AwaitingName)
		assert.Empty(t, s.UserName)
		assert.Equal(t, []string{"I didn’t quite catch your name. Could you please tell me again?"}, out.Responses)
		assert.Empty(t, out.Intent, "classification is skipped while a name is awaited")
	})
}

func TestSongChoiceFlow(t *testing.T) {
	e := newEngine(t)
	s := named()

	out := e.Process("how to play", s, nil)
	assert.Equal(t, "play_oud", out.Handler)
	require.Len(t, out.Responses, 4)
	assert.Equal(t, "For example: 1️⃣ Noura Ya Noura \u20032️⃣ Leila", out.Responses[3], "the two options are separated by an em space")
	require.True(t, s.AwaitingSongChoice)
	assert.Equal(t, store.LearningPlayOud, s.LearningTopic)

	out = e.Process("what?", s, nil)
	assert.Equal(t, []string{"Please choose 1 or 2 from the list above 🎶"}, out.Responses)
	assert.True(t, s.AwaitingSongChoice)

	out = e.Process("2", s, nil)
	song := e.catalog.Song(2)
	assert.Equal(t, StageSongChoice, out.Stage)
	assert.Equal(t, []string{
		"Excellent choice! Here's **" + song.Title + "** 🎵",
		`<iframe width="100%" height="200" src="` + song.URL + `" frameborder="0" allowfullscreen></iframe>`,
	}, out.Responses)
	assert.False(t, s.AwaitingSongChoice)
}

func TestSongChoiceByTitle(t *testing.T) {
	e := newEngine(t)

	s := named()
	s.AwaitingSongChoice = true
	out := e.Process("Noura please", s, nil)
	assert.Contains(t, out.Responses[0], e.catalog.Song(1).Title)

	s.AwaitingSongChoice = true
	out = e.Process("layla", s, nil)
	assert.Contains(t, out.Responses[0], e.catalog.Song(2).Title)
}

func TestChooseSongOpensSlot(t *testing.T) {
	e := newEngine(t)
	s := named()

	out := e.Process("famous songs", s, nil)

	assert.Equal(t, "choose_song", out.Handler)
	require.Len(t, out.Responses, 3)
	assert.True(t, strings.HasPrefix(out.Responses[1], "1️⃣ "))
	assert.True(t, s.AwaitingSongChoice)
	assert.True(t, s.VideoWatched)
}

func TestTuningThenYes(t *testing.T) {
	e := newEngine(t)
	s := named()
	s.LearningTopic = store.LearningPlayOud

	out := e.Process("tune", s, nil)
	assert.Equal(t, intent.AskTuningOud, out.Intent)
	assert.Len(t, out.Responses, 4)
	assert.True(t, s.AwaitingStringAudio)
	assert.Equal(t, store.TopicTuning, s.LastTopic)

	out = e.Process("yes", s, nil)
	require.Len(t, out.Responses, 7)
	assert.Equal(t, "affirm_string_audio", out.Handler)
	for i, label := range []string{"C2", "F2", "A2", "D3", "G3", "C4"} {
		assert.Equal(t, `<audio controls src="static/audio/`+label+`.wav"></audio> `+label, out.Responses[i+1])
	}
	assert.False(t, s.AwaitingStringAudio)
}

func TestDenyStringAudio(t *testing.T) {
	e := newEngine(t)
	s := named()
	s.AwaitingStringAudio = true

	out := e.Process("nope", s, nil)

	assert.Equal(t, "deny_string_audio", out.Handler)
	assert.False(t, s.AwaitingStringAudio)
}

func TestAcknowledgeIsIdempotent(t *testing.T) {
	e := newEngine(t)
	s := named()

	for i := 0; i < 3; i++ {
		out := e.Process("ok", s, nil)
		require.NotEmpty(t, out.Responses)
		assert.Equal(t, intent.Acknowledge, out.Intent)
		assert.Equal(t, StageFallback, out.Stage)
	}
}

func TestAcknowledgeInContext(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name    string
		session store.Session
		want    string
	}{
		{
			name:    "after picture",
			session: store.Session{UserName: "Sara", LastTopic: store.TopicOudPicture},
			want:    buyOfferAsk,
		},
		{
			name:    "after recommendation",
			session: store.Session{UserName: "Sara", LastTopic: store.TopicRecommendation},
			want:    "Would you like to see what a *professional* or *beginner* Oud looks like? 🎵",
		},
		{
			name:    "about oud",
			session: store.Session{UserName: "Sara", LearningTopic: store.LearningAboutOud},
			want:    "Glad you’re enjoying this! 🎶 Would you like to explore its *history*, *structure*, or *sound* next?",
		},
		{
			name:    "play oud before video",
			session: store.Session{UserName: "Sara", LearningTopic: store.LearningPlayOud},
			want:    "Awesome! 🎵 Would you like to continue with *tuning*, *strokes*, or maybe watch a short playing video?",
		},
		{
			name:    "play oud after video",
			session: store.Session{UserName: "Sara", LearningTopic: store.LearningPlayOud, VideoWatched: true},
			want:    "Awesome! 🎵 Would you like to continue with *tuning* or *strokes*?",
		},
		{
			name:    "famous song",
			session: store.Session{UserName: "Sara", LearningTopic: store.LearningFamousSong},
			want:    "Nice! Would you like to learn more about the Oud or how to play it?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.session
			out := e.Process("thanks", &s, nil)
			assert.Equal(t, "acknowledge", out.Handler)
			assert.Equal(t, []string{tt.want}, out.Responses)
		})
	}
}

func TestAffirmPrecedence(t *testing.T) {
	e := newEngine(t)

	t.Run("buy offer beats string audio", func(t *testing.T) {
		s := named()
		s.AwaitingStringAudio = true
		s.AwaitingOudBuyOffer = true

		out := e.Process("yes", s, nil)

		assert.Equal(t, intent.Affirm, out.Intent)
		assert.Equal(t, "affirm_buy_offer", out.Handler)
		assert.Len(t, out.Responses, 4)
		assert.False(t, s.AwaitingOudBuyOffer)
		assert.True(t, s.AwaitingOudRecommendation)
		assert.True(t, s.AwaitingStringAudio)
		assert.Equal(t, store.TopicRecommendation, s.LastTopic)
	})

	t.Run("picture beats professional", func(t *testing.T) {
		s := named()
		s.AwaitingPicture = true
		s.AwaitingProfessionalOud = true

		out := e.Process("yes", s, nil)

		assert.Equal(t, "affirm_picture", out.Handler)
		assert.False(t, s.AwaitingPicture)
		assert.True(t, s.AwaitingProfessionalOud)
		assert.Equal(t, store.TopicFarid, s.LastTopic)
	})

	t.Run("professional beats beginner", func(t *testing.T) {
		s := named()
		s.AwaitingProfessionalOud = true
		s.AwaitingBeginnerOud = true

		out := e.Process("yeah", s, nil)

		assert.Equal(t, "affirm_professional", out.Handler)
		assert.Contains(t, out.Responses[1], `alt="Professional Oud"`)
		assert.True(t, s.AwaitingBeginnerOud)
	})

	t.Run("yes after strokes shows advanced strokes", func(t *testing.T) {
		s := named()
		s.LastTopic = store.TopicStrokes

		out := e.Process("yes", s, nil)

		assert.Equal(t, "advanced_strokes", out.Handler)
		assert.Len(t, out.Responses, 6)
		assert.Equal(t, store.TopicAdvancedStrokes, s.LastTopic)
	})
}

func TestBuyOfferFlow(t *testing.T) {
	e := newEngine(t)
	s := named()

	out := e.Process("show me a picture", s, nil)
	assert.Equal(t, "oud_picture", out.Handler)
	assert.Contains(t, out.Responses[1], `alt="Oud"`)
	assert.Equal(t, buyOfferAsk, out.Responses[len(out.Responses)-1])
	require.True(t, s.AwaitingOudBuyOffer)

	out = e.Process("sure", s, nil)
	assert.Equal(t, intent.AffirmContainImage, out.Intent)
	assert.Equal(t, "buy_offer_accepted", out.Handler)
	require.Len(t, out.Responses, 2)
	assert.Contains(t, out.Responses[1], "\n1️⃣ The *best Oud to buy*")
	assert.False(t, s.AwaitingOudBuyOffer)
	require.True(t, s.AwaitingOudRecommendation)

	out = e.Process("something for a student", s, nil)
	assert.Equal(t, "pending_recommendation", out.Handler)
	assert.False(t, s.AwaitingOudRecommendation)
	require.True(t, s.AwaitingBeginnerOud)

	out = e.Process("yes", s, nil)
	assert.Equal(t, "affirm_beginner", out.Handler)
	assert.Contains(t, out.Responses[1], `alt="Beginner Oud"`)
	assert.False(t, s.AwaitingBeginnerOud)
}

func TestPictureOfferReset(t *testing.T) {
	e := newEngine(t)

	s := named()
	out := e.Process("why are you called that", s, nil)
	assert.Equal(t, "name_origin", out.Handler)
	require.True(t, s.AwaitingPicture)

	out = e.Process("structure", s, nil)
	assert.Equal(t, "structure", out.Handler)
	assert.False(t, s.AwaitingPicture)

	s = named()
	s.AwaitingPicture = true
	out = e.Process("yes", s, nil)
	assert.Equal(t, "affirm_picture", out.Handler)
	assert.Equal(t, `<img src="static/farid-al-atrash.jpeg" alt="Farid Al-Atrash" style="max-width:100%;border-radius:10px;margin-top:10px;">`, out.Responses[1])
}

func TestCheckpoint(t *testing.T) {
	e := newEngine(t)

	var seen []*store.Session
	cp := func(s *store.Session) { seen = append(seen, s.Clone()) }

	s := named()
	s.AwaitingPicture = true
	e.Process("listen", s, cp)

	require.Len(t, seen, 1)
	assert.Equal(t, string(intent.ShowOudAudio), seen[0].LastIntent)
	assert.True(t, seen[0].AwaitingPicture, "checkpoint runs before the picture reset")
	assert.False(t, s.AwaitingPicture)

	seen = nil
	e.Process("history", named(), cp)
	assert.Empty(t, seen, "history answers before the checkpoint")

	seen = nil
	e.Process("I am Sara", store.NewSession(), cp)
	assert.Empty(t, seen)
}

func TestHistoryAndUnderstanding(t *testing.T) {
	e := newEngine(t)

	s := named()
	out := e.Process("history", s, nil)
	assert.Equal(t, "history", out.Handler)
	assert.Len(t, out.Responses, 2)
	assert.Equal(t, store.TopicHistory, s.LastTopic)
	assert.Equal(t, store.LearningAboutOud, s.LearningTopic)

	s = named()
	out = e.Process("Understanding", s, nil)
	assert.Equal(t, "understanding", out.Handler)
	assert.Equal(t, []string{"Let's continue exploring the Oud 🎶", aboutOudMenu}, out.Responses)

	s = named()
	out = e.Process("I want to understand it", s, nil)
	assert.Equal(t, "about_oud", out.Handler)
	assert.Equal(t, store.LearningAboutOud, s.LearningTopic)
}

func TestMediaHandlers(t *testing.T) {
	e := newEngine(t)

	out := e.Process("listen", named(), nil)
	assert.Equal(t, "oud_audio", out.Handler)
	last := out.Responses[len(out.Responses)-1]
	assert.Equal(t, `<audio controls src="static/audio/oud_sample.mp3" style="margin-top:10px;"></audio>`, last)
	assert.NotContains(t, out.Responses[0], "<audio", "facts come before the audio")

	out = e.Process("compare them", named(), nil)
	assert.Equal(t, "compare", out.Handler)
	require.Len(t, out.Responses, 6)
	assert.Equal(t, `<div><img src="static/images/oud_difference.png" style="max-width:220px;border-radius:10px;"></div>`, out.Responses[5])

	s := named()
	s.AwaitingVideo = true
	out = e.Process("tutorial", s, nil)
	assert.Equal(t, "show_video", out.Handler)
	assert.Contains(t, out.Responses[1], e.catalog.Videos.Lesson)
	assert.False(t, s.AwaitingVideo)
	assert.Equal(t, store.TopicVideo, s.LastTopic)

	out = e.Process("hmm", s, nil)
	assert.Equal(t, "video_nudge", out.Handler)

	s = named()
	s.AwaitingVideo = true
	out = e.Process("watch", s, nil)
	assert.Equal(t, "affirm_video", out.Handler)
	assert.Contains(t, out.Responses[1], e.catalog.Videos.Tutorial)
	assert.True(t, s.VideoWatched)
	assert.False(t, s.AwaitingVideo)
}

func TestExplainMoreTable(t *testing.T) {
	tests := []struct {
		learning store.LearningTopic
		last     store.Topic
		first    string
	}{
		{store.LearningPlayOud, store.TopicStrokes, "Sure! Let’s go into more detail about the *basic strokes*. 🎶"},
		{store.LearningPlayOud, store.TopicTuning, "Of course! Here’s more about *tuning* your Oud 🎵"},
		{store.LearningPlayOud, store.TopicVideo, "Sure! Could you tell me which part you want me to explain more — *tuning* or *strokes*?"},
		{store.LearningAboutOud, store.TopicStructure, "The structure of the Oud is fascinating! 🎶"},
		{store.LearningAboutOud, store.TopicHistory, "Historically, the Oud evolved from the Persian barbat and influenced the European lute. 🎵"},
		{store.LearningAboutOud, "", "Sure! Which topic would you like more details about — *history*, *structure*, or *sound*?"},
		{"", store.TopicStrokes, "I’d love to explain more! Which topic would you like to continue with — the Oud itself or how to play it?"},
	}
	for _, tt := range tests {
		got := explainMoreLines(tt.learning, tt.last)
		require.NotEmpty(t, got)
		assert.Equal(t, tt.first, got[0], "%s/%s", tt.learning, tt.last)
	}

	e := newEngine(t)
	s := named()
	s.LearningTopic = store.LearningPlayOud
	s.LastTopic = store.TopicTuning
	out := e.Process("tell me more", s, nil)
	assert.Equal(t, "explain_more", out.Handler)
	assert.Len(t, out.Responses, 4)
}

func TestFallback(t *testing.T) {
	m := &stubMatcher{answers: map[string][]string{"xyzzy plugh": {"p1", "p2"}}}
	e := newEngine(t, WithMatcher(m))

	out := e.Process("  xyzzy plugh ", named(), nil)
	assert.Equal(t, StageFallback, out.Stage)
	assert.Equal(t, intent.Question, out.Intent)
	assert.Equal(t, []string{"p1", "p2"}, out.Responses)
	assert.Equal(t, []string{"xyzzy plugh"}, m.calls)

	out = e.Process("qwerty", named(), nil)
	assert.Equal(t, []string{
		"I’m not sure I understood. Could you rephrase that, or would you like to explore the Oud’s History, Structure, Audio, or Image?",
	}, out.Responses)
}

func TestRecommendationIntentFallsBack(t *testing.T) {
	e := newEngine(t)
	out := e.Process("which oud should i buy", named(), nil)

	assert.Equal(t, intent.AskOudRecommendation, out.Intent)
	assert.Equal(t, StageFallback, out.Stage)
	assert.NotEmpty(t, out.Responses)
}

func TestConversationInvariants(t *testing.T) {
	e := newEngine(t)
	s := store.NewSession()

	script := []string{
		"", "hello there", "my name is adam",
		"", "hi", "understanding the oud", "history", "tell me more", "structure",
		"ok", "show me a photo", "ok", "best", "yes", "how to play", "1",
		"tune", "no", "basic strokes", "yes", "explain more", "bye", "video", "thanks",
		"who named you", "yes", "he", "student", "xyzzy", "learn",
	}

	for i, msg := range script {
		out := e.Process(msg, s, nil)
		require.NotEmptyf(t, out.Responses, "turn %d %q", i, msg)
		if i >= 2 {
			assert.Falsef(t, s.AwaitingName, "turn %d %q re-armed the name slot", i, msg)
		}
	}
	assert.Equal(t, "Adam", s.UserName)
}

func TestProcessDoesNotLeakAcrossSessions(t *testing.T) {
	e := newEngine(t)
	a, b := named(), named()
	before := b.Clone()

	e.Process("tune", a, nil)
	e.Process("show me a photo", a, nil)

	if diff := cmp.Diff(before, b); diff != "" {
		t.Fatalf("session b changed (-want +got):\n%s", diff)
	}
}

func TestHandlerOrder(t *testing.T) {
	names := newEngine(t).Handlers()
	require.NotEmpty(t, names)

	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	assert.Equal(t, 0, index["history"])
	assert.Equal(t, len(names)-1, index["buy_offer_accepted"])
	assert.Less(t, index["affirm_buy_offer"], index["affirm_picture"])
	assert.Less(t, index["affirm_beginner"], index["affirm_string_audio"])
	assert.Less(t, index["affirm_string_audio"], index["advanced_strokes"])
	assert.Less(t, index["acknowledge"], index["buy_offer_accepted"])
}
