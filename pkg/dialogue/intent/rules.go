package intent

import (
	"regexp"
	"strings"

	"heystack-be/pkg/store"
)

// Predicate decides whether a rule fires for the normalised text
type Predicate func(txt string, s *store.Session) bool

// Rule maps a predicate to an intent. Effect, when set, mutates the session
// as part of classification (the learning-mode cues record the branch).
type Rule struct {
	Name   string
	Intent Intent
	Match  Predicate
	Effect func(s *store.Session)
}

var (
	affirmTokens      = []string{"yes", "sure", "ok", "okay", "yeah"}
	videoAffirmTokens = []string{"yes", "sure", "watch", "video"}
	acknowledgeTokens = []string{
		"okay", "ok", "sure", "nice", "great", "thanks", "cool", "good",
		"alright", "amazing", "wonderful", "what else",
	}
	genericAffirmTokens = []string{"yes", "sure", "yeah", "ok", "okay"}
	denyTokens          = []string{"no", "not really", "skip", "nope"}
	explainMorePhrases  = []string{
		"explain more", "give me more details", "clarify", "more info", "tell me more",
		"more about", "can you elaborate", "go deeper", "explain it more", "more details",
	}
)

const nameOriginPattern = `\b(` +
	`why\s+(are|r|did|do|you('| a)?re)\s+(you\s+)?(called|named|have\s+that\s+name)|` +
	`who\s+(named|is|was)\s+(you|al[\s-]?atrash)|` +
	`who\s+(do|are)\s+you\s+named\s+after|` +
	`what\s+does\s+al[\s-]?atrash\s+mean|` +
	`tell\s+me\s+about\s+(al[\s-]?atrash|farid)|` +
	`farid\s+al[\s-]?atrash` +
	`)\b`

// DefaultRules is the classification table in priority order, highest first.
// Rules overlap; the order is the contract. Two overlaps are kept as they
// have always behaved:
//   - "advanced stroke" contains "stroke", so it classifies as ask_strokes_oud;
//     only "advanced technique" reaches show_advanced_strokes.
//   - the exact "structure" phrases and the broader structure regex both
//     yield show_oud_structure, but audio/video cues sit between them.
func DefaultRules() []Rule {
	return []Rule{
		// 1. greetings and farewells
		{Name: "greet", Intent: Greet, Match: matches(`\b(hello|hi|hey|salam)\b`)},
		{Name: "goodbye", Intent: Goodbye, Match: matches(`\b(bye|goodbye|see you|good night)\b`)},

		// 2. who the bot is named after
		{Name: "name_origin", Intent: AskNameOrigin, Match: matches(nameOriginPattern)},

		// 3. loose learning-mode cues
		{
			Name:   "about_oud_mode",
			Intent: ChooseAboutOud,
			Match:  containsAny("understand"),
			Effect: func(s *store.Session) { s.LearningTopic = store.LearningAboutOud },
		},
		{
			Name:   "play_oud_mode",
			Intent: ChoosePlayOud,
			Match:  containsAny("play"),
			Effect: func(s *store.Session) { s.LearningTopic = store.LearningPlayOud },
		},

		// 4. exact subtopic picks
		{Name: "history_exact", Intent: ShowOudHistory, Match: exactly("history", "the history", "tell me history", "its history")},
		{Name: "structure_exact", Intent: ShowOudStructure, Match: exactly("structure", "its structure", "about structure", "the structure")},

		// 5. buying advice
		{Name: "recommendation", Intent: AskOudRecommendation, Match: matches(`(buy|choose|recommend|select|which).*oud`)},

		// 6. playing cues
		{Name: "tuning", Intent: AskTuningOud, Match: containsAny("tune", "tuning")},
		{Name: "strokes", Intent: AskStrokesOud, Match: containsAny("stroke", "basic", "practice")},
		{Name: "advanced_strokes", Intent: ShowAdvancedStrokes, Match: containsAny("advanced stroke", "advanced technique")},

		// 7. pronoun follow-up about Farid
		{
			Name:   "farid_follow_up",
			Intent: ShowFaridInfo,
			Match:  all(containsAny("him", "he", "his"), lastTopicIs(store.TopicFarid)),
		},

		// 8. media keywords
		{Name: "picture", Intent: ShowOudPicture, Match: matches(`\b(show me oud|how oud looks|picture of oud|picture|how oud looks like|it's photo|image|it's image|photo|it's picture)\b`)},
		{Name: "structure", Intent: ShowOudStructure, Match: matches(`\b(structure|structure of| the structure | parts|parts of|diagram|diagram of|anatomy|anatomy of).*(oud)\b`)},
		{Name: "string_audio", Intent: HearStringAudio, Match: containsAny("hear sound", "hear the sound of string", "play sound")},
		{Name: "audio", Intent: ShowOudAudio, Match: matches(`(sound|audio|hear|listen)`)},
		{Name: "video", Intent: ShowVideo, Match: matches(`\b(video|watch video|play video|see video|show video|tutorial video|tutorial)\b`)},

		// 9. beginner vs professional
		{Name: "compare", Intent: CompareOudTypes, Match: containsAny("difference", "compare", "different")},

		// 10. answers to a pending question
		{
			Name:   "affirm_string_audio",
			Intent: Affirm,
			Match:  all(flag(func(s *store.Session) bool { return s.AwaitingStringAudio }), containsAny(affirmTokens...)),
		},
		{
			Name:   "affirm_buy_offer",
			Intent: AffirmContainImage,
			Match:  all(flag(func(s *store.Session) bool { return s.AwaitingOudBuyOffer }), containsAny(affirmTokens...)),
		},
		{
			Name:   "affirm_video",
			Intent: AffirmVideo,
			Match:  all(flag(func(s *store.Session) bool { return s.AwaitingVideo }), containsAny(videoAffirmTokens...)),
		},

		// 11. neutral acknowledgement
		{Name: "acknowledge", Intent: Acknowledge, Match: containsAny(acknowledgeTokens...)},

		// 12. ungated yes / no
		{Name: "affirm", Intent: Affirm, Match: containsAny(genericAffirmTokens...)},
		{Name: "deny", Intent: Deny, Match: containsAny(denyTokens...)},

		// 13. deeper explanation
		{Name: "explain_more", Intent: ExplainMore, Match: containsAny(explainMorePhrases...)},

		// 14. loose beginner and song cues
		{Name: "beginner", Intent: ShowBeginnerOud, Match: matches(`(beginner|beginners|student)`)},
		{Name: "song", Intent: ChooseSong, Match: matches(`(famous song|learn song|songs|oud songs|music by farid)`)},
	}
}

func matches(pattern string) Predicate {
	re := regexp.MustCompile(pattern)
	return func(txt string, _ *store.Session) bool {
		return re.MatchString(txt)
	}
}

func containsAny(words ...string) Predicate {
	return func(txt string, _ *store.Session) bool {
		return ContainsAny(txt, words)
	}
}

func exactly(phrases ...string) Predicate {
	set := make(map[string]struct{}, len(phrases))
	for _, p := range phrases {
		set[p] = struct{}{}
	}
	return func(txt string, _ *store.Session) bool {
		_, ok := set[txt]
		return ok
	}
}

func lastTopicIs(topic store.Topic) Predicate {
	return func(_ string, s *store.Session) bool {
		return s.LastTopic == topic
	}
}

func flag(get func(s *store.Session) bool) Predicate {
	return func(_ string, s *store.Session) bool {
		return get(s)
	}
}

func all(preds ...Predicate) Predicate {
	return func(txt string, s *store.Session) bool {
		for _, p := range preds {
			if !p(txt, s) {
				return false
			}
		}
		return true
	}
}

// ContainsAny reports whether s contains any of the substrings
func ContainsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
