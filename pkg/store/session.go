package store

// LearningTopic is the top-level branch of the conversation
type LearningTopic string

// Topic is the most specific subtopic discussed, used to read short replies
// like "yes", "him" or "more" in context
type Topic string

const (
	LearningAboutOud   LearningTopic = "about_oud"
	LearningPlayOud    LearningTopic = "play_oud"
	LearningFamousSong LearningTopic = "famous_song"

	TopicFarid           Topic = "farid"
	TopicHistory         Topic = "history"
	TopicStructure       Topic = "structure"
	TopicTuning          Topic = "tuning"
	TopicStrokes         Topic = "strokes"
	TopicAdvancedStrokes Topic = "advanced_strokes"
	TopicOudPicture      Topic = "oud_picture"
	TopicRecommendation  Topic = "recommendation"
	TopicVideo           Topic = "video"
)

// FriendName is stored when the user declines to share a name
const FriendName = "friend"

// Session represents the conversation context of one sender.
//
// The awaiting flags each mean "the previous turn asked a question whose
// answer this turn resolves". Nothing here keeps two of them from being set
// at once; the dialogue engine's handler order decides which one wins.
type Session struct {
	UserName      string        `json:"user_name,omitempty"`
	AwaitingName  bool          `json:"awaiting_name"`
	LearningTopic LearningTopic `json:"learning_topic,omitempty"`
	LastTopic     Topic         `json:"last_topic,omitempty"`
	LastIntent    string        `json:"last_intent,omitempty"`

	// THE PENDING QUESTIONS
	AwaitingPicture           bool `json:"awaiting_picture,omitempty"`
	AwaitingStringAudio       bool `json:"awaiting_string_audio,omitempty"`
	AwaitingOudBuyOffer       bool `json:"awaiting_oud_buy_offer,omitempty"`
	AwaitingOudRecommendation bool `json:"awaiting_oud_recommendation,omitempty"`
	AwaitingProfessionalOud   bool `json:"awaiting_professional_oud,omitempty"`
	AwaitingBeginnerOud       bool `json:"awaiting_beginner_oud,omitempty"`
	AwaitingVideo             bool `json:"awaiting_video,omitempty"`
	AwaitingSongChoice        bool `json:"awaiting_song_choice,omitempty"`

	VideoWatched bool `json:"video_watched,omitempty"`
}

// NewSession returns the context of a sender seen for the first time
func NewSession() *Session {
	return &Session{AwaitingName: true}
}

// Clone returns an independent copy. Session holds only value fields, so a
// shallow copy is enough.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// HasName reports whether a name (or the friend fallback) was captured
func (s *Session) HasName() bool {
	return s.UserName != ""
}
