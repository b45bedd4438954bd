package engine

import (
	"path"
	"regexp"
	"strings"

	"heystack-be/pkg/dialogue/content"
	"heystack-be/pkg/dialogue/intent"
	"heystack-be/pkg/dialogue/response"
	"heystack-be/pkg/store"
)

type stage int

const (
	preCheckpoint stage = iota
	postCheckpoint
)

// handler answers a turn by writing to t.out. A handler that writes nothing
// must leave the session untouched so the next one can try.
type handler struct {
	name  string
	stage stage
	run   func(t *turn)
}

var (
	wantsBestOud     = regexp.MustCompile(`(best|buy|professional|high quality)`)
	wantsBeginnerOud = regexp.MustCompile(`(beginner|learn|student|easy|beginners)`)
	mentionsBestOud  = regexp.MustCompile(`\b(best oud)\b`)
	mentionsBeginner = regexp.MustCompile(`\b(most suitable oud|beginner oud|oud for beginners|oud for beginner)\b`)
)

// defaultHandlers is the dispatch chain. Order is behaviour: several
// handlers accept the same intent under different flags, and the first one
// whose condition holds wins. The affirm branches in particular are tried as
// buy offer, picture, professional oud, beginner oud, string audio, strokes.
func (e *Engine) defaultHandlers() []handler {
	pre := func(n string, run func(t *turn)) handler { return handler{name: n, stage: preCheckpoint, run: run} }
	post := func(n string, run func(t *turn)) handler { return handler{name: n, stage: postCheckpoint, run: run} }

	return []handler{
		pre("history", e.history),
		pre("understanding", e.understanding),

		post("choose_song", e.chooseSong),
		post("song_request", e.songRequest),
		post("farid_info", e.faridInfo),
		post("oud_picture", e.oudPicture),
		post("affirm_buy_offer", e.affirmBuyOffer),
		post("affirm_picture", e.affirmPicture),
		post("affirm_professional", e.affirmProfessional),
		post("affirm_beginner", e.affirmBeginner),
		post("pending_recommendation", e.pendingRecommendation),
		post("best_oud", e.bestOud),
		post("beginner_oud_request", e.beginnerOudRequest),
		post("affirm_video", e.affirmVideo),
		post("show_video", e.showVideo),
		post("affirm_string_audio", e.affirmStringAudio),
		post("hear_string_audio", e.hearStringAudio),
		post("deny_string_audio", e.denyStringAudio),
		post("name_origin", e.nameOrigin),
		post("about_oud", e.aboutOud),
		post("play_oud", e.playOud),
		post("tuning", e.tuning),
		post("oud_audio", e.oudAudio),
		post("structure", e.structure),
		post("strokes", e.strokes),
		post("advanced_strokes", e.advancedStrokes),
		post("explain_more", e.explainMore),
		post("goodbye", e.goodbye),
		post("continue_learning", e.continueLearning),
		post("video_nudge", e.videoNudge),
		post("acknowledge", e.acknowledge),
		post("beginner_oud", e.beginnerOud),
		post("compare", e.compare),
		post("buy_offer_accepted", e.buyOfferAccepted),
	}
}

const (
	aboutOudMenu  = "Would you like to learn its History, Structure, Audio or it's image?"
	buyOfferAsk   = "Would you like to *buy an Oud*? I can provide you with helpful information before choosing one 🎸"
	faridIntro    = "Here’s **Farid Al-Atrash**, the legendary King of the Oud! 🎶"
	stringIntro   = "Excellent! Let's play each string sound so you can check if yours matches 🎵"
	greatQuestion = "That’s a great question! 🎸 Choosing the right Oud can make a big difference."
)

func (e *Engine) history(t *turn) {
	if t.intent != intent.ShowOudHistory {
		return
	}
	t.out.Say(
		"The Oud is one of the oldest string instruments, dating back over 5,000 years. 🎶",
		"It originated in Mesopotamia and evolved into the modern Oud we know in Arabic music today.",
	)
	t.s.LastTopic = store.TopicHistory
	t.s.LearningTopic = store.LearningAboutOud
}

func (e *Engine) understanding(t *turn) {
	switch t.lower {
	case "understanding the oud", "understanding", "understand":
	default:
		return
	}
	t.s.LearningTopic = store.LearningAboutOud
	t.out.Say("Let's continue exploring the Oud 🎶", aboutOudMenu)
}

func (e *Engine) chooseSong(t *turn) {
	if t.intent != intent.ChooseSong {
		return
	}
	t.out.Say(
		"Great! Which song would you like to learn? 🎶",
		"1️⃣ "+e.catalog.Song(1).Title,
		"2️⃣ "+e.catalog.Song(2).Title,
	)
	t.s.VideoWatched = true
	t.s.AwaitingSongChoice = true
}

// songRequest does not open the song slot; only choose_song does
func (e *Engine) songRequest(t *turn) {
	if !strings.Contains(t.lower, "famous song") && !strings.Contains(t.lower, "learn song") {
		return
	}
	t.s.LearningTopic = store.LearningFamousSong
	t.out.Say("Great! Which song would you like to learn? 🎶")
}

func (e *Engine) sayFarid(t *turn) {
	farid := e.catalog.Topic(content.TopicFarid)
	t.out.Say(faridIntro)
	t.out.Images("Farid Al-Atrash", farid.Images...)
	t.out.Say(farid.Facts...)
}

func (e *Engine) faridInfo(t *turn) {
	if t.intent != intent.ShowFaridInfo {
		return
	}
	e.sayFarid(t)
}

func (e *Engine) oudPicture(t *turn) {
	if t.intent != intent.ShowOudPicture {
		return
	}
	pic := e.catalog.Topic(content.TopicPicture)
	t.out.Say("Here’s what the Oud looks like 🎵")
	t.out.Images("Oud", pic.Images...)
	t.out.Say(pic.Facts...)
	t.out.Say(buyOfferAsk)
	t.s.AwaitingOudBuyOffer = true
	t.s.LastTopic = store.TopicOudPicture
}

func (e *Engine) affirmBuyOffer(t *turn) {
	if t.intent != intent.Affirm || !t.s.AwaitingOudBuyOffer {
		return
	}
	t.out.Say(
		greatQuestion,
		"Would you like me to help you find:",
		"1️⃣ The *best Oud to buy* (for quality & sound), or",
		"2️⃣ The *most suitable Oud for beginners* to learn on?",
	)
	t.s.AwaitingOudBuyOffer = false
	t.s.AwaitingOudRecommendation = true
	t.s.LastTopic = store.TopicRecommendation
}

func (e *Engine) affirmPicture(t *turn) {
	if t.intent != intent.Affirm || !t.s.AwaitingPicture {
		return
	}
	e.sayFarid(t)
	t.s.AwaitingPicture = false
	t.s.LastTopic = store.TopicFarid
}

func (e *Engine) affirmProfessional(t *turn) {
	if t.intent != intent.Affirm || !t.s.AwaitingProfessionalOud {
		return
	}
	pro := e.catalog.Topic(content.TopicProfessional)
	t.out.Say("Here’s what a *professional Oud* looks like 🎵")
	t.out.Images("Professional Oud", pro.Images...)
	t.out.Say(pro.Facts...)
	t.s.AwaitingProfessionalOud = false
}

func (e *Engine) affirmBeginner(t *turn) {
	if t.intent != intent.Affirm || !t.s.AwaitingBeginnerOud {
		return
	}
	beg := e.catalog.Topic(content.TopicBeginner)
	t.out.Say("Here’s what a *beginner’s Oud* looks like 🎶")
	t.out.Images("Beginner Oud", beg.Images...)
	t.out.Say(beg.Facts...)
	t.s.AwaitingBeginnerOud = false
}

// pendingRecommendation answers the best-vs-beginner menu. Text that picks
// neither leaves the menu open and falls through.
func (e *Engine) pendingRecommendation(t *turn) {
	if !t.s.AwaitingOudRecommendation {
		return
	}
	switch {
	case wantsBestOud.MatchString(t.lower):
		t.out.Say(
			"If you’re looking for the *best Oud to buy*, consider one made of walnut or mahogany for the body and spruce for the soundboard 🎶",
			"Brands like *Sukar* or *Gawharet El Fan* are well-known for their quality.",
			"Would you like me to show what a professional Oud looks like?",
		)
		t.s.AwaitingOudRecommendation = false
		t.s.AwaitingProfessionalOud = true
	case wantsBeginnerOud.MatchString(t.lower):
		t.out.Say(
			"If you’re a beginner, look for an Oud with nylon strings — it’s easier on the fingers and great for practice 🎵",
			"Beginner models from brands like *Sukar* or *Istanbul Oud House* are reliable and affordable.",
			"Would you like me to show a picture of a beginner’s Oud?",
		)
		t.s.AwaitingOudRecommendation = false
		t.s.AwaitingBeginnerOud = true
	}
}

func (e *Engine) bestOud(t *turn) {
	if !mentionsBestOud.MatchString(t.lower) {
		return
	}
	pro := e.catalog.Topic(content.TopicProfessional)
	t.out.Say("Here’s a *professional Oud* 🎵")
	t.out.Images("Professional Oud", pro.Images...)
	t.out.Say(pro.Facts...)
}

func (e *Engine) beginnerOudRequest(t *turn) {
	if !mentionsBeginner.MatchString(t.lower) {
		return
	}
	beg := e.catalog.Topic(content.TopicBeginner)
	t.out.Say("Here’s a *beginner’s Oud* 🎶")
	t.out.Images("Beginner Oud", beg.Images...)
	t.out.Say(beg.Facts...)
}

func (e *Engine) affirmVideo(t *turn) {
	if t.intent != intent.AffirmVideo || !t.s.AwaitingVideo {
		return
	}
	t.out.Say("Great! Here’s a video tutorial on how to play the Oud 🎶")
	t.out.Add(response.Video(e.catalog.Videos.Tutorial))
	t.s.AwaitingVideo = false
	t.s.VideoWatched = true
}

func (e *Engine) showVideo(t *turn) {
	if t.intent != intent.ShowVideo {
		return
	}
	t.out.Say("Here’s a video tutorial on how to play the Oud 🎶")
	t.out.Add(response.Video(e.catalog.Videos.Lesson))
	t.s.AwaitingVideo = false
	t.s.LastTopic = store.TopicVideo
}

func (e *Engine) playStrings(t *turn) {
	t.out.Say(stringIntro)
	for _, src := range e.catalog.Topic(content.TopicStrings).AudioFiles {
		t.out.Add(response.StringAudio(src, stringLabel(src)))
	}
	t.s.AwaitingStringAudio = false
}

// stringLabel is the pitch name carried by the file name, "C2" for C2.wav
func stringLabel(src string) string {
	base := path.Base(src)
	return strings.TrimSuffix(base, path.Ext(base))
}

func (e *Engine) affirmStringAudio(t *turn) {
	if t.intent != intent.Affirm || !t.s.AwaitingStringAudio {
		return
	}
	e.playStrings(t)
}

func (e *Engine) hearStringAudio(t *turn) {
	if t.intent != intent.HearStringAudio {
		return
	}
	e.playStrings(t)
}

func (e *Engine) denyStringAudio(t *turn) {
	if t.intent != intent.Deny || !t.s.AwaitingStringAudio {
		return
	}
	t.out.Say("No problem! You can always ask me later to play the Oud strings. 🎶")
	t.s.AwaitingStringAudio = false
}

func (e *Engine) nameOrigin(t *turn) {
	if t.intent != intent.AskNameOrigin {
		return
	}
	t.out.Say(
		"I'm named **Al-Atrash** after the legendary musician **Farid Al-Atrash** — the King of the Oud. 🎵",
		"Would you like to see a picture of him?",
	)
	t.s.LastTopic = store.TopicFarid
	t.s.AwaitingPicture = true
}

func (e *Engine) aboutOud(t *turn) {
	if t.intent != intent.ChooseAboutOud {
		return
	}
	t.out.Say("Let's explore the Oud together! 🎶", aboutOudMenu)
	t.s.LearningTopic = store.LearningAboutOud
}

func (e *Engine) playOud(t *turn) {
	if t.intent != intent.ChoosePlayOud {
		return
	}
	t.out.Say(
		"Wonderful! Let’s begin learning how to play the Oud 🎵",
		"Would you like to start with *tuning* or *basic strokes*?",
		"Or would you like to learn how to play a *famous song*? 🎵",
		"For example: 1️⃣ Noura Ya Noura \u20032️⃣ Leila",
	)
	t.s.AwaitingSongChoice = true
	t.s.LearningTopic = store.LearningPlayOud
}

func (e *Engine) tuning(t *turn) {
	if t.intent != intent.AskTuningOud {
		return
	}
	t.out.Say(
		"Here’s how you can tune your Oud 🎶",
		"Arabic tuning: C2 – F2 – A2 – D3 – G3 – C4",
		"Turkish tuning: E2 – A2 – B2 – E3 – A3 – D4",
		"Would you like to hear the sound of each string so you can compare your Oud tuning? 🎧",
	)
	t.s.AwaitingStringAudio = true
	t.s.LastTopic = store.TopicTuning
}

// oudAudio is the one media handler that emits facts before the media
func (e *Engine) oudAudio(t *turn) {
	if t.intent != intent.ShowOudAudio {
		return
	}
	a := e.catalog.Topic(content.TopicAudio)
	t.out.Say(a.Facts...)
	t.out.Audios(a.AudioFiles...)
}

func (e *Engine) structure(t *turn) {
	if t.intent != intent.ShowOudStructure {
		return
	}
	st := e.catalog.Topic(content.TopicStructure)
	t.out.Say("Here’s the structure of the Oud 🎶")
	t.out.Images("Oud structure", st.Images...)
	t.out.Say(st.Facts...)
	t.s.LastTopic = store.TopicStructure
}

func (e *Engine) strokes(t *turn) {
	if t.intent != intent.AskStrokesOud {
		return
	}
	t.out.Say(
		"Let’s start with the basic strokes of the Oud 🎶",
		"Use a plectrum (risha) and practice alternating up and down strokes on each string.",
	)
	t.s.LastTopic = store.TopicStrokes
}

func (e *Engine) advancedStrokes(t *turn) {
	if t.intent != intent.ShowAdvancedStrokes && !(t.intent == intent.Affirm && t.s.LastTopic == store.TopicStrokes) {
		return
	}
	t.out.Say(
		"Alright! Let’s explore some *advanced stroke techniques* 🎶",
		"Once you’ve mastered the basic alternating strokes, try these:",
		"🎵 **Tremolo (Risha Rapid)** — rapid up-down strokes for sustained tone.",
		"🎵 **Double Downstroke** — two quick downstrokes for accent emphasis.",
		"🎵 **Sweep Stroke** — lightly gliding across multiple strings for a fluid sound.",
		"Keep your wrist loose — tension kills rhythm! Relax and feel the groove. ✨",
	)
	t.s.LastTopic = store.TopicAdvancedStrokes
}

func (e *Engine) explainMore(t *turn) {
	if t.intent != intent.ExplainMore {
		return
	}
	t.out.Say(explainMoreLines(t.s.LearningTopic, t.s.LastTopic)...)
}

// explainMoreLines looks up learning topic, then last topic, with a prompt
// for the user to narrow down when either key is unknown
func explainMoreLines(learning store.LearningTopic, last store.Topic) []string {
	switch learning {
	case store.LearningPlayOud:
		switch last {
		case store.TopicStrokes:
			return []string{
				"Sure! Let’s go into more detail about the *basic strokes*. 🎶",
				"The key is to relax your wrist and let the risha (plectrum) glide naturally.",
				"Start slow, alternate up and down, and keep your rhythm steady — like a heartbeat. ❤️‍🔥",
				"You can practice on open strings before adding notes or melodies.",
				"Would you like me to show some *advanced stroke techniques* next?",
			}
		case store.TopicTuning:
			return []string{
				"Of course! Here’s more about *tuning* your Oud 🎵",
				"Make sure you tune the bass strings first — C2 and F2 — to anchor the sound.",
				"Use a tuner app or match to reference sounds I can play for you.",
				"Would you like to hear the strings again?",
			}
		default:
			return []string{"Sure! Could you tell me which part you want me to explain more — *tuning* or *strokes*?"}
		}
	case store.LearningAboutOud:
		switch last {
		case store.TopicStructure:
			return []string{
				"The structure of the Oud is fascinating! 🎶",
				"The soundboard (front face) is made from spruce or cedar, giving it that resonant tone.",
				"The bowl is made from walnut or mahogany — each type affects the warmth of the sound.",
				"Would you like to learn about the materials or string setup next?",
			}
		case store.TopicHistory:
			return []string{
				"Historically, the Oud evolved from the Persian barbat and influenced the European lute. 🎵",
				"It spread through the Islamic Golden Age and became a cornerstone of Arabic music.",
				"Would you like me to show a timeline image of the Oud’s history?",
			}
		default:
			return []string{"Sure! Which topic would you like more details about — *history*, *structure*, or *sound*?"}
		}
	default:
		return []string{"I’d love to explain more! Which topic would you like to continue with — the Oud itself or how to play it?"}
	}
}

func (e *Engine) goodbye(t *turn) {
	if t.intent != intent.Goodbye {
		return
	}
	t.out.Say("Goodbye! Come back anytime to learn more about the Oud 🎵")
}

func (e *Engine) continueLearning(t *turn) {
	switch t.lower {
	case "learn", "learn it", "play", "play it", "how to play it":
	default:
		return
	}
	switch t.s.LearningTopic {
	case store.LearningAboutOud:
		t.out.Say("Let's continue exploring the Oud 🎶 " + aboutOudMenu)
	case store.LearningPlayOud:
		t.out.Say("Let's continue learning how to play the Oud 🎵 Would you like to start with *tuning* or *basic strokes*?")
	}
}

func (e *Engine) videoNudge(t *turn) {
	if t.s.LastTopic != store.TopicVideo {
		return
	}
	t.out.Say("Would you like me to show another Oud playing tutorial or continue with *tuning* or *strokes*? 🎶")
}

// acknowledge reads "ok", "nice" and friends against the context. With no
// topic to continue it writes nothing and the turn reaches the fallback.
func (e *Engine) acknowledge(t *turn) {
	if t.intent != intent.Acknowledge {
		return
	}
	s := t.s
	switch {
	case s.LastTopic == store.TopicOudPicture || s.AwaitingOudBuyOffer:
		t.out.Say(buyOfferAsk)
		s.AwaitingOudBuyOffer = true
	case s.LastTopic == store.TopicRecommendation:
		t.out.Say("Would you like to see what a *professional* or *beginner* Oud looks like? 🎵")
	case s.LearningTopic == store.LearningAboutOud:
		t.out.Say("Glad you’re enjoying this! 🎶 Would you like to explore its *history*, *structure*, or *sound* next?")
	case s.LearningTopic == store.LearningPlayOud && s.VideoWatched:
		t.out.Say("Awesome! 🎵 Would you like to continue with *tuning* or *strokes*?")
	case s.LearningTopic == store.LearningPlayOud:
		t.out.Say("Awesome! 🎵 Would you like to continue with *tuning*, *strokes*, or maybe watch a short playing video?")
	case s.LearningTopic != "":
		t.out.Say("Nice! Would you like to learn more about the Oud or how to play it?")
	}
}

func (e *Engine) beginnerOud(t *turn) {
	if t.intent != intent.ShowBeginnerOud {
		return
	}
	beg := e.catalog.Topic(content.TopicBeginner)
	t.out.Say("Here’s what a *beginner’s Oud* looks like 🎶")
	t.out.Images("Beginner Oud", beg.Images...)
	t.out.Say(beg.Facts...)
}

func (e *Engine) compare(t *turn) {
	if t.intent != intent.CompareOudTypes {
		return
	}
	t.out.Say(
		"Here’s how a *beginner Oud* differs from a *professional Oud*, both in appearance and performance 🎶",
		"🎸 **Design & Craftsmanship:** Beginner Ouds have a simple design made from basic woods, while professional ones feature decorative details and high-quality materials like walnut or rosewood.",
		"🎵 **Sound Quality:** Beginner Ouds produce lighter tones, while professional ones have a deeper, richer, and more resonant sound.",
		"🎼 **Playability:** Professional Ouds are smoother and more precise to play, while beginner Ouds are easier to maintain but less sensitive to touch.",
		"💰 **Price:** Beginner Ouds cost around $100–$300, while professional ones range from $700 to over $3000.",
	)
	for _, img := range e.catalog.Topic(content.TopicComparison).Images {
		t.out.Add(response.Figure(img))
	}
}

func (e *Engine) buyOfferAccepted(t *turn) {
	if t.intent != intent.AffirmContainImage && t.intent != intent.Acknowledge {
		return
	}
	if !t.s.AwaitingOudBuyOffer {
		return
	}
	t.out.Say(
		greatQuestion,
		"Would you like me to help you find:\n1️⃣ The *best Oud to buy* (for quality & sound), or\n2️⃣ The *most suitable Oud for beginners* to learn on?",
	)
	t.s.AwaitingOudBuyOffer = false
	t.s.AwaitingOudRecommendation = true
	t.s.LastTopic = store.TopicRecommendation
}
