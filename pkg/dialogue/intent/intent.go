// Package intent classifies one chat message into a closed set of labels
// using an ordered table of keyword and regex rules.
package intent

// Intent is the classified purpose of one user message
type Intent string

const (
	Greet                Intent = "greet"
	Goodbye              Intent = "goodbye"
	AskNameOrigin        Intent = "ask_name_origin"
	ChooseAboutOud       Intent = "choose_about_oud"
	ChoosePlayOud        Intent = "choose_play_oud"
	ShowOudHistory       Intent = "show_oud_history"
	ShowOudStructure     Intent = "show_oud_structure"
	AskOudRecommendation Intent = "ask_oud_recommendation"
	AskTuningOud         Intent = "ask_tuning_oud"
	AskStrokesOud        Intent = "ask_strokes_oud"
	ShowAdvancedStrokes  Intent = "show_advanced_strokes"
	ShowFaridInfo        Intent = "show_farid_info"
	ShowOudPicture       Intent = "show_oud_picture"
	HearStringAudio      Intent = "hear_string_audio"
	ShowOudAudio         Intent = "show_oud_audio"
	ShowVideo            Intent = "show_video"
	CompareOudTypes      Intent = "compare_oud_types"
	Affirm               Intent = "affirm"
	AffirmContainImage   Intent = "affirm_contain_image"
	AffirmVideo          Intent = "affirm_video"
	Acknowledge          Intent = "acknowledge"
	Deny                 Intent = "deny"
	ExplainMore          Intent = "explain_more"
	ShowBeginnerOud      Intent = "show_beginner_oud"
	ChooseSong           Intent = "choose_song"
	Question             Intent = "question"
)

func (i Intent) String() string {
	return string(i)
}
