// Package response turns the fragments a dialogue handler emits into the
// ordered strings returned to the chat client. Media fragments render to the
// exact HTML snippets the web frontend expects.
package response

import "fmt"

// Kind tells the composer how a fragment renders
type Kind int

const (
	KindText Kind = iota
	KindImage
	KindAudio
	KindStringAudio
	KindVideo
	KindFigure
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindAudio:
		return "audio"
	case KindStringAudio:
		return "string_audio"
	case KindVideo:
		return "video"
	case KindFigure:
		return "figure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Fragment is one output line before rendering
type Fragment struct {
	Kind  Kind
	Text  string // body for KindText
	Src   string // media path or embed url
	Alt   string // KindImage only
	Label string // KindStringAudio only
}

func Text(s string) Fragment { return Fragment{Kind: KindText, Text: s} }

func Image(src, alt string) Fragment { return Fragment{Kind: KindImage, Src: src, Alt: alt} }

func Audio(src string) Fragment { return Fragment{Kind: KindAudio, Src: src} }

func StringAudio(src, label string) Fragment {
	return Fragment{Kind: KindStringAudio, Src: src, Label: label}
}

func Video(url string) Fragment { return Fragment{Kind: KindVideo, Src: url} }

func Figure(src string) Fragment { return Fragment{Kind: KindFigure, Src: src} }

// Render returns the string the client receives for f
func (f Fragment) Render() string {
	switch f.Kind {
	case KindImage:
		return fmt.Sprintf(`<img src="%s" alt="%s" style="max-width:100%%;border-radius:10px;margin-top:10px;">`, f.Src, f.Alt)
	case KindAudio:
		return fmt.Sprintf(`<audio controls src="%s" style="margin-top:10px;"></audio>`, f.Src)
	case KindStringAudio:
		return fmt.Sprintf(`<audio controls src="%s"></audio> %s`, f.Src, f.Label)
	case KindVideo:
		return fmt.Sprintf(`<iframe width="100%%" height="200" src="%s" frameborder="0" allowfullscreen></iframe>`, f.Src)
	case KindFigure:
		return fmt.Sprintf(`<div><img src="%s" style="max-width:220px;border-radius:10px;"></div>`, f.Src)
	default:
		return f.Text
	}
}

// Compose renders fragments in emission order. Nothing is reordered, merged
// or dropped.
func Compose(frags []Fragment) []string {
	out := make([]string, len(frags))
	for i, f := range frags {
		out[i] = f.Render()
	}
	return out
}
