package response

// Builder collects the fragments of one reply
type Builder struct {
	frags []Fragment
}

// Add appends fragments as given
func (b *Builder) Add(f ...Fragment) *Builder {
	b.frags = append(b.frags, f...)
	return b
}

// Say appends plain text lines
func (b *Builder) Say(lines ...string) *Builder {
	for _, l := range lines {
		b.frags = append(b.frags, Text(l))
	}
	return b
}

// Images appends one image per source, all with the same alt text
func (b *Builder) Images(alt string, srcs ...string) *Builder {
	for _, s := range srcs {
		b.frags = append(b.frags, Image(s, alt))
	}
	return b
}

// Audios appends one sample player per source
func (b *Builder) Audios(srcs ...string) *Builder {
	for _, s := range srcs {
		b.frags = append(b.frags, Audio(s))
	}
	return b
}

func (b *Builder) Len() int { return len(b.frags) }

func (b *Builder) Empty() bool { return len(b.frags) == 0 }

// Fragments returns a copy of what has been collected
func (b *Builder) Fragments() []Fragment {
	return append([]Fragment(nil), b.frags...)
}

// Strings renders the collected fragments
func (b *Builder) Strings() []string {
	return Compose(b.frags)
}
