// Package content loads the static facts, media references and song catalog
// the chatbot serves. Everything here is read-only after Load.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Topic keys the dialogue engine reads from
const (
	TopicFarid        = "farid"
	TopicPicture      = "oud_picture"
	TopicStructure    = "oud_structure"
	TopicAudio        = "oud_audio"
	TopicStrings      = "oud_strings"
	TopicProfessional = "oud_professional"
	TopicBeginner     = "oud_beginner"
	TopicComparison   = "oud_comparison"
)

// SongCount is the fixed size of the song catalog
const SongCount = 2

//go:embed data/corpus.yaml
var defaultCorpus []byte

// Entry is the content registered under one topic key
type Entry struct {
	Aliases    []string `yaml:"aliases"`
	Facts      []string `yaml:"facts"`
	Images     []string `yaml:"images"`
	AudioFiles []string `yaml:"audio_files"`
}

// Song is one entry of the song catalog
type Song struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// Videos holds the two tutorial links the chatbot embeds
type Videos struct {
	Tutorial string `yaml:"tutorial"`
	Lesson   string `yaml:"lesson"`
}

// Catalog is the full static corpus
type Catalog struct {
	Topics    map[string]Entry `yaml:"topics"`
	Songs     []Song           `yaml:"songs"`
	Videos    Videos           `yaml:"videos"`
	Knowledge []string         `yaml:"knowledge"`
}

// requirement describes what a handler needs from a topic
type requirement struct {
	key    string
	images bool
	audio  bool
	facts  bool
}

var required = []requirement{
	{key: TopicFarid, images: true, facts: true},
	{key: TopicPicture, images: true, facts: true},
	{key: TopicStructure, images: true, facts: true},
	{key: TopicAudio, audio: true, facts: true},
	{key: TopicStrings, audio: true},
	{key: TopicProfessional, images: true, facts: true},
	{key: TopicBeginner, images: true, facts: true},
	{key: TopicComparison, images: true},
}

// Default parses the corpus compiled into the binary
func Default() (*Catalog, error) {
	return Parse(defaultCorpus)
}

// Load reads a corpus from path, or the embedded default when path is empty.
// A non-empty knowledgePath replaces the knowledge paragraphs with the
// blank-line separated paragraphs of that file.
func Load(path, knowledgePath string) (*Catalog, error) {
	var (
		c   *Catalog
		err error
	)
	if path == "" {
		c, err = Default()
	} else {
		var raw []byte
		raw, err = os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("read content %s: %w", path, err)
		}
		c, err = Parse(raw)
	}
	if err != nil {
		return nil, err
	}

	if knowledgePath != "" {
		raw, err := os.ReadFile(filepath.Clean(knowledgePath))
		if err != nil {
			return nil, fmt.Errorf("read knowledge %s: %w", knowledgePath, err)
		}
		c.Knowledge = SplitParagraphs(string(raw))
	}
	return c, nil
}

// Parse decodes and validates a YAML corpus
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every topic the handlers reference exists with the
// media it needs. Missing content is a configuration error, never a per-turn
// condition.
func (c *Catalog) Validate() error {
	var errs []error
	for _, r := range required {
		e, ok := c.Topics[r.key]
		if !ok {
			errs = append(errs, fmt.Errorf("topic %q is missing", r.key))
			continue
		}
		if r.images && len(e.Images) == 0 {
			errs = append(errs, fmt.Errorf("topic %q needs at least one image", r.key))
		}
		if r.audio && len(e.AudioFiles) == 0 {
			errs = append(errs, fmt.Errorf("topic %q needs at least one audio file", r.key))
		}
		if r.facts && len(e.Facts) == 0 {
			errs = append(errs, fmt.Errorf("topic %q needs at least one fact", r.key))
		}
	}
	if len(c.Songs) != SongCount {
		errs = append(errs, fmt.Errorf("song catalog must hold exactly %d songs, got %d", SongCount, len(c.Songs)))
	}
	for i, s := range c.Songs {
		if s.Title == "" || s.URL == "" {
			errs = append(errs, fmt.Errorf("song %d needs a title and a url", i+1))
		}
	}
	if c.Videos.Tutorial == "" || c.Videos.Lesson == "" {
		errs = append(errs, errors.New("videos.tutorial and videos.lesson are required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid content: %w", errors.Join(errs...))
	}
	return nil
}

// Topic returns the entry for key. Keys are validated at load time, so a miss
// here means the caller asked for a key outside the required set.
func (c *Catalog) Topic(key string) Entry {
	e, ok := c.Topics[key]
	if !ok {
		panic(fmt.Sprintf("content: topic %q not loaded", key))
	}
	return e
}

// Song returns the n-th song, 1-indexed
func (c *Catalog) Song(n int) Song {
	return c.Songs[n-1]
}

// Keys lists the loaded topic keys in order
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.Topics))
	for k := range c.Topics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SplitParagraphs splits text on blank lines, dropping empty paragraphs
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
