package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCorpusIsValid(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.Songs, SongCount)
	assert.Len(t, c.Topic(TopicStrings).AudioFiles, 6)
	assert.NotEmpty(t, c.Knowledge)
	assert.Equal(t, "static/farid-al-atrash.jpeg", c.Topic(TopicFarid).Images[0])
	assert.Contains(t, c.Keys(), TopicComparison)
}

func TestParseRejectsIncompleteCorpus(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing topics",
			yaml:    "songs: []\n",
			wantErr: `topic "farid" is missing`,
		},
		{
			name:    "malformed yaml",
			yaml:    "topics: [",
			wantErr: "decode content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSongCount(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	c.Songs = c.Songs[:1]
	err = c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly 2 songs")
}

func TestTopicPanicsOnUnknownKey(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Panics(t, func() { c.Topic("lyre") })
}

func TestLoadWithKnowledgeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oud_knowledge.txt")
	require.NoError(t, os.WriteFile(path, []byte("First paragraph.\n\n\n  Second paragraph.  \n\n"), 0o644))

	c, err := Load("", path)
	require.NoError(t, err)
	assert.Equal(t, []string{"First paragraph.", "Second paragraph."}, c.Knowledge)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	require.Error(t, err)
}
