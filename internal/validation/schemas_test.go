package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPoolDoc() string {
	return `{
		"papers": [
			{
				"ref": {"source": "arxiv", "external_id": "2401.00001"},
				"title": "Sparse attention for long documents",
				"abstract": "We study memory-efficient attention.",
				"authors": ["A. Author"],
				"published_at": "2024-01-15T00:00:00Z",
				"embedding": [0.1, 0.2, 0.3],
				"times_recommended": 1
			}
		]
	}`
}

func TestDocumentValidator_AcceptsWellFormedDocuments(t *testing.T) {
	v, err := NewDocumentValidator()
	require.NoError(t, err)

	assert.NoError(t, v.ValidateCandidatePool([]byte(validPoolDoc())))
	assert.NoError(t, v.ValidateProfile([]byte(`{
		"interested_keywords": ["transformer"],
		"interest_description": "attention models",
		"liked_papers": [{"ref": {"source": "arxiv", "external_id": "2302.1"}, "embedding": [0.5]}],
		"themes": [{"name": "efficient attention"}]
	}`)))

	// A profile can be empty; every signal is optional.
	assert.NoError(t, v.ValidateProfile([]byte(`{}`)))
}

func TestDocumentValidator_ReportsFieldLevelFindings(t *testing.T) {
	v, err := NewDocumentValidator()
	require.NoError(t, err)

	tests := []struct {
		name     string
		validate func([]byte) error
		doc      string
		want     string
	}{
		{
			name:     "pool without papers key",
			validate: v.ValidateCandidatePool,
			doc:      `{}`,
			want:     "papers",
		},
		{
			name:     "paper missing external_id",
			validate: v.ValidateCandidatePool,
			doc:      `{"papers": [{"ref": {"source": "arxiv"}, "title": "x", "published_at": "2024-01-15T00:00:00Z"}]}`,
			want:     "external_id",
		},
		{
			name:     "counter with wrong type",
			validate: v.ValidateCandidatePool,
			doc:      `{"papers": [{"ref": {"source": "arxiv", "external_id": "1"}, "title": "x", "published_at": "2024-01-15T00:00:00Z", "times_recommended": "twice"}]}`,
			want:     "times_recommended",
		},
		{
			name:     "profile with unknown key",
			validate: v.ValidateProfile,
			doc:      `{"likes": []}`,
			want:     "likes",
		},
		{
			name:     "theme without name",
			validate: v.ValidateProfile,
			doc:      `{"themes": [{"description": "nameless"}]}`,
			want:     "name",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.validate([]byte(tc.doc))

			var docErr *DocumentError
			require.ErrorAs(t, err, &docErr)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
