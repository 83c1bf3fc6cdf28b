package models

// UserProfile is the read-only interest snapshot one fusion pass works from.
// The system serves a single user; there is no user id on the profile.
type UserProfile struct {
	InterestedKeywords    []string        `json:"interested_keywords,omitempty"`
	DisinterestedKeywords []string        `json:"disinterested_keywords,omitempty"`
	InterestDescription   string          `json:"interest_description,omitempty"`
	LikedPapers           []FeedbackPaper `json:"liked_papers,omitempty"`
	DislikedPapers        []FeedbackPaper `json:"disliked_papers,omitempty"`
	Themes                []InterestTheme `json:"themes,omitempty"`
}

// FeedbackPaper is a previously judged paper carried on the profile with the
// embedding it had when the judgment was recorded.
type FeedbackPaper struct {
	Ref       PaperRef  `json:"ref"`
	Title     string    `json:"title,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// InterestTheme is a named cluster derived upstream from liked papers and
// supplied as an additional profile signal.
type InterestTheme struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description,omitempty"`
	Embedding   []float32 `json:"embedding,omitempty"`
}
