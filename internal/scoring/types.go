package scoring

import "time"

// ScoredAccount is a fully evaluated candidate. TotalScore is always the sum
// of the five component scores and is set once at construction.
type ScoredAccount struct {
	Handle         string
	Name           string
	Bio            string
	FollowersCount int
	RegisterDate   string
	WeeksOld       int

	FollowerScore    int
	CreationScore    int
	KeywordScore     int
	LinkScore        int
	AttributionScore int
	TotalScore       int

	KeywordsFound []string
	LinksFound    []string
	AttributedTo  []string

	Verified     bool
	Protected    bool
	DiscoveredAt time.Time
}
