// Package scoring implements the heuristic model that evaluates candidate
// accounts. Scoring is deterministic given the candidate fields, the
// attributing signal account, and the model's current time.
package scoring

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/nedmenton/twitterbotrailway/internal/signals"
	"github.com/nedmenton/twitterbotrailway/internal/sorsa"
)

// UnknownAgeWeeks is the sentinel age for accounts whose registration
// timestamp is missing or unparseable. It exceeds every age bracket, so the
// creation component scores zero.
const UnknownAgeWeeks = 999

// Link category labels as persisted and published.
const (
	discordLabel  = "Discord Channel"
	telegramLabel = "Telegram Channel"
	websiteLabel  = "Website URL"
)

var (
	discordMarkers  = []string{"discord", "discord.gg", "discord.com"}
	telegramMarkers = []string{"telegram", "t.me", "tg://"}
	urlPattern      = regexp.MustCompile(`(?i)https?://\S+`)
)

var registerDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// Model scores candidates against fixed criteria. Now supplies the current
// time for age computation; it defaults to time.Now and may be replaced for
// reproducible tests.
type Model struct {
	Criteria Criteria
	Registry *signals.Registry
	Now      func() time.Time
}

// NewModel returns a model over the given criteria and signal registry.
func NewModel(criteria Criteria, registry *signals.Registry) *Model {
	return &Model{Criteria: criteria, Registry: registry, Now: time.Now}
}

// Score evaluates a candidate discovered through the given signal account.
// It fails only when no identifier can be derived for the candidate.
func (m *Model) Score(acct sorsa.Account, discoveredBy string) (*ScoredAccount, error) {
	handle := acct.Handle()
	if handle == "" {
		return nil, fmt.Errorf("account has no derivable handle (id=%d)", acct.ID)
	}

	weeksOld := m.AgeWeeks(acct.RegisterDate)
	followerScore := stepScore(m.Criteria.FollowerBrackets, acct.FollowersCount)
	creationScore := stepScore(m.Criteria.AgeBrackets, weeksOld)
	keywordsFound, keywordScore := m.keywordMatches(acct.Description)
	linksFound, linkScore := m.linkMatches(acct.Description)
	attributionScore := m.Registry.Weight(discoveredBy)

	scored := &ScoredAccount{
		Handle:           handle,
		Name:             acct.Name,
		Bio:              acct.Description,
		FollowersCount:   acct.FollowersCount,
		RegisterDate:     acct.RegisterDate,
		WeeksOld:         weeksOld,
		FollowerScore:    followerScore,
		CreationScore:    creationScore,
		KeywordScore:     keywordScore,
		LinkScore:        linkScore,
		AttributionScore: attributionScore,
		TotalScore:       followerScore + creationScore + keywordScore + linkScore + attributionScore,
		KeywordsFound:    keywordsFound,
		LinksFound:       linksFound,
		AttributedTo:     []string{discoveredBy},
		Verified:         acct.Verified,
		Protected:        acct.Protected,
		DiscoveredAt:     m.Now(),
	}

	slog.Debug("scored candidate",
		"handle", handle,
		"follower", followerScore,
		"creation", creationScore,
		"keyword", keywordScore,
		"link", linkScore,
		"attribution", attributionScore,
		"total", scored.TotalScore)
	return scored, nil
}

// AgeWeeks returns the account age in whole weeks at the model's current
// time, clamped at zero for future dates. Missing or unparseable timestamps
// yield UnknownAgeWeeks.
func (m *Model) AgeWeeks(registerDate string) int {
	s := strings.TrimSpace(registerDate)
	if s == "" {
		return UnknownAgeWeeks
	}

	var created time.Time
	var err error
	for _, layout := range registerDateLayouts {
		created, err = time.Parse(layout, s)
		if err == nil {
			break
		}
	}
	if err != nil {
		slog.Warn("could not parse register date", "value", registerDate)
		return UnknownAgeWeeks
	}

	days := int(m.Now().Sub(created).Hours() / 24)
	weeks := days / 7
	if weeks < 0 {
		weeks = 0
	}
	return weeks
}

// stepScore returns the score of the first bracket covering v, or zero when
// v exceeds every bracket.
func stepScore(brackets []Bracket, v int) int {
	for _, b := range brackets {
		if v <= b.UpTo {
			return b.Score
		}
	}
	return 0
}

// keywordMatches returns the distinct vocabulary terms present in the bio,
// in vocabulary order, with the combined keyword score.
func (m *Model) keywordMatches(bio string) ([]string, int) {
	if bio == "" {
		return nil, 0
	}

	bioLower := strings.ToLower(bio)
	seen := make(map[string]bool)
	var found []string
	for _, keyword := range m.Criteria.Keywords {
		k := strings.ToLower(keyword)
		if seen[k] || !strings.Contains(bioLower, k) {
			continue
		}
		seen[k] = true
		found = append(found, keyword)
	}
	return found, len(found) * m.Criteria.KeywordScore
}

// linkMatches classifies bio links into category labels with the combined
// link score. Discord and telegram are credited independently; the generic
// website category is credited only when a URL is present and neither named
// platform matched.
func (m *Model) linkMatches(bio string) ([]string, int) {
	if bio == "" {
		return nil, 0
	}

	bioLower := strings.ToLower(bio)
	var found []string
	score := 0

	if containsAny(bioLower, discordMarkers) {
		found = append(found, discordLabel)
		score += m.Criteria.DiscordScore
	}
	if containsAny(bioLower, telegramMarkers) {
		found = append(found, telegramLabel)
		score += m.Criteria.TelegramScore
	}
	if len(found) == 0 && urlPattern.MatchString(bio) {
		found = append(found, websiteLabel)
		score += m.Criteria.WebsiteScore
	}
	return found, score
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
