package sorsa

import (
	"fmt"
	"regexp"
	"strings"
)

// Account is a raw account record as returned by the graph service.
// Older payloads carry the screen name under the misspelled screeName key,
// so both spellings are mapped.
type Account struct {
	ID               int64  `json:"id"`
	ScreenName       string `json:"screenName"`
	LegacyScreenName string `json:"screeName"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	FollowersCount   int    `json:"followersCount"`
	RegisterDate     string `json:"registerDate"`
	Verified         bool   `json:"verified"`
	Protected        bool   `json:"protected"`
}

var displayNameSanitizer = regexp.MustCompile(`[^\w.]`)

// Handle derives the stable identifier for an account. Fields are tried in
// order: screenName, the legacy screeName spelling, the display name reduced
// to word characters and periods (accepted only when more than two characters
// survive), and finally a synthetic user_<id> form. An empty return means the
// account cannot be identified and must be skipped.
func (a Account) Handle() string {
	if h := strings.TrimSpace(a.ScreenName); h != "" {
		return h
	}
	if h := strings.TrimSpace(a.LegacyScreenName); h != "" {
		return h
	}
	if name := strings.TrimSpace(a.Name); name != "" {
		if h := displayNameSanitizer.ReplaceAllString(name, ""); len(h) > 2 {
			return h
		}
	}
	if a.ID != 0 {
		return fmt.Sprintf("user_%d", a.ID)
	}
	return ""
}
