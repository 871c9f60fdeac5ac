package resolver

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hllmod/reportbot/internal/adminapi"
)

// commanderKeyword is reported as the pseudo-unit "command".
const (
	commanderKeyword = "commander"
	commandUnit      = "command"
)

// unitKeywords is the closed set of reserved unit names.
var unitKeywords = map[string]struct{}{
	"able": {}, "baker": {}, "charlie": {}, "commander": {}, "dog": {},
	"easy": {}, "fox": {}, "george": {}, "how": {}, "item": {},
	"jig": {}, "king": {}, "love": {}, "mike": {}, "negat": {},
	"option": {}, "prep": {}, "queen": {}, "roger": {}, "sugar": {},
	"tare": {}, "uncle": {}, "victor": {}, "william": {}, "x-ray": {},
	"yoke": {}, "zebra": {},
}

// DetailedRosterSource provides the detailed roster snapshot.
type DetailedRosterSource interface {
	DetailedRoster(ctx context.Context) (map[string]adminapi.DetailedPlayer, error)
}

// IsUnitKeyword reports whether word is a reserved unit name.
func IsUnitKeyword(word string) bool {
	_, ok := unitKeywords[strings.ToLower(word)]
	return ok
}

// UnitName maps a unit keyword to the unit name used by the game server.
func UnitName(keyword string) string {
	keyword = strings.ToLower(keyword)
	if keyword == commanderKeyword {
		return commandUnit
	}

	return keyword
}

// FindUnitLeader returns the leader of the given team's unit.
// Entries are visited in player ID order so the result is stable.
func FindUnitLeader(roster map[string]adminapi.DetailedPlayer, team, keyword string) (adminapi.DetailedPlayer, bool) {
	unit := UnitName(keyword)

	ids := make([]string, 0, len(roster))
	for id := range roster {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		player := roster[id]
		if strings.EqualFold(player.Team, team) &&
			strings.EqualFold(player.UnitName, unit) &&
			player.IsLeader() {
			return player, true
		}
	}

	return adminapi.DetailedPlayer{}, false
}

// ResolveUnit fetches the detailed roster and returns the unit's leader.
func ResolveUnit(ctx context.Context, source DetailedRosterSource, team, keyword string) (*adminapi.DetailedPlayer, error) {
	roster, err := source.DetailedRoster(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPlayerNotFound, err)
	}

	leader, ok := FindUnitLeader(roster, team, keyword)
	if !ok {
		return nil, fmt.Errorf("%w: no leader for %s/%s", ErrPlayerNotFound, team, UnitName(keyword))
	}

	return &leader, nil
}
