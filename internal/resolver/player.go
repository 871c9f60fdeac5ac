package resolver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/agnivade/levenshtein"
	"github.com/hllmod/reportbot/internal/adminapi"
	"github.com/hllmod/reportbot/pkg/utils"
	"github.com/xrash/smetrics"
	"go.uber.org/zap"
)

// ErrPlayerNotFound is returned when no roster entry scores within the threshold.
var ErrPlayerNotFound = errors.New("player not found")

const (
	// jaroWinklerWeight scales the Jaro-Winkler distance so that a perfect
	// match is worth about two edits of Levenshtein slack.
	jaroWinklerWeight = 2.0

	// Standard Winkler boost parameters.
	winklerBoostThreshold = 0.7
	winklerPrefixSize     = 4
)

// RosterSource provides the current roster snapshot.
type RosterSource interface {
	Roster(ctx context.Context) ([]adminapi.Player, error)
}

// Match is the best scoring roster entry for a piece of text.
type Match struct {
	Player    adminapi.Player
	Candidate string
	Score     float64
}

// Normalize lower-cases s and strips bracketed spans and clan tags so that
// names compare on their core.
func Normalize(s string) string {
	return utils.StripClanTags(utils.StripBrackets(utils.Lower(s)))
}

// Score returns the combined distance between two normalized strings.
// Lower is more similar and identical strings score 0. Both metrics count runes.
func Score(candidate, name string) float64 {
	a, b := byteAlphabet(candidate, name)
	jw := smetrics.JaroWinkler(a, b, winklerBoostThreshold, winklerPrefixSize)
	lev := levenshtein.ComputeDistance(candidate, name)

	return (1-jw)*jaroWinklerWeight + float64(lev)
}

// byteAlphabet re-encodes a and b so that every distinct rune becomes one byte.
// smetrics indexes by byte, which would count a multi-byte rune several times.
// Pairs with more than 256 distinct runes are returned unchanged.
func byteAlphabet(a, b string) (string, string) {
	codes := make(map[rune]byte)

	encode := func(s string) (string, bool) {
		out := make([]byte, 0, len(s))
		for _, r := range s {
			code, ok := codes[r]
			if !ok {
				if len(codes) > math.MaxUint8 {
					return "", false
				}

				code = byte(len(codes))
				codes[r] = code
			}

			out = append(out, code)
		}

		return string(out), true
	}

	encodedA, ok := encode(a)
	if !ok {
		return a, b
	}

	encodedB, ok := encode(b)
	if !ok {
		return a, b
	}

	return encodedA, encodedB
}

// Resolve scores every n-gram of text against every roster name and returns the
// lowest scoring entry. The first pair seen wins ties. The second return value is
// false when the roster is empty or the best score exceeds threshold.
func Resolve(text string, roster []adminapi.Player, threshold float64) (Match, bool) {
	candidates := utils.Ngrams(text, utils.MaxNgramLength)
	if len(candidates) == 0 || len(roster) == 0 {
		return Match{}, false
	}

	normalized := make([]string, len(candidates))
	for i, candidate := range candidates {
		normalized[i] = Normalize(candidate)
	}

	best := Match{Score: math.Inf(1)}
	found := false

	for _, player := range roster {
		name := Normalize(player.Name)
		if name == "" {
			continue
		}

		for i, candidate := range normalized {
			if candidate == "" {
				continue
			}

			score := Score(candidate, name)
			if score < best.Score {
				best = Match{Player: player, Candidate: candidates[i], Score: score}
				found = true
			}
		}
	}

	if !found || best.Score > threshold {
		return best, false
	}

	return best, true
}

// PlayerResolver matches free text against the live roster of a server.
type PlayerResolver struct {
	threshold float64
	logger    *zap.Logger
}

// NewPlayerResolver creates a resolver accepting matches scoring at most threshold.
func NewPlayerResolver(threshold float64, logger *zap.Logger) *PlayerResolver {
	return &PlayerResolver{
		threshold: threshold,
		logger:    logger.Named("player_resolver"),
	}
}

// Match resolves text against an already fetched roster.
func (r *PlayerResolver) Match(text string, roster []adminapi.Player) (*Match, error) {
	match, ok := Resolve(text, roster, r.threshold)
	if !ok {
		r.logger.Debug("No player within threshold",
			zap.String("text", text),
			zap.Int("roster_size", len(roster)),
			zap.Float64("best_score", match.Score))

		return nil, ErrPlayerNotFound
	}

	r.logger.Debug("Resolved player",
		zap.String("text", text),
		zap.String("candidate", match.Candidate),
		zap.String("player_id", match.Player.PlayerID),
		zap.Float64("score", match.Score))

	return &match, nil
}

// Find fetches the roster and resolves text against it.
// A failed or empty roster fetch resolves to ErrPlayerNotFound.
func (r *PlayerResolver) Find(ctx context.Context, source RosterSource, text string) (*Match, error) {
	roster, err := source.Roster(ctx)
	if err != nil {
		r.logger.Warn("Roster unavailable, treating as no match", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPlayerNotFound, err)
	}

	return r.Match(text, roster)
}
