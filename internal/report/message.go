package report

import (
	"regexp"
	"strings"

	"github.com/hllmod/reportbot/internal/bot/constants"
	"github.com/hllmod/reportbot/pkg/utils"
)

// authorPattern matches relay author fields like "Name [Allies][ABLE]".
var authorPattern = regexp.MustCompile(`^(.+?)\s+\[(Axis|Allies)\](?:\[\w+\])?$`)

// Metadata is the structured block a relay attaches to a chat message.
type Metadata struct {
	Description string
	Footer      string
	Author      string
}

// Message is an inbound chat message.
type Message struct {
	AuthorName string
	Content    string
	Metadata   *Metadata
}

// EffectiveText prefers a metadata description that starts with the admin
// prefix over the raw body. The description is returned with markup removed.
func EffectiveText(msg Message) string {
	if msg.Metadata != nil {
		description := strings.TrimSpace(utils.StripMarkup(msg.Metadata.Description))
		if hasAdminPrefix(description) {
			return description
		}
	}

	return strings.TrimSpace(msg.Content)
}

// Reporter returns the reporter display name and team. The metadata author
// field wins when it carries a team tag; otherwise the platform name is used.
func Reporter(msg Message) (string, string) {
	if msg.Metadata != nil {
		if m := authorPattern.FindStringSubmatch(strings.TrimSpace(msg.Metadata.Author)); m != nil {
			return strings.TrimSpace(m[1]), m[2]
		}
	}

	return msg.AuthorName, ""
}

// ServerName returns the server identity carried in the metadata footer.
func ServerName(msg Message) string {
	if msg.Metadata == nil {
		return ""
	}

	return ServerFromFooter(msg.Metadata.Footer)
}

// ServerFromFooter strips the dry-run marker from a footer.
func ServerFromFooter(footer string) string {
	footer = strings.TrimSpace(footer)
	footer = strings.TrimSuffix(footer, constants.FooterSeparator+constants.DryRunMarker)
	if footer == constants.DryRunMarker {
		return ""
	}

	return strings.TrimSpace(footer)
}

// SplitAdmin reports whether text is an admin report and returns its argument.
func SplitAdmin(text string) (string, bool) {
	if !hasAdminPrefix(text) {
		return "", false
	}

	_, rest := utils.FirstWord(text)

	return rest, true
}

// hasAdminPrefix reports whether the first word of text is the admin prefix.
func hasAdminPrefix(text string) bool {
	first, _ := utils.FirstWord(text)
	return strings.EqualFold(first, constants.AdminPrefix)
}
