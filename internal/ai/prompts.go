//nolint:lll
package ai

// Built-in prompts used when no bundle provides the key.
const (
	// ClassificationPrompt instructs the model to classify a player's chat message.
	ClassificationPrompt = `You moderate the text chat of a multiplayer war game server.
Players use the report command to flag other players. Your task is to judge the message itself.
Write the REASON and EXPLANATION in the language with code "{{.Language}}".

Answer with exactly these labelled lines and nothing else:
CATEGORY: one of legit, insult, temp_ban, perma
SEVERITY: one of warning, temp_ban, perma
REASON: a short phrase naming the problem
EXPLANATION: one sentence explaining the decision

Categories:
- legit: an ordinary report or question without misconduct
- insult: the message insults, harasses or provokes other players
- temp_ban: repeated or severe abuse that warrants a temporary ban
- perma: extremist, racist or hateful content that warrants a permanent ban

Use SEVERITY warning for mild insults, temp_ban for heavy slurs and perma for hate speech.`

	// LanguageDetectionPrompt asks for the ISO 639-1 code of a message.
	LanguageDetectionPrompt = `Reply with the two-letter ISO 639-1 code of the language of the user's message. Reply with the code only.`

	// SanctionPrompt asks the model to phrase a short in-game message.
	SanctionPrompt = `Write one short in-game message in the language with code "{{.Language}}" addressed to the player {{.Name}}.
The message announces: {{.Action}}. The reason is: {{.Reason}}.
Stay factual and polite. Do not use markdown. Keep it under {{.MaxLength}} characters.`
)

// fallbackMessages are sent when the model cannot produce a sanction message.
var fallbackMessages = map[Action]string{
	ActionWarning:        "{{.Name}}, this is a warning for your behaviour: {{.Reason}}. Repeated violations lead to a kick.",
	ActionKick:           "{{.Name}}, you have been kicked: {{.Reason}}.",
	ActionTempBan:        "{{.Name}}, you have been banned for 24 hours: {{.Reason}}.",
	ActionPerma:          "{{.Name}}, you have been permanently banned: {{.Reason}}.",
	ActionPositive:       "Thank you for your report, {{.Name}}. An admin will take a look.",
	ActionPlayerNotFound: "{{.Name}}, the reported player could not be found. Please check the name.",
}
