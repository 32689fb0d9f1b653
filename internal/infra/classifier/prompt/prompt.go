package prompt

import "fmt"

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a data-privacy analyst classifying workstation screenshots. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- classification is one of the labels defined by the rules document supplied by the user (e.g. CONFIDENTIAL, INTERNAL, RESTRICTED, PUBLIC).
- sensitivity_rating is an integer from 0 to 10 consistent with the rules document.
- should_be_deleted is a boolean; when true, deletion_date must be an ISO-8601 timestamp.
- reasoning briefly explains what in the image drove the decision.

Schema (example with empty values):
{
  "classification": "<string>",
  "sensitivity_rating": 0,
  "should_be_deleted": false,
  "deletion_date": "<ISO-8601 timestamp or omit>",
  "reasoning": "<string>"
}`
}

// GetUserPrompt builds the user message around the image URL and the ruleset
// in force when the scan was queued.
func GetUserPrompt(imageURL, rulesText string) string {
	return fmt.Sprintf("Classify the screenshot at this URL against the rules below and respond with the JSON per schema.\n\nURL: %s\n\nRules:\n%s", imageURL, rulesText)
}
