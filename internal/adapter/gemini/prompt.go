package gemini

import (
	"fmt"
	"strings"
)

const promptTemplate = `You are a helpful assistant for a parking app.
Translate the following Dutch parking tariff description into a specific English format.

Context:
- The 'Current Hourly Rate' for this block is: € %[1]s
- The input text describes specific rules like "Start tariffs" (Stop & Shop) or "Step sizes".

Rules:
1. If the text mentions "stappen van X min" (steps of X min), output: "€ %[1]s/h > payment per X minutes"
2. If the text mentions "Stop en Shop" or "eerste X min Y...", output: "€ [Price] for the first [X] minutes. € %[1]s per hour after [X] minutes".
   (Note: The 'after' price should be the Current Hourly Rate provided above).
3. If the text is generic or just repeats the rate, output it simply as "€ %[1]s per hour".
4. Keep it concise. No markdown, no explanations. Just the final string.

Input Dutch: "%[2]s"
Output English:`

func buildPrompt(text string, hourlyRate float64) string {
	return fmt.Sprintf(promptTemplate, fmt.Sprintf("%.2f", hourlyRate), strings.TrimSpace(text))
}
