package ai

import (
	"fmt"
	"strings"
)

const summarySystemPrompt = "You are an expert meeting analyzer. Always respond with a single valid JSON object and nothing else."

const extractionSystemPrompt = "You are an expert at extracting action items from meetings. Always respond with a single valid JSON object and nothing else."

func summaryPrompt(transcript string) string {
	return fmt.Sprintf(`Analyze this meeting transcription and provide:
1. A concise summary (2-3 paragraphs)
2. Key discussion points
3. Important decisions made
4. Next steps mentioned

Respond with JSON using exactly these keys and no others:
{
  "summary": "Brief overview of the meeting",
  "key_points": ["Point 1", "Point 2"],
  "decisions": ["Decision 1"],
  "next_steps": ["Step 1"]
}
Use empty arrays when a list has no entries.

Meeting transcription:
%s`, transcript)
}

func extractionPrompt(transcript string, participants []string) string {
	var known string
	if len(participants) > 0 {
		known = fmt.Sprintf("Known participants: %s\n\n", strings.Join(participants, ", "))
	}

	return fmt.Sprintf(`Analyze this meeting transcription and extract all action items, tasks and assignments.

%sFor each task, identify what needs to be done, who should do it (if mentioned),
when it should be completed (if mentioned) and its priority.

Respond with JSON using exactly this shape and no other keys:
{
  "tasks": [
    {
      "title": "Brief task title",
      "description": "Detailed description of what needs to be done",
      "assignee": "Person's name or email if mentioned, otherwise null",
      "due_date": "YYYY-MM-DD if a date is mentioned, otherwise null",
      "priority": "urgent|high|medium|low",
      "context": "Brief context from the meeting"
    }
  ]
}
Return {"tasks": []} when there are no action items.

Meeting transcription:
%s`, known, transcript)
}
