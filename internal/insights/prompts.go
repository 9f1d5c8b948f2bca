package insights

import "fmt"

const (
	showNotesTranscriptLimit = 8000
	clipTranscriptLimit      = 12000
)

const showNotesSystemPrompt = "You are a professional podcast editor. Create concise, engaging show notes from transcripts."

const clipSelectionSystemPrompt = "You are a social media expert for podcasters. Identify engaging 30-60 second moments that would work as standalone viral clips."

func showNotesUserPrompt(transcript, episodeTitle string) string {
	return fmt.Sprintf(`Create professional show notes for this podcast episode titled %q.

Transcript:
%s

Format:
- Brief episode summary (2-3 sentences)
- Key topics discussed
- 3-5 key takeaways or quotes

Keep it concise and scannable.`, episodeTitle, truncate(transcript, showNotesTranscriptLimit))
}

func clipSelectionUserPrompt(transcript, episodeTitle string) string {
	return fmt.Sprintf(`Analyze this podcast transcript and identify the 3 most engaging moments for social media clips.

Episode: %s

Transcript:
%s

Criteria for clips:
- 30-60 seconds long
- Complete thought (not cut off mid-sentence)
- Surprising, controversial, or valuable insight
- Hook within first 5 seconds
- Works as standalone content

Return ONLY valid JSON (no markdown, no explanation):
{
  "clips": [
    {
      "start_time": 120,
      "end_time": 165,
      "title": "Why AI will replace developers",
      "hook": "The surprising prediction nobody expected"
    }
  ]
}

Estimate timestamps based on natural conversation pacing (150-180 words per minute).`, episodeTitle, truncate(transcript, clipTranscriptLimit))
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
