package providers

import "fmt"

// SystemPrompt frames searches for backends with live web search.
const SystemPrompt = `You are a venue research assistant helping a musician find
performance venues. When searching, focus on:
- Live music venues, bars, restaurants with live music
- Capacity and venue type when available
- Booking contact information if found
- Any mentions of venues seeking musicians

Format your findings as structured data.`

// KnowledgeSystemPrompt is used by backends that answer from training data.
const KnowledgeSystemPrompt = SystemPrompt + `

Note: If you need to search the web, indicate what searches would be helpful.
In production, web search would be performed via external tools.`

// AnalysisSystemPrompt frames the summarize step of two-step backends.
const AnalysisSystemPrompt = `You are a venue research assistant helping a musician find
performance venues. Analyze the search results and focus on:
- Live music venues, bars, restaurants with live music
- Capacity and venue type when available
- Booking contact information if found
- Any mentions of venues seeking musicians

Format your findings as structured data.`

// KnowledgeOnlyNote marks results that did not come from a live search.
const KnowledgeOnlyNote = "\n\n[Note: Ollama response based on training data. " +
	"For real-time web search, use MCP provider with Ollama as LLM backend.]"

const summaryRequest = `1. Venue name
2. City/Location
3. Venue type (bar, restaurant, theater, etc.)
4. Any booking/contact info found
5. Notable details (capacity, genres, etc.)

Also note any opportunities where venues are actively seeking musicians.`

// UserMessage asks a web-search backend to search and summarize.
func UserMessage(query string) string {
	return fmt.Sprintf("Search for: %s\n\nAfter searching, provide a structured summary of venues found with:\n%s",
		query, summaryRequest)
}

// KnowledgeUserMessage asks a knowledge-only backend for what it knows.
func KnowledgeUserMessage(query string) string {
	return fmt.Sprintf(`Search for: %s

Provide a structured summary of venues that match this query with:
1. Venue name
2. City/Location
3. Venue type (bar, restaurant, theater, etc.)
4. Any booking/contact info
5. Notable details (capacity, genres, etc.)

Also note any opportunities where venues are actively seeking musicians.

Based on your knowledge, what information can you provide about venues matching this query?`, query)
}

// AnalysisUserMessage hands search output to the summarizing model.
func AnalysisUserMessage(query, results string) string {
	return fmt.Sprintf("Based on these search results for: %s\n\nSearch Results:\n%s\n\nProvide a structured summary of venues found with:\n%s",
		query, results, summaryRequest)
}
