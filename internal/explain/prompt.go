package explain

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the request as an LLM prompt
func BuildPrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString(systemPrompt)
	sb.WriteString("\n\n")

	sb.WriteString("## Line\n\n")
	sb.WriteString(fmt.Sprintf("File: %s, line %d\n", req.Path, req.Line))
	if req.Details != nil {
		sb.WriteString("```\n")
		sb.WriteString(req.Details.Line)
		sb.WriteString("\n```\n")
		if req.Details.IsNewLine() {
			sb.WriteString("The whole line was introduced by this commit.\n")
		} else {
			for _, change := range req.Details.Changes {
				line := []rune(req.Details.Line)
				sb.WriteString(fmt.Sprintf("- %s characters %d-%d: %q\n",
					change.Type, change.Start, change.End, string(line[change.Start:change.End])))
			}
		}
	}
	sb.WriteString("\n")

	rev := req.Revision
	sb.WriteString("## Commit\n\n")
	sb.WriteString(fmt.Sprintf("Commit: %s\n", rev.Hash))
	sb.WriteString(fmt.Sprintf("Author: %s\n", rev.Author))
	if !rev.Date.IsZero() {
		sb.WriteString(fmt.Sprintf("Date: %s\n", rev.Date.Format("2006-01-02 15:04")))
	}
	message := req.Message
	if message == "" {
		message = rev.Message
	}
	sb.WriteString("\n")
	sb.WriteString(strings.TrimSpace(message))
	sb.WriteString("\n\n")

	if req.Changes != nil && len(req.Changes.Changes) > 0 {
		sb.WriteString("## Files changed in the same commit\n\n")
		for _, change := range req.Changes.Changes {
			if change.IsRenamed() {
				sb.WriteString(fmt.Sprintf("- %s %s -> %s\n", change.Status, change.OldPath, change.Path))
				continue
			}
			sb.WriteString(fmt.Sprintf("- %s %s\n", change.Status, change.Path))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(outputInstructions)

	return sb.String()
}

const systemPrompt = `You are a senior software engineer helping a colleague understand the history of a codebase. You are shown one line of a file, the exact characters the last commit changed on it, and that commit's metadata.`

const outputInstructions = `## Required Output

Explain in two to four sentences why this line most likely changed, based on the commit message and the change itself. Do not speculate beyond the evidence. Respond in plain text, no markdown.`
