// Package rank содержит систему званий сообщества.
package rank

import (
	"fmt"
	"strings"
)

// NextProgress строит текст прогресса до следующих званий: для каждого
// трека берётся первый недостигнутый порог и остаток до него.
// Возвращает пустую строку, если все ступени всех треков уже взяты.
func NextProgress(messages, comments int) string {
	var steps []string

	for _, t := range CommentTiers {
		if comments < t.Threshold {
			steps = append(steps, fmt.Sprintf("💬 Ещё %d комментариев до %s", t.Threshold-comments, t.Title))
			break
		}
	}

	for _, t := range MessageTiers {
		if messages < t.Threshold {
			steps = append(steps, fmt.Sprintf("📨 Ещё %d сообщений до %s", t.Threshold-messages, t.Title))
			break
		}
	}

	for _, t := range CombinedTiers {
		if messages < t.Messages || comments < t.Comments {
			msgLeft := max(0, t.Messages-messages)
			comLeft := max(0, t.Comments-comments)
			steps = append(steps, fmt.Sprintf("🥇 До %s: %d сообщений и %d комментариев", t.Title, msgLeft, comLeft))
			break
		}
	}

	return strings.Join(steps, "\n")
}
