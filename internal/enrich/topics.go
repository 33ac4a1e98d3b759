// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"regexp"
	"sort"
	"strings"
)

// FallbackTopic is assigned when a lookup succeeds but no keyword matches.
const FallbackTopic = "General Computer Science"

// topicKeywords maps each topic to the phrases that signal it.
var topicKeywords = map[string][]string{
	"Machine Learning":            {"machine learning", "ml", "deep learning", "neural network", "neural networks"},
	"Natural Language Processing": {"nlp", "natural language", "language model", "language models", "text mining"},
	"Computer Vision":             {"computer vision", "image processing", "visual", "cv"},
	"AI":                          {"artificial intelligence", "ai"},
	"Theory":                      {"theory", "theoretical", "algorithm", "algorithms"},
	"Data Science":                {"data science", "data mining", "analytics"},
	"Robotics":                    {"robotics", "robot", "robots", "autonomous"},
	"Healthcare":                  {"healthcare", "medical", "clinical", "health"},
	"Security":                    {"security", "privacy", "cryptography"},
	"Systems":                     {"systems", "distributed", "cloud", "infrastructure"},
}

var topicPatterns = compileTopics()

func compileTopics() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(topicKeywords))
	for topic, kws := range topicKeywords {
		quoted := make([]string, len(kws))
		for i, k := range kws {
			quoted[i] = regexp.QuoteMeta(k)
		}
		out[topic] = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return out
}

// ExtractTopics maps highlight text onto the topic table. Keywords match
// case-insensitively on word boundaries. The result is sorted; when nothing
// matches it is the single FallbackTopic.
func ExtractTopics(highlights []string) []string {
	text := strings.Join(highlights, " ")

	var topics []string
	for topic, re := range topicPatterns {
		if re.MatchString(text) {
			topics = append(topics, topic)
		}
	}
	if len(topics) == 0 {
		return []string{FallbackTopic}
	}
	sort.Strings(topics)
	return topics
}

// CondenseHighlights keeps the first max highlights joined with " | " and
// clips the result to maxChars runes, ending in "..." when clipped.
func CondenseHighlights(highlights []string, max, maxChars int) string {
	if max > 0 && len(highlights) > max {
		highlights = highlights[:max]
	}
	joined := strings.Join(highlights, " | ")

	runes := []rune(joined)
	if maxChars > 3 && len(runes) > maxChars {
		return string(runes[:maxChars-3]) + "..."
	}
	return joined
}
