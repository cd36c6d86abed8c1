package routing

import "strings"

type KeywordStrategy struct {
	keywords []string
}

// NewKeywordStrategy builds a strategy that sends a task down the dialogue
// path when its lower-cased text contains any of keywords. Blank keywords
// are dropped.
func NewKeywordStrategy(keywords []string) *KeywordStrategy {
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		normalized = append(normalized, kw)
	}

	return &KeywordStrategy{keywords: normalized}
}

func (k *KeywordStrategy) Select(task string) Path {
	if _, ok := k.Matched(task); ok {
		return PathDialogue
	}
	return PathTask
}

// Matched returns the first keyword found in task, in configuration order.
func (k *KeywordStrategy) Matched(task string) (string, bool) {
	lower := strings.ToLower(task)
	for _, kw := range k.keywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}

// Keywords returns a copy of the normalized keyword list.
func (k *KeywordStrategy) Keywords() []string {
	out := make([]string, len(k.keywords))
	copy(out, k.keywords)
	return out
}
