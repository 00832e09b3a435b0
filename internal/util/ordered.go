package util

import "sort"

// OrderedKeys returns the keys of m sorted ascending, giving a deterministic
// order for iterating over a map.
func OrderedKeys[K ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

type ordered interface {
	~int | ~int32 | ~int64 | ~string
}

// ArticleFor returns "a" or "an" depending on whether s starts with a vowel
// letter (a, e, i, o, u in either case), optionally capitalized.
func ArticleFor(s string, capitalize bool) string {
	article := "a"
	if len(s) > 0 {
		switch s[0] {
		case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
			article = "an"
		}
	}
	if capitalize {
		article = string(article[0]-'a'+'A') + article[1:]
	}
	return article
}
