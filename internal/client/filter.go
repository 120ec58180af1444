package client

import (
	"sort"
	"strings"

	"github.com/and161185/contact-keeper/internal/convert"
)

// Filter keeps contacts matching every given criterion. Query is lowercased and
// matched against lowercased name, email and tags, and against phone as stored.
// An empty query or tag disables that criterion.
func Filter(cs []convert.Contact, query string, favOnly bool, tag string) []convert.Contact {
	q := strings.ToLower(query)
	out := make([]convert.Contact, 0, len(cs))
	for _, c := range cs {
		if favOnly && !c.IsFavorite {
			continue
		}
		if tag != "" && !hasTag(c.Tags, tag) {
			continue
		}
		if query != "" && !matches(c, q) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matches(c convert.Contact, lower string) bool {
	if strings.Contains(strings.ToLower(c.Name), lower) ||
		strings.Contains(strings.ToLower(c.Email), lower) ||
		strings.Contains(c.Phone, lower) {
		return true
	}
	for _, t := range c.Tags {
		if strings.Contains(strings.ToLower(t), lower) {
			return true
		}
	}
	return false
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Tags returns every tag in use, sorted and de-duplicated.
func Tags(cs []convert.Contact) []string {
	seen := make(map[string]struct{})
	for _, c := range cs {
		for _, t := range c.Tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
