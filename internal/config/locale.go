package config

import (
	"fmt"
	"strings"
)

// maxLanguages caps how many preferred languages AcceptLanguage lists
const maxLanguages = 6

// AcceptLanguage builds an Accept-Language header from the POSIX locale
// variables (LANGUAGE, then LC_ALL, then LANG), most preferred first with
// decreasing quality values. It returns "" when no usable locale is set.
func AcceptLanguage(lookup func(string) (string, bool)) string {
	var candidates []string
	if v, ok := lookup("LANGUAGE"); ok && v != "" {
		candidates = strings.Split(v, ":")
	} else {
		for _, name := range []string{"LC_ALL", "LANG"} {
			if v, ok := lookup(name); ok && v != "" {
				candidates = []string{v}
				break
			}
		}
	}

	var tags []string
	seen := make(map[string]bool)
	for _, c := range candidates {
		tag := languageTag(c)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == maxLanguages {
			break
		}
	}

	parts := make([]string, len(tags))
	for i, tag := range tags {
		parts[i] = fmt.Sprintf("%s;q=%.1f", tag, 1.0-0.1*float64(i))
	}
	return strings.Join(parts, ", ")
}

// languageTag turns a locale such as "en_US.UTF-8" into "en-US"
func languageTag(locale string) string {
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	if locale == "" || locale == "C" || locale == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(locale, "_", "-")
}
