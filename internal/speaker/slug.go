package speaker

import (
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify converts a speaker's display name into a filesystem-safe token
// for use in a profile filename: lowercased, with any run of characters
// that isn't a-z0-9 (including path separators like "/" and "..") collapsed
// to a single hyphen. This keeps an enrollment name like "../../etc/passwd"
// from ever escaping profiles_dir.
func slugify(name string) string {
	s := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "speaker"
	}
	return s
}
