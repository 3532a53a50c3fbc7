package s3io

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultAttachmentName is used when sanitizing leaves nothing usable.
const DefaultAttachmentName = "attachment"

var unsafeRx = regexp.MustCompile(`[^A-Za-z0-9_.\-]`)

// SanitizeFilename reduces a client-supplied filename to a flat, ASCII-only
// object key. Accented letters are decomposed (NFKD) so they keep their base
// letter, path separators become word breaks, whitespace runs become "_",
// anything outside [A-Za-z0-9_.-] is dropped and leading/trailing dots and
// underscores are trimmed, so "../../etc/passwd" becomes "etc_passwd".
func SanitizeFilename(name string) string {
	name = norm.NFKD.String(name)
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeRx.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	if name == "" {
		return DefaultAttachmentName
	}
	return name
}
