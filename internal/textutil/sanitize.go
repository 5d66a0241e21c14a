package textutil

import "strings"

// folderNameReplacer strips filesystem-unsafe characters from folder names.
// Path separators and colons become dashes so adjoining words stay readable;
// the rest are dropped. Parentheses are deliberately kept so year
// annotations like "Heat (1995)" survive.
var folderNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName makes a raw title safe to use as a directory or file name.
// Illegal characters are removed, runs of whitespace collapse to one space,
// and leading/trailing dots and spaces are trimmed.
func SanitizeFileName(name string) string {
	cleaned := folderNameReplacer.Replace(strings.TrimSpace(name))
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return strings.Trim(cleaned, ". ")
}
