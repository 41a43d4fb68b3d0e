package noflood

import (
	"strings"
	"unicode"
)

// Command is a prefixed chat command split into its name and the raw text
// that follows it.
type Command struct {
	Name string
	Args string
}

// ParseCommand recognises "<prefix><name>[@bot] [args]". A command addressed
// to another bot (an @suffix different from botName) is not ours.
func ParseCommand(text string, prefixes []string, botName string) (Command, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Command{}, false
	}

	var rest string
	matched := false
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(text, p) {
			rest = text[len(p):]
			matched = true
			break
		}
	}
	if !matched {
		return Command{}, false
	}

	head, args := rest, ""
	if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
		head, args = rest[:i], rest[i:]
	}
	if name, target, ok := strings.Cut(head, "@"); ok {
		if botName != "" && !strings.EqualFold(target, botName) {
			return Command{}, false
		}
		head = name
	}
	if head == "" {
		return Command{}, false
	}

	return Command{Name: strings.ToLower(head), Args: strings.TrimSpace(args)}, true
}

// Type returns everything after the command name; "" means no argument.
func (c Command) Type() string {
	return c.Args
}

// Context splits the arguments into a lowercase subcommand and the free
// text after it. Both are "" when absent.
func (c Command) Context() (typ, context string) {
	fields := strings.Fields(c.Args)
	if len(fields) == 0 {
		return "", ""
	}
	typ = fields[0]
	context = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(c.Args), typ))
	return strings.ToLower(typ), context
}
