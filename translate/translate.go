// Package translate formats user-facing messages in the host locale.
//
// The locale is taken from EMU64_LANG if set, otherwise from the host
// environment, falling back to en-US.
package translate

import (
	"log"
	"os"
	"strings"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ENV_LANG overrides the host locale, as a comma separated list of
// BCP 47 tags.
const ENV_LANG = "EMU64_LANG"

var (
	tag     language.Tag
	printer *message.Printer
)

// languages returns the preferred locales, best first.
func languages() (locales []string) {
	if env := os.Getenv(ENV_LANG); len(env) != 0 {
		for _, word := range strings.Split(env, ",") {
			word = strings.TrimSpace(word)
			if len(word) != 0 {
				locales = append(locales, word)
			}
		}
		return
	}

	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("emu64: locale: %v", err)
	}

	return
}

func init() {
	tag = Match(languages()...)
	printer = message.NewPrinter(tag)
}

// Match returns the best supported language for the locales.
func Match(locales ...string) language.Tag {
	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	return message.MatchLanguage(locales...)
}

// Language returns the language messages are formatted for.
func Language() language.Tag {
	return tag
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
