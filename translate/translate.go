// Package translate localizes the assembler's diagnostic messages.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	once    sync.Once
	printer *message.Printer
)

// load picks the printer from the user's locales the first time a message
// is needed.
func load() {
	once.Do(func() {
		if printer != nil {
			return
		}

		locales, err := locale.GetLocales()
		if err != nil {
			log.Printf("asm68k: locale: %v", err)
		}

		if len(locales) == 0 {
			locales = []string{"en-US"}
		}

		printer = message.NewPrinter(message.MatchLanguage(locales...))
	})
}

// SetLanguage forces the message language, ignoring the user's locale.
// An unparsable tag selects en-US.
func SetLanguage(tag string) {
	lang, err := language.Parse(tag)
	if err != nil {
		lang = language.AmericanEnglish
	}
	once.Do(func() {})
	printer = message.NewPrinter(lang)
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	load()
	return printer.Sprintf(key, args...)
}
