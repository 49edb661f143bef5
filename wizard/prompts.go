package wizard

import (
	"fmt"

	"github.com/minios-linux/draftkit/i18n"
)

// PhaseName returns the localized phase name.
func PhaseName(p Phase) string {
	return i18n.T(p.Title())
}

// WelcomeMessage is shown when a session starts.
func WelcomeMessage() string {
	return fmt.Sprintf(i18n.T("Hello! Enter %s to start."), objectPhrase(PhaseGoal))
}

// TransitionMessage announces the move from one phase to the next.
func TransitionMessage(from, to Phase) string {
	return fmt.Sprintf(i18n.T("The %s phase is complete! Now enter %s."), PhaseName(from), objectPhrase(to))
}

// CompletionMessage is shown when the last phase is finished.
func CompletionMessage() string {
	return i18n.T("All phases are complete! Generating the document...")
}

// objectPhrase renders "<name>(<key>)" with the Korean object particle
// when the localized name ends in a Hangul syllable ("목표(goal)를"), and
// "<name> (<key>)" otherwise.
func objectPhrase(p Phase) string {
	name := PhaseName(p)
	if particle := objectParticle(name); particle != "" {
		return name + "(" + p.Key() + ")" + particle
	}
	return name + " (" + p.Key() + ")"
}

// objectParticle picks 을 or 를 from the final consonant of the last
// syllable of word. Words not ending in Hangul get no particle.
func objectParticle(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return ""
	}
	last := runes[len(runes)-1]
	if last < 0xAC00 || last > 0xD7A3 {
		return ""
	}
	if (last-0xAC00)%28 != 0 {
		return "을"
	}
	return "를"
}
