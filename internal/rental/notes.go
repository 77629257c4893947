package rental

import (
	"strings"
	"time"
)

// NoteTimeLayout is the timestamp format written into note blocks.
const NoteTimeLayout = "1/2/2006, 3:04:05 PM"

const noteRule = "------------------------------"

// FormatNote returns prev with a new note block appended. Blank text leaves
// prev untouched.
func FormatNote(prev, title, agent, text string, now time.Time) string {
	if strings.TrimSpace(text) == "" {
		return prev
	}
	return prev + NoteBlock(title, agent, text, now)
}

// NoteBlock renders a single entry of the notes log.
func NoteBlock(title, agent, text string, now time.Time) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(noteRule)
	b.WriteString("\n[")
	b.WriteString(now.Format(NoteTimeLayout))
	b.WriteString("] - ")
	b.WriteString(title)
	b.WriteString(" (by ")
	b.WriteString(agent)
	b.WriteString(")\n")
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(noteRule)
	return b.String()
}
