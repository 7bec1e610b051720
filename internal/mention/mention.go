// Package mention extracts and resolves the weak note-to-note references
// embedded in rich-text HTML. A mention carries the referenced note's id
// plus a label snapshot taken when the mention was inserted; the label is
// never live-updated, and resolving a mention to a deleted note is a
// no-op rather than an error.
package mention

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/starford/raido/internal/models"
)

// attrID is the attribute the editor puts on mention anchors.
const attrID = "data-mention-id"

// Mention is one reference found in a note body.
type Mention struct {
	NoteID string `json:"noteId"`
	Label  string `json:"label"`
}

// Extract scans opaque HTML for mention anchors and returns them in
// document order. Malformed HTML is tolerated; the tokenizer simply stops
// at the end of input.
func Extract(body string) []Mention {
	var out []Mention
	z := html.NewTokenizer(strings.NewReader(body))

	var current *Mention
	var label strings.Builder
	depth := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return out

		case html.StartTagToken:
			tok := z.Token()
			if current != nil {
				depth++
				continue
			}
			if tok.Data != "a" {
				continue
			}
			for _, a := range tok.Attr {
				if a.Key == attrID && a.Val != "" {
					current = &Mention{NoteID: a.Val}
					label.Reset()
					depth = 1
					break
				}
			}

		case html.TextToken:
			if current != nil {
				label.Write(z.Text())
			}

		case html.EndTagToken:
			if current == nil {
				continue
			}
			depth--
			if depth == 0 {
				current.Label = strings.TrimSpace(label.String())
				out = append(out, *current)
				current = nil
			}
		}
	}
}

// Resolve looks up a mention's target in a snapshot of the live note
// collection. A deleted target yields ok=false and no error: the caller
// treats the click as a no-op.
func Resolve(snapshot []models.Note, noteID string) (models.Note, bool) {
	for _, n := range snapshot {
		if n.ID == noteID {
			return n, true
		}
	}
	return models.Note{}, false
}

// Text strips tags from opaque HTML, returning the concatenated text
// content. Used to feed rich-text payloads into the search index.
func Text(body string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
			b.WriteByte(' ')
		}
	}
}
