// Package render turns use cases into Markdown.
//
// Rendering is pure: the same record always yields byte-identical output, and
// every section header is present even for an empty record.
package render

import (
	"strconv"
	"strings"

	"github.com/aretw0/forge/pkg/core"
)

// Labels holds the fixed wording of a rendered document.
type Labels struct {
	TitlePrefix    string
	Actor          string
	Context        string
	Preconditions  string
	Scenario       string
	Outputs        string
	Postconditions string
	Constraints    string

	UntitledTitle string
	UnknownActor  string
	NoDescription string
	NoConditions  string
}

// English is the default label set.
var English = Labels{
	TitlePrefix:    "Use Case",
	Actor:          "Primary Actor",
	Context:        "Context",
	Preconditions:  "Preconditions",
	Scenario:       "Nominal Scenario",
	Outputs:        "Constraints & Outputs",
	Postconditions: "Postconditions",
	Constraints:    "Constraints",

	UntitledTitle: "Untitled",
	UnknownActor:  "Not specified",
	NoDescription: "No description provided.",
	NoConditions:  "None.",
}

// French is the label set of the French-language editor.
var French = Labels{
	TitlePrefix:    "Use Case",
	Actor:          "Acteur Principal",
	Context:        "Contexte",
	Preconditions:  "Pré-conditions",
	Scenario:       "Scénario Nominal",
	Outputs:        "Contraintes & Sorties",
	Postconditions: "Post-conditions",
	Constraints:    "Contraintes",

	UntitledTitle: "Sans Titre",
	UnknownActor:  "Non spécifié",
	NoDescription: "Pas de description fournie.",
	NoConditions:  "Aucune.",
}

// LabelsFor returns the label set of a locale ("en", "fr", "fr-FR"...).
// Unknown locales fall back to English.
func LabelsFor(locale string) Labels {
	lang, _, _ := strings.Cut(strings.ToLower(locale), "-")
	lang, _, _ = strings.Cut(lang, "_")
	if lang == "fr" {
		return French
	}
	return English
}

// Markdown renders use cases with a fixed label set.
// It implements core.Renderer.
type Markdown struct {
	Labels Labels
}

// New returns a Markdown renderer using labels.
func New(labels Labels) *Markdown {
	return &Markdown{Labels: labels}
}

var defaultRenderer = New(English)

// Render renders doc with the English labels.
func Render(doc core.UseCase) string {
	return defaultRenderer.Render(doc)
}

// Render renders doc as a Markdown document.
func (m *Markdown) Render(doc core.UseCase) string {
	l := m.Labels
	var b strings.Builder

	b.WriteString("# " + l.TitlePrefix + ": " + orDefault(doc.Title, l.UntitledTitle) + "\n")
	b.WriteString("**" + l.Actor + ":** " + orDefault(doc.Actor, l.UnknownActor) + "\n")
	b.WriteString("\n")

	b.WriteString("## " + l.Context + "\n")
	b.WriteString(orDefault(doc.Description, l.NoDescription) + "\n")
	b.WriteString("\n")
	b.WriteString("**" + l.Preconditions + ":**\n")
	b.WriteString(orDefault(doc.Preconditions, l.NoConditions) + "\n")
	b.WriteString("\n")

	b.WriteString("## " + l.Scenario + "\n")
	b.WriteString(numbered(doc.Steps) + "\n")
	b.WriteString("\n")

	b.WriteString("## " + l.Outputs + "\n")
	b.WriteString("**" + l.Postconditions + ":**\n")
	b.WriteString(orDefault(doc.Postconditions, l.NoConditions) + "\n")
	b.WriteString("\n")
	b.WriteString("**" + l.Constraints + ":**\n")
	b.WriteString(bulleted(doc.Constraints) + "\n")

	return b.String()
}

// Headers returns the section headers Render always emits, in order.
func (m *Markdown) Headers() []string {
	l := m.Labels
	return []string{
		"# " + l.TitlePrefix + ":",
		"**" + l.Actor + ":**",
		"## " + l.Context,
		"**" + l.Preconditions + ":**",
		"## " + l.Scenario,
		"**" + l.Postconditions + ":**",
		"**" + l.Constraints + ":**",
	}
}

func numbered(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = strconv.Itoa(i+1) + ". " + it
	}
	return strings.Join(lines, "\n")
}

func bulleted(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

var _ core.Renderer = (*Markdown)(nil)
