package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/aretw0/forge/pkg/core"
)

// formValues is the editable text of a use case. Lists are edited one item
// per line.
type formValues struct {
	Title          string
	Actor          string
	Description    string
	Preconditions  string
	Steps          string
	Postconditions string
	Constraints    string
}

func valuesFrom(u core.UseCase) formValues {
	return formValues{
		Title:          u.Title,
		Actor:          u.Actor,
		Description:    u.Description,
		Preconditions:  u.Preconditions,
		Steps:          strings.Join(u.Steps, "\n"),
		Postconditions: u.Postconditions,
		Constraints:    strings.Join(u.Constraints, "\n"),
	}
}

// applyTo writes every value into the session.
func (v formValues) applyTo(s *core.Session) {
	s.SetField(core.FieldTitle, v.Title)
	s.SetField(core.FieldActor, v.Actor)
	s.SetField(core.FieldDescription, v.Description)
	s.SetField(core.FieldPreconditions, v.Preconditions)
	s.SetField(core.FieldPostconditions, v.Postconditions)
	s.SetSteps(splitLines(v.Steps))
	s.SetConstraints(splitLines(v.Constraints))
}

// splitLines turns a multi-line text into list items. Empty text gives one
// empty item, like a fresh record.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	return strings.Split(text, "\n")
}

// runForm walks the three steps of the editor: context, scenario, validation.
func runForm(v *formValues) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&v.Title),
			huh.NewInput().
				Title("Primary actor").
				Value(&v.Actor),
			huh.NewText().
				Title("Description").
				Value(&v.Description),
			huh.NewText().
				Title("Preconditions").
				Value(&v.Preconditions),
		).Title("Context"),
		huh.NewGroup(
			huh.NewText().
				Title("Nominal scenario").
				Description("One step per line").
				Lines(8).
				Value(&v.Steps),
		).Title("Scenario"),
		huh.NewGroup(
			huh.NewText().
				Title("Postconditions").
				Value(&v.Postconditions),
			huh.NewText().
				Title("Constraints").
				Description("One constraint per line").
				Value(&v.Constraints),
		).Title("Validation"),
	).Run()
}

// fieldFlags are the non-interactive editing flags shared by new and edit.
type fieldFlags struct {
	title          string
	actor          string
	description    string
	preconditions  string
	postconditions string
	steps          []string
	constraints    []string
	strict         bool

	setSteps          []string
	addSteps          []string
	removeSteps       []int
	setConstraints    []string
	addConstraints    []string
	removeConstraints []int
}

// listOps binds one list of the session to its per-item operations.
type listOps struct {
	len    func(core.UseCase) int
	set    func(i int, value string) core.UseCase
	append func() core.UseCase
	remove func(i int) core.UseCase
}

func stepOps(s *core.Session) listOps {
	return listOps{
		len:    func(u core.UseCase) int { return len(u.Steps) },
		set:    s.SetStepAt,
		append: s.AppendStep,
		remove: s.RemoveStepAt,
	}
}

func constraintOps(s *core.Session) listOps {
	return listOps{
		len:    func(u core.UseCase) int { return len(u.Constraints) },
		set:    s.SetConstraintAt,
		append: s.AppendConstraint,
		remove: s.RemoveConstraintAt,
	}
}

// apply runs, in order, "N=text" replacements, removals of 1-based
// positions (highest first, so earlier positions keep their meaning) and
// appends.
func (l listOps) apply(sets []string, removes []int, adds []string) error {
	for _, raw := range sets {
		pos, value, ok := strings.Cut(raw, "=")
		n, err := strconv.Atoi(strings.TrimSpace(pos))
		if !ok || err != nil || n < 1 {
			return fmt.Errorf("invalid item %q, want N=text", raw)
		}
		l.set(n-1, value)
	}

	sorted := slices.Clone(removes)
	slices.Sort(sorted)
	for i := len(sorted) - 1; i >= 0; i-- {
		if i+1 < len(sorted) && sorted[i] == sorted[i+1] {
			continue
		}
		l.remove(sorted[i] - 1)
	}

	for _, value := range adds {
		u := l.append()
		l.set(l.len(u)-1, value)
	}
	return nil
}

func (f *fieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Use case title")
	cmd.Flags().StringVar(&f.actor, "actor", "", "Primary actor")
	cmd.Flags().StringVar(&f.description, "description", "", "Context description")
	cmd.Flags().StringVar(&f.preconditions, "preconditions", "", "Preconditions")
	cmd.Flags().StringVar(&f.postconditions, "postconditions", "", "Postconditions")
	cmd.Flags().StringArrayVar(&f.steps, "step", nil, "Scenario step (repeatable, replaces all steps)")
	cmd.Flags().StringArrayVar(&f.constraints, "constraint", nil, "Constraint (repeatable, replaces all constraints)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Refuse to archive a use case without a title")

	cmd.Flags().StringArrayVar(&f.setSteps, "set-step", nil, "Replace step N: N=text (repeatable)")
	cmd.Flags().StringArrayVar(&f.addSteps, "add-step", nil, "Append a step (repeatable)")
	cmd.Flags().IntSliceVar(&f.removeSteps, "remove-step", nil, "Remove step N (repeatable)")
	cmd.Flags().StringArrayVar(&f.setConstraints, "set-constraint", nil, "Replace constraint N: N=text (repeatable)")
	cmd.Flags().StringArrayVar(&f.addConstraints, "add-constraint", nil, "Append a constraint (repeatable)")
	cmd.Flags().IntSliceVar(&f.removeConstraints, "remove-constraint", nil, "Remove constraint N (repeatable)")
}

// applyTo writes the flags that were set on the command line into the
// session and reports whether any was.
func (f *fieldFlags) applyTo(cmd *cobra.Command, s *core.Session) (bool, error) {
	changed := false
	set := func(flag string, field core.Field, value string) {
		if cmd.Flags().Changed(flag) {
			s.SetField(field, value)
			changed = true
		}
	}

	set("title", core.FieldTitle, f.title)
	set("actor", core.FieldActor, f.actor)
	set("description", core.FieldDescription, f.description)
	set("preconditions", core.FieldPreconditions, f.preconditions)
	set("postconditions", core.FieldPostconditions, f.postconditions)

	if cmd.Flags().Changed("step") {
		s.SetSteps(f.steps)
		changed = true
	}
	if cmd.Flags().Changed("constraint") {
		s.SetConstraints(f.constraints)
		changed = true
	}

	flags := cmd.Flags()
	if flags.Changed("set-step") || flags.Changed("remove-step") || flags.Changed("add-step") {
		if err := stepOps(s).apply(f.setSteps, f.removeSteps, f.addSteps); err != nil {
			return changed, fmt.Errorf("--set-step: %w", err)
		}
		changed = true
	}
	if flags.Changed("set-constraint") || flags.Changed("remove-constraint") || flags.Changed("add-constraint") {
		if err := constraintOps(s).apply(f.setConstraints, f.removeConstraints, f.addConstraints); err != nil {
			return changed, fmt.Errorf("--set-constraint: %w", err)
		}
		changed = true
	}
	return changed, nil
}

// edit fills the session from flags, or from the interactive form when no
// field flag was given. With --strict the result must pass Validate.
func edit(cmd *cobra.Command, flags *fieldFlags, s *core.Session) error {
	applied, err := flags.applyTo(cmd, s)
	if err != nil {
		return err
	}
	if !applied {
		v := valuesFrom(s.Snapshot())
		if err := runForm(&v); err != nil {
			return err
		}
		v.applyTo(s)
	}
	if flags.strict {
		return s.Snapshot().Validate()
	}
	return nil
}
