package render

import (
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/forge/pkg/core"
)

func TestRender_EmptyRecord(t *testing.T) {
	want := "# Use Case: Untitled\n" +
		"**Primary Actor:** Not specified\n" +
		"\n" +
		"## Context\n" +
		"No description provided.\n" +
		"\n" +
		"**Preconditions:**\n" +
		"None.\n" +
		"\n" +
		"## Nominal Scenario\n" +
		"1. \n" +
		"\n" +
		"## Constraints & Outputs\n" +
		"**Postconditions:**\n" +
		"None.\n" +
		"\n" +
		"**Constraints:**\n" +
		"- \n"

	assert.Equal(t, want, Render(core.NewUseCase()))
}

func TestRender_Login(t *testing.T) {
	doc := core.UseCase{
		Title:       "Login",
		Steps:       []string{"Enter credentials", "Submit"},
		Constraints: []string{},
	}

	out := Render(doc)

	assert.Contains(t, out, "# Use Case: Login\n")
	assert.Contains(t, out, "## Nominal Scenario\n1. Enter credentials\n2. Submit\n")
	assert.True(t, strings.HasSuffix(out, "**Constraints:**\n\n"), "constraints body should be empty, got %q", out)
}

func TestRender_ListsKeepOrder(t *testing.T) {
	doc := core.UseCase{
		Title:          "Checkout",
		Actor:          "Customer",
		Description:    "Buy the cart",
		Preconditions:  "Cart not empty",
		Steps:          []string{"Add to cart", "Pay", "Confirm"},
		Postconditions: "Order placed",
		Constraints:    []string{"Card must be valid", "Stock reserved"},
	}

	out := Render(doc)

	assert.Contains(t, out, "**Primary Actor:** Customer\n")
	assert.Contains(t, out, "## Context\nBuy the cart\n")
	assert.Contains(t, out, "**Preconditions:**\nCart not empty\n")
	assert.Contains(t, out, "1. Add to cart\n2. Pay\n3. Confirm\n")
	assert.Contains(t, out, "**Postconditions:**\nOrder placed\n")
	assert.Contains(t, out, "**Constraints:**\n- Card must be valid\n- Stock reserved\n")
}

func TestRender_EmptyStepsHaveNoPlaceholder(t *testing.T) {
	out := Render(core.UseCase{})

	assert.Contains(t, out, "## Nominal Scenario\n\n\n## Constraints & Outputs")
	assert.NotContains(t, out, "1.")
}

func TestRender_SectionOrder(t *testing.T) {
	out := Render(core.NewUseCase())

	last := -1
	for _, h := range defaultRenderer.Headers() {
		idx := strings.Index(out, h)
		require.GreaterOrEqual(t, idx, 0, "missing header %q", h)
		assert.Greater(t, idx, last, "header %q out of order", h)
		last = idx
	}
}

func TestLabelsFor(t *testing.T) {
	tests := []struct {
		locale string
		want   Labels
	}{
		{"", English},
		{"en", English},
		{"fr", French},
		{"fr-FR", French},
		{"fr_CA", French},
		{"de", English},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, LabelsFor(tt.locale))
		})
	}
}

func TestRender_French(t *testing.T) {
	out := New(French).Render(core.NewUseCase())

	assert.True(t, strings.HasPrefix(out, "# Use Case: Sans Titre\n**Acteur Principal:** Non spécifié\n"))
	assert.Contains(t, out, "## Scénario Nominal\n")
	assert.Contains(t, out, "**Post-conditions:**\nAucune.\n")
}

func genUseCase() gopter.Gen {
	return gopter.CombineGens(
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AnyString(),
		gen.SliceOf(gen.AnyString()),
		gen.SliceOf(gen.AlphaString()),
	).Map(func(v []interface{}) core.UseCase {
		return core.UseCase{
			Title:       v[0].(string),
			Actor:       v[1].(string),
			Description: v[2].(string),
			Steps:       v[3].([]string),
			Constraints: v[4].([]string),
		}
	})
}

func TestRender_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("render is deterministic", prop.ForAll(
		func(doc core.UseCase) bool {
			return Render(doc) == Render(doc)
		},
		genUseCase(),
	))

	properties.Property("every section header is present", prop.ForAll(
		func(doc core.UseCase) bool {
			out := Render(doc)
			for _, h := range defaultRenderer.Headers() {
				if !strings.Contains(out, h) {
					return false
				}
			}
			return true
		},
		genUseCase(),
	))

	properties.Property("steps are numbered in order", prop.ForAll(
		func(doc core.UseCase) bool {
			out := Render(doc)
			pos := 0
			for i, step := range doc.Steps {
				line := strconv.Itoa(i+1) + ". " + step
				idx := strings.Index(out[pos:], line)
				if idx < 0 {
					return false
				}
				pos += idx + len(line)
			}
			return true
		},
		genUseCase(),
	))

	properties.TestingRun(t)
}
