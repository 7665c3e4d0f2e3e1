package subst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, rule string) Subst {
	t.Helper()
	s, err := Parse(rule)
	require.NoError(t, err)
	return s
}

func TestApply_Trivial(t *testing.T) {
	s := mustParse(t, "[foo: {:d}] -> [foo: {{m[0] + 2}}];")
	n, out, err := s.Apply("[foo: 5]", nil, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "[foo: 7]", out)
}

func TestApply_Multiple(t *testing.T) {
	s := mustParse(t, "[foo: {:d}] -> [foo: {{m[0] + 2}}];")
	n, out, err := s.Apply("[foo: 5][foo: 6]", nil, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "[foo: 7][foo: 8]", out)
}

func TestApply_Condition(t *testing.T) {
	s := mustParse(t, "[foo: {:d}] if m[0] > 5 -> [foo: {{m[0] + 2}}];")
	assert.Equal(t, "m[0] > 5", s.Condition)

	n, out, err := s.Apply("[foo: 5]", nil, false)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "[foo: 5]", out)

	n, out, err = s.Apply("[foo: 6]", nil, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "[foo: 8]", out)
}

func TestApply_NoMatch(t *testing.T) {
	s := Subst{Pattern: "[foo: {:d}]", Replacement: "[foo: {{m[0] + 2}}]"}
	_, out, err := s.Apply("[bar: 5]", nil, false)
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.Equal(t, "[bar: 5]", out)

	n, out, err := s.Apply("[bar: 5]", nil, true)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "[bar: 5]", out)
}

func TestApply_ReplacementNotRescanned(t *testing.T) {
	s := mustParse(t, "[foo: {:d}] -> [foo: {{m[0] * 2}}]")
	n, out, err := s.Apply("a [foo: 1] b [foo: 2] c", nil, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "a [foo: 2] b [foo: 4] c", out)

	// a template that does not reintroduce the pattern leaves nothing to match
	strip := mustParse(t, "[foo: {:d}] -> [bar: {{m[0]}}]")
	_, once, err := strip.Apply("[foo: 1][foo: 2]", nil, false)
	require.NoError(t, err)
	n, twice, err := strip.Apply(once, nil, true)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, once, twice)
}

func TestApply_ExtraContextAndFloatFormatting(t *testing.T) {
	s := mustParse(t, "[Slime A: damaged {:d}] -> [Slime A: damaged {{m[0] * 1.25}}];")
	_, out, err := s.Apply("[Slime A: damaged 4]", nil, false)
	require.NoError(t, err)
	assert.Equal(t, "[Slime A: damaged 5]", out)

	stacks := mustParse(t, "[me: damaged {:d}] -> [me: damaged {{m[0] + counter}}]")
	_, out, err = stacks.Apply("[me: damaged 2]", map[string]interface{}{"counter": 3}, false)
	require.NoError(t, err)
	assert.Equal(t, "[me: damaged 5]", out)
}

func TestApply_CaseInsensitivePattern(t *testing.T) {
	s := mustParse(t, "[slime a: damaged {:d}] -> [slime a: damaged 0]")
	n, _, err := s.Apply("[Slime A: damaged 9]", nil, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestApply_NamedCapturesAndFilters(t *testing.T) {
	s := mustParse(t, "[{who:w}: healed {amount:d}] -> [{{m.who}}: healed {{m.amount * 1.5 | int}}]")
	_, out, err := s.Apply("[celine: healed 5]", nil, false)
	require.NoError(t, err)
	assert.Equal(t, "[celine: healed 7]", out)
}

func TestApply_PythonSpellings(t *testing.T) {
	s := mustParse(t, "[foo: {:d}] if m[0] != 3 and True -> [foo: 0]")
	_, out, err := s.Apply("[foo: 3][foo: 4]", nil, false)
	require.NoError(t, err)
	assert.Equal(t, "[foo: 3][foo: 0]", out)
}

func TestApply_FloorDivision(t *testing.T) {
	for _, tc := range []struct {
		expr, in, want string
	}{
		{"m[0] // 2", "7", "3"},
		{"m[0] * 3 // 2", "5", "7"},
		{"1 + m[0] // 2", "9", "5"},
		{"-m[0] // 2", "7", "-4"},
		{"m[0] // 2 // 2", "9", "2"},
		{"(m[0] + 1) // 2 ** 2", "7", "2"},
		{"max(m[0], 4) // 3", "7", "2"},
	} {
		t.Run(tc.expr, func(t *testing.T) {
			s := mustParse(t, "[foo: {:d}] -> [foo: {{ "+tc.expr+" }}]")
			_, out, err := s.Apply("[foo: "+tc.in+"]", nil, false)
			require.NoError(t, err)
			assert.Equal(t, "[foo: "+tc.want+"]", out)
		})
	}
}

func TestTranslate_FloorDivisionLeavesStringsAlone(t *testing.T) {
	code, err := translate(`"a//b" .. str(7 // 2)`)
	require.NoError(t, err)
	assert.Equal(t, `("a//b" .. str ( math.floor((7) / (2)) ))`, code)

	_, err = translate("// 2")
	assert.Error(t, err)
}

func TestApply_BadTemplateKeepsMatch(t *testing.T) {
	s := Subst{Pattern: "[foo: {:d}]", Replacement: "[foo: {{ function() end }}]"}
	n, out, err := s.Apply("[foo: 1]", nil, false)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "[foo: 1]", out)
}

func TestBind(t *testing.T) {
	s := mustParse(t, "[ME: damaged {:d}] if m[0] > 0 -> [me: damaged {{m[0] * 1.25}}];")
	bound := s.Bind("me", "Slime A")
	assert.Equal(t, "[Slime A: damaged {:d}]", bound.Pattern)
	assert.Equal(t, "[Slime A: damaged {{m[0] * 1.25}}]", bound.Replacement)
	// untouched original
	assert.Equal(t, "[ME: damaged {:d}]", s.Pattern)

	named := mustParse(t, "[meteor: {:d}] -> [meteor: 0]").Bind("me", "X")
	assert.Equal(t, "[meteor: {:d}]", named.Pattern)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("[foo: {:d}] [bar]")
	assert.ErrorIs(t, err, ErrMalformedRule)
	_, err = Parse("[foo: {:q}] -> x")
	assert.ErrorIs(t, err, ErrMalformedRule)
	_, err = Parse(" -> x")
	assert.ErrorIs(t, err, ErrMalformedRule)
}

func TestString_RoundTrip(t *testing.T) {
	rule := "[foo: {:d}] if m[0] > 5 -> [foo: {{m[0] + 2}}];"
	s := mustParse(t, rule)
	assert.Equal(t, rule, s.String())
	again := mustParse(t, s.String())
	assert.Equal(t, s, again)
}
