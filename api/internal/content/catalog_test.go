package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medassist/api/internal/flow"
)

func TestBuiltin(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)

	p, ok := c.Lookup(Diseases, flow.Slug("Acute Stress Reaction"))
	require.True(t, ok)
	assert.Equal(t, "/diseases/acute-stress-reaction", p.Path())
	assert.NotEmpty(t, p.Symptoms)
	assert.Len(t, p.Medications, 3)

	p, ok = c.Lookup(Medicines, "decolgen")
	require.True(t, ok)
	assert.Equal(t, Medicines, p.Kind)
	assert.Len(t, p.Ingredients, 3)

	_, ok = c.Lookup(Medicines, "acute-stress-reaction")
	assert.False(t, ok)
	assert.Equal(t, []string{"acute-stress-reaction", "common-cold", "influenza", "migraine"}, c.Slugs(Diseases))
	assert.Equal(t, []string{"decolgen", "ibuprofen", "paracetamol"}, c.Slugs(Medicines))
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte(`
diseases:
  - name: Common Cold
  - name: common  cold
`))
	assert.ErrorContains(t, err, `duplicate diseases slug "common-cold"`)
}

func TestParseRejectsNameless(t *testing.T) {
	_, err := Parse([]byte("medicines:\n  - summary: x\n"))
	assert.Error(t, err)
}
