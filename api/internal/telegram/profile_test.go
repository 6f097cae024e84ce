package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medassist/api/internal/flow/types"
)

func TestApplyProfile(t *testing.T) {
	form := types.SymptomForm{Description: "cough"}
	require.NoError(t, applyProfile(&form, "name=Ann age=34 gender=Female weight=60.5 height=170 notes=takes ibuprofen daily"))

	assert.Equal(t, "Ann", form.Name)
	require.NotNil(t, form.Age)
	assert.Equal(t, 34, *form.Age)
	require.NotNil(t, form.Gender)
	assert.Equal(t, types.GenderFemale, *form.Gender)
	require.NotNil(t, form.Weight)
	assert.Equal(t, 60.5, *form.Weight)
	assert.Equal(t, "takes ibuprofen daily", form.Notes)

	require.NoError(t, applyProfile(&form, "age=3.5 gender=robot height=-1"))
	assert.Nil(t, form.Age)
	assert.Nil(t, form.Gender)
	assert.Nil(t, form.Height)
	assert.NotNil(t, form.Weight)

	require.NoError(t, applyProfile(&form, "age=0"))
	require.NotNil(t, form.Age)
	assert.Equal(t, 0, *form.Age)

	require.NoError(t, applyProfile(&form, "clear"))
	assert.Equal(t, types.SymptomForm{Description: "cough"}, form)
}

func TestApplyProfileUnknown(t *testing.T) {
	form := types.SymptomForm{}
	err := applyProfile(&form, "blood=A+ age=20 oops")
	assert.ErrorContains(t, err, "unknown field(s) blood, oops")
	require.NotNil(t, form.Age)
}

func TestFormatProfile(t *testing.T) {
	age := 34
	out := formatProfile(types.SymptomForm{Age: &age})
	assert.Contains(t, out, "age: 34")
	assert.Contains(t, out, "gender: not set")
}
