package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVariant(t *testing.T) {
	cases := map[string]Variant{
		"1":                   Rebirth,
		" 2 ":                 Afterbirth,
		"3":                   AfterbirthPlus,
		"4":                   AfterbirthPlusBP5,
		"5":                   Repentance,
		"rebirth":             Rebirth,
		"Repentance":          Repentance,
		"afterbirth+":         AfterbirthPlus,
		"afterbirth-plus-bp5": AfterbirthPlusBP5,
		"rep":                 Repentance,
	}
	for input, want := range cases {
		got, err := ParseVariant(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	for _, input := range []string{"0", "6", "-1", "", "binding"} {
		_, err := ParseVariant(input)
		assert.ErrorIs(t, err, ErrSlotIndexOutOfRange, input)
	}
}

func TestVariantLayout(t *testing.T) {
	assert.Equal(t, "", Rebirth.CloudPrefix())
	assert.Equal(t, "ab_", Afterbirth.CloudPrefix())
	assert.Equal(t, "abp_", AfterbirthPlus.CloudPrefix())
	assert.Equal(t, "abp_", AfterbirthPlusBP5.CloudPrefix())
	assert.Equal(t, "rep_", Repentance.CloudPrefix())

	assert.Equal(t, AfterbirthPlus.DirectoryName(), AfterbirthPlusBP5.DirectoryName())
	assert.NotEqual(t, AfterbirthPlus.PayloadDirectory(), AfterbirthPlusBP5.PayloadDirectory())
	assert.False(t, Variant(0).Valid())
	assert.Equal(t, "Variant(9)", Variant(9).String())
}

func TestParseActivity(t *testing.T) {
	a, err := ParseActivity("2")
	require.NoError(t, err)
	assert.Equal(t, Backup, a)

	a, err = ParseActivity("toggle-cloud")
	require.NoError(t, err)
	assert.Equal(t, ToggleBackend, a)
	assert.False(t, a.RequiresSlot())
	assert.True(t, Delete.RequiresSlot())

	_, err = ParseActivity("5")
	assert.ErrorIs(t, err, ErrSlotIndexOutOfRange)
	_, err = ParseActivity("upload")
	assert.ErrorIs(t, err, ErrSlotIndexOutOfRange)
}

func TestParseSlot(t *testing.T) {
	for input, want := range map[string]int{"1": 1, "2": 2, " 3\n": 3} {
		got, err := ParseSlot(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	for _, input := range []string{"0", "4", "two", ""} {
		_, err := ParseSlot(input)
		assert.ErrorIs(t, err, ErrSlotIndexOutOfRange, input)
	}
}

func TestBackendFlag(t *testing.T) {
	b, ok := BackendFromFlag("1")
	assert.True(t, ok)
	assert.Equal(t, CloudBackend, b)

	b, ok = BackendFromFlag("0")
	assert.True(t, ok)
	assert.Equal(t, LocalBackend, b)

	for _, v := range []string{"2", "true", "", " 1"} {
		_, ok := BackendFromFlag(v)
		assert.False(t, ok, v)
	}
	assert.Equal(t, LocalBackend, CloudBackend.Toggled())
	assert.Equal(t, "1", CloudBackend.FlagValue())
}
