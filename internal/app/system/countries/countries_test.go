package countries_test

import (
	"testing"

	"github.com/dalemusser/profilecompletion/internal/app/system/countries"
	"github.com/stretchr/testify/assert"
)

func TestAll(t *testing.T) {
	all := countries.All()
	assert.Greater(t, len(all), 200)

	seen := map[string]bool{}
	for _, c := range all {
		assert.Len(t, c.Code, 2)
		assert.NotEmpty(t, c.Name)
		assert.False(t, seen[c.Code], "duplicate %s", c.Code)
		seen[c.Code] = true
	}
	assert.True(t, seen["SA"])
}

func TestIsValidAndName(t *testing.T) {
	assert.True(t, countries.IsValid("SA"))
	assert.True(t, countries.IsValid("NZ"))
	assert.False(t, countries.IsValid("sa"))
	assert.False(t, countries.IsValid("ZZ"))
	assert.False(t, countries.IsValid(""))

	assert.Equal(t, "Saudi Arabia", countries.Name("SA"))
	assert.Equal(t, "ZZ", countries.Name("ZZ"))
}

func TestAll_ReturnsCopy(t *testing.T) {
	a := countries.All()
	a[0].Name = "changed"
	assert.NotEqual(t, "changed", countries.All()[0].Name)
}
