package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripNonDigits(t *testing.T) {
	assert.Equal(t, "45500485067", StripNonDigits("455.004.850-67"))
	assert.Equal(t, "11999999999", StripNonDigits("(11) 99999-9999"))
	assert.Equal(t, "123", StripNonDigits(" 1a2b3c "))
	assert.Equal(t, "", StripNonDigits("abc"))
	assert.Equal(t, "", StripNonDigits(""))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("joana@example.com"))
	assert.True(t, ValidEmail("a@b.co"))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail(""))
	assert.False(t, ValidEmail("Joana <joana@example.com>"), "display names are rejected")
	assert.False(t, ValidEmail("joana@"))
}

func TestLengthBetween(t *testing.T) {
	assert.True(t, LengthBetween("abc", 3, 255))
	assert.False(t, LengthBetween("ab", 3, 255))
	assert.True(t, LengthBetween("ção", 3, 3), "counts runes, not bytes")
}

func TestErrorsMap(t *testing.T) {
	errs := Errors{}
	assert.True(t, errs.Empty())
	assert.False(t, errs.Has("name"))

	errs.Add("name", "The name field is required.")
	errs.Add("name", "The name must be at least 3 characters.")
	errs.Add("email", "The email must be a valid email address.")

	assert.False(t, errs.Empty())
	assert.True(t, errs.Has("name"))
	assert.Len(t, errs["name"], 2)
	assert.Len(t, errs["email"], 1)
}
