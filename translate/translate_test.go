package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"golang.org/x/text/language"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("'x' is not a register", From("'%v' is not a register", "x"))
	assert.Equal("line 3 'nop' bad", From("line %d '%v' %v", 3, "nop", "bad"))
}

func TestLanguages(t *testing.T) {
	assert := assert.New(t)

	t.Setenv(ENV_LANG, " de-DE, en-GB ,")
	assert.Equal([]string{"de-DE", "en-GB"}, languages())

	assert.Equal(Match(), Match("en-US"))
	assert.IsType(language.Tag{}, Language())
}
