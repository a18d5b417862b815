package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPatternEscapesWildcards(t *testing.T) {
	cases := map[string]string{
		"anil":       `%anil%`,
		"_":          `%\_%`,
		"100%":       `%100\%%`,
		`a\b`:        `%a\\b%`,
		`SE_%\`:      `%SE\_\%\\%`,
		"9000000001": `%9000000001%`,
	}
	for in, want := range cases {
		assert.Equal(t, want, containsPattern(in), in)
	}
}
