package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	cases := map[string]string{
		"":                                   "",
		"PT Maju Jaya":                       "PT Maju Jaya",
		"<b>PT</b> Maju":                     "PT Maju",
		"<script>alert(1)</script>CV Sentosa": "CV Sentosa",
		"PT A & B":                           "PT A & B",
		"  spaced  ":                         "spaced",
	}
	for in, want := range cases {
		assert.Equal(t, want, Text(in), "input %q", in)
	}
}
