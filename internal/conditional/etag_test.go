package conditional

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeakFormatsVersion(t *testing.T) {
	assert.Equal(t, `W/"42"`, Weak("42"))
}

func TestOpaque(t *testing.T) {
	assert.Equal(t, "42", Opaque(`W/"42"`))
	assert.Equal(t, "42", Opaque(`"42"`))
	assert.Equal(t, "42", Opaque(` 42 `))
	assert.Equal(t, "", Opaque(`W/""`))
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		version string
		want    bool
	}{
		{"empty header never matches", "", "42", false},
		{"weak tag", `W/"42"`, "42", true},
		{"strong tag compares weakly", `"42"`, "42", true},
		{"mismatch", `W/"41"`, "42", false},
		{"wildcard", "*", "42", true},
		{"list containing version", `W/"40", W/"42"`, "42", true},
		{"list without version", `W/"40", W/"41"`, "42", false},
		{"blank entries skipped", `, ,W/"42"`, "42", true},
		{"prefix is not equality", `W/"4"`, "42", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.header, tt.version))
		})
	}
}
