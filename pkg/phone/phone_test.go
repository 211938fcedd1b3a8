package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"canonical 13 digits untouched", "5511987654321", "5511987654321"},
		{"12 digits gains mobile nine", "551187654321", "5511987654321"},
		{"11 digits gains country code", "11987654321", "5511987654321"},
		{"10 digits gains nine and country code", "1187654321", "5511987654321"},
		{"9 digits assumes sao paulo", "987654321", "5511987654321"},
		{"8 digits assumes sao paulo mobile", "87654321", "5511987654321"},
		{"formatted input stripped first", "(11) 98765-4321", "5511987654321"},
		{"plus prefix stripped", "+55 11 98765-4321", "5511987654321"},
		{"leading zeros trimmed on long input", "005511987654321", "5511987654321"},
		{"long input without country code", "00411987654321", "55411987654321"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.raw))
		})
	}
}

func TestNormalizeFailOpen(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "n/a", Normalize("n/a"))
	assert.Equal(t, "---", Normalize("---"))
}

func TestNormalizeIdempotentOnCanonicalForm(t *testing.T) {
	inputs := []string{"5511987654321", "11987654321", "87654321", "(21) 3456-7890"}
	for _, raw := range inputs {
		once := Normalize(raw)
		assert.Equal(t, once, Normalize(once), "normalize should be stable for %q", raw)
	}
}
