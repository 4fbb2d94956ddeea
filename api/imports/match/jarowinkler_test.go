package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJaroIdentityAndEmpty(t *testing.T) {
	assert.Equal(t, 1.0, Jaro("ACME", "ACME"))
	assert.Equal(t, 0.0, Jaro("", "ACME"))
	assert.Equal(t, 0.0, Jaro("ACME", ""))
	assert.Equal(t, 1.0, Jaro("", ""))
	assert.Equal(t, 0.0, Jaro("ABC", "XYZ"))
}

func TestJaroSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"MARTHA", "MARHTA"},
		{"DWAYNE", "DUANE"},
		{"ACME TRADERS", "ACME TRADING"},
		{"CAPE TOWN", "KAAPSTAD"},
	}
	for _, p := range pairs {
		assert.Equal(t, Jaro(p[0], p[1]), Jaro(p[1], p[0]), "%s / %s", p[0], p[1])
		assert.Equal(t, JaroWinkler(p[0], p[1]), JaroWinkler(p[1], p[0]), "%s / %s", p[0], p[1])
	}
}

func TestJaroKnownPairs(t *testing.T) {
	assert.InDelta(t, 0.9444, Jaro("MARTHA", "MARHTA"), 0.0001)
	assert.InDelta(t, 0.8222, Jaro("DWAYNE", "DUANE"), 0.0001)
}

func TestJaroWinklerPrefixBoost(t *testing.T) {
	assert.InDelta(t, 0.9611, JaroWinkler("MARTHA", "MARHTA"), 0.0001)
	assert.InDelta(t, 0.8400, JaroWinkler("DWAYNE", "DUANE"), 0.0001)

	// The boost rewards a shared prefix but never reaches 1.0 for unequal
	// strings.
	jw := JaroWinkler("ACME TRADERS", "ACME TRADING")
	assert.Greater(t, jw, Jaro("ACME TRADERS", "ACME TRADING"))
	assert.Less(t, jw, 1.0)
}
