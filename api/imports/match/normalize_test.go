package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ACME CORP", Normalize(" ACME Corp. "))
	assert.Equal(t, Normalize("acme corp"), Normalize(" ACME Corp. "))
	assert.Equal(t, "J J SUPPLIES 2000", Normalize("J&J Supplies (2000)"))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "", Normalize("!!!"))
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "14 CHURCH ST", NormalizeAddress("14 Church Street"))
	assert.Equal(t, NormalizeAddress("14 Church St"), NormalizeAddress("14 Church Street"))
	assert.Equal(t, "2 LONG RD MIDRAND", NormalizeAddress("2 Long Road, Midrand"))
	assert.Equal(t, "5 OAK AVE", NormalizeAddress("5 Oak Avenue"))
}
