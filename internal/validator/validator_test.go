package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidatorFirstKeepsCheckOrder(t *testing.T) {
	v := New()
	assert.True(t, v.Valid())
	assert.Equal(t, "", v.First())

	v.Check(true, "ok", "never")
	v.Check(false, "b", "b failed")
	v.Check(false, "a", "a failed")
	v.Check(false, "b", "b failed again")

	assert.False(t, v.Valid())
	assert.Len(t, v.Errors, 2)
	assert.Equal(t, "b failed", v.First())
	assert.Equal(t, "b failed", v.Errors["b"])
}

func TestSearchAllowList(t *testing.T) {
	allowed := []string{"", "Shirt", "red shirt", "000001", "T-Shirt (XL)", "Men's wear", "A&B, Co.", "north_wh/2"}
	for _, s := range allowed {
		assert.True(t, Matches(s, SearchRX), "expected %q to be allowed", s)
	}
	rejected := []string{"@@@", "shirt;", "<script>", "50%", "a*b", "q?x", "#1"}
	for _, s := range rejected {
		assert.False(t, Matches(s, SearchRX), "expected %q to be rejected", s)
	}
}

func TestInAndNonNegative(t *testing.T) {
	assert.True(t, In("edit", "add", "edit", "delete"))
	assert.False(t, In("view", "add", "edit", "delete"))
	assert.True(t, NonNegative(decimal.Zero))
	assert.True(t, NonNegative(decimal.NewFromInt(5)))
	assert.False(t, NonNegative(decimal.NewFromInt(-10)))
}
