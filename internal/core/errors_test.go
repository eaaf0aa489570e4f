package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	base := errors.New("boom")

	v := Validationf("paragraph %d out of range", 3)
	assert.ErrorIs(t, v, ErrValidation)
	assert.Contains(t, v.Error(), "paragraph 3 out of range")

	assert.ErrorIs(t, Structuref("no records"), ErrStructure)

	x := Extraction("keyphrases", base)
	assert.ErrorIs(t, x, ErrExtraction)
	assert.ErrorIs(t, x, base)

	u := Upstream("s3 get", base)
	assert.ErrorIs(t, u, ErrUpstream)
	assert.ErrorIs(t, u, base)
	assert.NotErrorIs(t, u, ErrValidation)

	assert.NoError(t, Upstream("noop", nil))
}
