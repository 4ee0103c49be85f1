package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, "name: must not be empty", Invalid("name", "must not be empty").Error())
	assert.Equal(t, "bad", (&ValidationError{Msg: "bad"}).Error())
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, `category "abc" not found`, NotFound("category", "abc").Error())
	assert.Equal(t, "session not found", NotFound("session", "").Error())
}

func TestClassificationThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("create sub-category: %w", Invalid("name", "duplicate"))
	assert.True(t, IsValidation(wrapped))
	assert.False(t, IsNotFound(wrapped))

	nf := fmt.Errorf("get: %w", NotFound("schedule", "1"))
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsPersistence(nf))
}

func TestPersistenceWrapsOnlyUnclassified(t *testing.T) {
	assert.Nil(t, Persistence("op", nil))

	base := errors.New("disk full")
	err := Persistence("insert session", base)
	assert.True(t, IsPersistence(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "insert session: disk full", err.Error())

	v := Invalid("title", "required")
	assert.Same(t, v, Persistence("op", v))

	nf := NotFound("category", "x")
	assert.Same(t, nf, Persistence("op", nf))
}
