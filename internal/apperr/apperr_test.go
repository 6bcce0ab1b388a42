package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	assert.ErrorIs(t, Invalid("email", "Please enter a valid email address"), ErrValidation)
	assert.ErrorIs(t, &DuplicateError{Field: "username"}, ErrDuplicateKey)
	assert.ErrorIs(t, NotFound("Message"), ErrNotFound)
	assert.ErrorIs(t, Unavailable(errors.New("dial tcp")), ErrStoreUnavailable)
	assert.ErrorIs(t, External("smtp", errors.New("refused")), ErrExternalService)
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Message not found", NotFound("Message").Error())
	assert.Equal(t, "username already exists", (&DuplicateError{Field: "username"}).Error())
	assert.Equal(t, "duplicate key", (&DuplicateError{}).Error())

	wrapped := fmt.Errorf("save: %w", Invalid("title", "title is required"))
	var fe *FieldError
	assert.True(t, errors.As(wrapped, &fe))
	assert.Equal(t, "title", fe.Field)
}
