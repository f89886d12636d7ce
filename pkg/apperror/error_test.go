package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	t.Run("Should read the code of a wrapped AppError", func(t *testing.T) {
		err := fmt.Errorf("creating call: %w", Conflict("duplicate month"))
		assert.Equal(t, http.StatusConflict, StatusOf(err))
	})

	t.Run("Should default to 500 for plain errors", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
	})
}

func TestInternalUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal Server Error", err.Error())
}
