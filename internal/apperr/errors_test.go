package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	t.Run("classified error", func(t *testing.T) {
		err := fmt.Errorf("approve: %w", Denied("write", "registrations"))
		assert.Equal(t, CodePermissionDenied, CodeOf(err))
		assert.True(t, HasCode(err, CodePermissionDenied))
		assert.Contains(t, err.Error(), "missing write permission on registrations")
	})

	t.Run("plain error is upstream", func(t *testing.T) {
		err := errors.New("connection reset")
		assert.Equal(t, CodeUpstream, CodeOf(err))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("wrap keeps cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := Upstream(cause, "list registrations")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "list registrations: boom", err.Error())
	})
}
