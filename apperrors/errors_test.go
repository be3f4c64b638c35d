package apperrors

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(Conflict("duplicate"))
	assert.True(t, ok)
	assert.Equal(t, KindConflict, kind)

	wrapped := fmt.Errorf("outer: %w", NotFound("gone"))
	kind, ok = KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestRespond_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{Authorization("nope"), fiber.StatusForbidden},
		{NotFound("missing"), fiber.StatusNotFound},
		{Validation("bad"), fiber.StatusBadRequest},
		{Conflict("dup"), fiber.StatusConflict},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error {
			return Respond(c, tc.err)
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode, "for error %v", tc.err)
	}
}
