package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/and161185/contact-keeper/internal/convert"
	"github.com/and161185/contact-keeper/internal/errs"
)

type fakeVerifier struct {
	want  string
	id    uuid.UUID
	calls int
}

func (f *fakeVerifier) Verify(tok string) (uuid.UUID, error) {
	f.calls++
	if tok != f.want {
		return uuid.Nil, errs.ErrInvalidToken
	}
	return f.id, nil
}

func Test_bearerToken(t *testing.T) {
	t.Parallel()

	got, err := bearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", got)

	got, err = bearerToken("bearer   abc")
	require.NoError(t, err)
	require.Equal(t, "abc", got)

	for _, h := range []string{"abc", "Basic foo", "Bearer", "Bearer   ", "Bearer a b", "Token abc"} {
		_, err := bearerToken(h)
		require.Errorf(t, err, "header %q", h)
	}
}

func gateApp(v TokenVerifier, hits *int) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler(zap.NewNop())})
	app.Get("/p", AccessGate(v), func(c *fiber.Ctx) error {
		*hits++
		id, ok := UserIDFromCtx(c.UserContext())
		if !ok {
			return errors.New("no user in ctx")
		}
		return c.SendString(id.String())
	})
	return app
}

func TestAccessGate(t *testing.T) {
	t.Parallel()

	uid := uuid.Must(uuid.NewV4())
	v := &fakeVerifier{want: "good", id: uid}
	var hits int
	app := gateApp(v, &hits)

	cases := []struct {
		header string
		code   int
		msg    string
	}{
		{"", http.StatusUnauthorized, "No token"},
		{"good", http.StatusUnauthorized, "Invalid token"},
		{"Basic good", http.StatusUnauthorized, "Invalid token"},
		{"Bearer bad", http.StatusUnauthorized, "Invalid token"},
		{"Bearer good extra", http.StatusUnauthorized, "Invalid token"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equalf(t, tc.code, resp.StatusCode, "header %q", tc.header)
		var m convert.Message
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
		require.Equal(t, tc.msg, m.Msg)
	}
	require.Zero(t, hits, "handler must not run on rejection")

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, hits)
}
