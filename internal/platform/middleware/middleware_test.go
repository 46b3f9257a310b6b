package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/")

	err := RequestID()(func(c echo.Context) error {
		if rid, _ := c.Get("request_id").(string); rid == "" {
			t.Error("request_id must be set on the context")
		}
		return okHandler(c)
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("response must echo the request id")
	}
}

func TestRequestID_KeepsCallerSuppliedID(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/")
	c.Request().Header.Set(RequestIDHeader, "upstream-id-7")

	err := RequestID()(func(c echo.Context) error {
		if rid, _ := c.Get("request_id").(string); rid != "upstream-id-7" {
			t.Errorf("request_id = %q, want upstream-id-7", rid)
		}
		return okHandler(c)
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "upstream-id-7" {
		t.Errorf("response header = %q, want upstream-id-7", got)
	}
}

func TestLogger_PassesResultThrough(t *testing.T) {
	logger := zerolog.Nop()

	c, _ := newContext(http.MethodGet, "/test")
	if err := Logger(logger)(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, _ = newContext(http.MethodGet, "/test")
	wantErr := echo.NewHTTPError(http.StatusBadRequest, "bad")
	if err := Logger(logger)(func(echo.Context) error { return wantErr })(c); err != wantErr {
		t.Errorf("err = %v, want the handler error unchanged", err)
	}
}

func TestRecovery_ConvertsPanicTo500(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/panic")

	err := Recovery(zerolog.Nop())(func(echo.Context) error {
		panic("boom")
	})(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("err = %T, want *echo.HTTPError", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", httpErr.Code)
	}
}

func TestRecovery_NoPanicPassesThrough(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/ok")
	if err := Recovery(zerolog.Nop())(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
