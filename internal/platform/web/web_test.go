package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/validation"
)

func TestInitials(t *testing.T) {
	tests := map[string]string{
		"Ana Silva":          "AS",
		"João":               "J",
		"  Maria  de Souza ": "MdS",
		"":                   "",
	}
	for in, want := range tests {
		if got := Initials(in); got != want {
			t.Errorf("Initials(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWeekDayLabel(t *testing.T) {
	if got := WeekDayLabel(0); got != "Domingo" {
		t.Errorf("expected Domingo, got %q", got)
	}
	if got := WeekDayLabel(6); got != "Sábado" {
		t.Errorf("expected Sábado, got %q", got)
	}
	if got := WeekDayLabel(7); got != "" {
		t.Errorf("expected empty label for 7, got %q", got)
	}
}

func TestShortTime(t *testing.T) {
	if got := ShortTime("08:30:00"); got != "08:30" {
		t.Errorf("expected 08:30, got %q", got)
	}
	if got := ShortTime("08:30"); got != "08:30" {
		t.Errorf("expected 08:30, got %q", got)
	}
}

func TestFlash_RoundTrip(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/patients", nil), rec)
	Success(c, "Paciente criado com sucesso")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)

	f := PopFlash(c)
	if f == nil {
		t.Fatal("expected flash")
	}
	if f.Kind != FlashSuccess || f.Message != "Paciente criado com sucesso" {
		t.Errorf("unexpected flash %+v", f)
	}
	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("expected flash cookie to be cleared, got %+v", cleared)
	}
}

func TestPopFlash_Garbage(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: "%%%"})
	c := e.NewContext(req, httptest.NewRecorder())
	if f := PopFlash(c); f != nil {
		t.Errorf("expected nil flash, got %+v", f)
	}
}

func TestActionEnvelope(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/actions/upsert-patient", nil), rec)
	if err := ActionValidation(c, validation.Errors{"sex": {"Selecione um sexo válido"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
	var body map[string]map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["validationErrors"]["sex"][0] != "Selecione um sexo válido" {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodPost, "/actions/delete-patient", nil), rec)
	_ = ActionError(c, http.StatusNotFound, "Paciente não encontrado")
	if !strings.Contains(rec.Body.String(), `"serverError":"Paciente não encontrado"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "data") {
		t.Errorf("expected data to be omitted, got %s", rec.Body.String())
	}
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	e := echo.New()
	e.Renderer = r
	e.HTTPErrorHandler = ErrorHandler(zerolog.Nop())
	return e
}

func TestErrorHandler_JSONForActions(t *testing.T) {
	e := newTestEcho(t)
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/actions/delete-doctor", nil), rec)

	e.HTTPErrorHandler(echo.NewHTTPError(http.StatusUnauthorized, "Não autenticado"), c)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"serverError":"Não autenticado"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestErrorHandler_HidesInternalErrors(t *testing.T) {
	e := newTestEcho(t)
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/actions/upsert-doctor", nil), rec)

	e.HTTPErrorHandler(errors.New("pq: connection refused"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Errorf("internal error leaked: %s", rec.Body.String())
	}
}

func TestErrorHandler_HTMLPage(t *testing.T) {
	e := newTestEcho(t)
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/nowhere", nil), rec)

	e.HTTPErrorHandler(echo.ErrNotFound, c)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<h1>Not Found</h1>") {
		t.Errorf("expected error page, got %s", rec.Body.String())
	}
}

func TestRenderer_LayoutShowsSessionAndFlash(t *testing.T) {
	e := newTestEcho(t)
	req := httptest.NewRequest(http.MethodGet, "/clinic-form", nil)
	s := &auth.Session{UserID: uuid.New(), UserName: "Dra. Ana"}
	req = req.WithContext(auth.WithSession(req.Context(), s))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("csrf", "token-123")

	page := NewPage(c, "Clínica")
	page.Flash = &Flash{Kind: FlashError, Message: "Erro ao salvar paciente"}
	page.Form = struct{ Name string }{Name: "Clínica Central"}
	page.Errors.Add("name", "Nome é obrigatório")

	if err := c.Render(http.StatusOK, "clinic_form", page); err != nil {
		t.Fatalf("render: %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Dra. Ana",
		"toast-error",
		"Erro ao salvar paciente",
		`value="token-123"`,
		`value="Clínica Central"`,
		"Nome é obrigatório",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in page", want)
		}
	}
}
