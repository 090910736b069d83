package patient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/web"
)

func newTestHandler(t *testing.T) (*Handler, *mockRepo, *echo.Echo) {
	t.Helper()
	svc, repo := newTestService()
	r, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e := echo.New()
	e.Renderer = r
	return NewHandler(svc, zerolog.Nop()), repo, e
}

func withClinic(req *http.Request, clinicID uuid.UUID) *http.Request {
	s := &auth.Session{UserID: uuid.New(), UserName: "Dra. Helena", ClinicID: clinicID, ClinicName: "Clínica Central"}
	return req.WithContext(auth.WithSession(req.Context(), s))
}

func jsonRequest(target, body string, clinicID uuid.UUID) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return withClinic(req, clinicID)
}

func formRequest(target string, form url.Values, clinicID uuid.UUID) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return withClinic(req, clinicID)
}

func flashOf(t *testing.T, e *echo.Echo, rec *httptest.ResponseRecorder) *web.Flash {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return web.PopFlash(e.NewContext(req, httptest.NewRecorder()))
}

type envelope struct {
	Data             map[string]interface{} `json:"data"`
	ServerError      string                 `json:"serverError"`
	ValidationErrors map[string][]string    `json:"validationErrors"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return env
}

// -- Actions --

func TestUpsertAction_Creates(t *testing.T) {
	h, repo, e := newTestHandler(t)
	clinic := uuid.New()

	body := `{"name":"Ana Silva","email":"ana@x.com","phoneNumber":"11999999999","sex":"female"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest("/actions/upsert-patient", body, clinic), rec)

	if err := h.UpsertAction(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decode(t, rec)
	if env.Data["name"] != "Ana Silva" || env.Data["sex"] != "female" {
		t.Errorf("unexpected data %v", env.Data)
	}
	if env.Data["clinicId"] != clinic.String() {
		t.Errorf("expected clinicId %s, got %v", clinic, env.Data["clinicId"])
	}
	if len(repo.patients) != 1 {
		t.Errorf("expected one patient, got %d", len(repo.patients))
	}
}

func TestUpsertAction_InvalidSex(t *testing.T) {
	h, repo, e := newTestHandler(t)

	body := `{"name":"Ana Silva","email":"ana@x.com","phoneNumber":"11999999999","sex":"other"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest("/actions/upsert-patient", body, uuid.New()), rec)

	if err := h.UpsertAction(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	env := decode(t, rec)
	if got := env.ValidationErrors["sex"]; len(got) != 1 || got[0] != "Selecione um sexo válido" {
		t.Errorf("unexpected validation errors %v", env.ValidationErrors)
	}
	if len(repo.patients) != 0 {
		t.Error("expected nothing persisted")
	}
}

func TestUpsertAction_UnknownID(t *testing.T) {
	h, _, e := newTestHandler(t)

	body := `{"id":"` + uuid.NewString() + `","name":"Ana Silva","email":"ana@x.com","phoneNumber":"11999999999","sex":"female"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest("/actions/upsert-patient", body, uuid.New()), rec)

	_ = h.UpsertAction(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if env := decode(t, rec); env.ServerError != "Paciente não encontrado" {
		t.Errorf("unexpected serverError %q", env.ServerError)
	}
}

func TestUpsertAction_RepoFailure(t *testing.T) {
	h, repo, e := newTestHandler(t)
	repo.failWith = errors.New("connection refused")

	body := `{"name":"Ana Silva","email":"ana@x.com","phoneNumber":"11999999999","sex":"female"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest("/actions/upsert-patient", body, uuid.New()), rec)

	_ = h.UpsertAction(c)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if env := decode(t, rec); env.ServerError != "Erro ao salvar paciente" {
		t.Errorf("unexpected serverError %q", env.ServerError)
	}
}

func TestUpsertAction_RequiresClinic(t *testing.T) {
	h, _, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/actions/upsert-patient", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.UpsertAction(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestDeleteAction(t *testing.T) {
	h, repo, e := newTestHandler(t)
	clinic := uuid.New()
	p, _ := h.svc.UpsertPatient(context.Background(), clinic, validInput())

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest("/actions/delete-patient", `{"id":"`+p.ID.String()+`"}`, clinic), rec)

	if err := h.DeleteAction(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(repo.patients) != 0 {
		t.Error("expected patient removed")
	}
}

func TestDeleteAction_UppercaseID(t *testing.T) {
	h, repo, e := newTestHandler(t)
	clinic := uuid.New()
	p, _ := h.svc.UpsertPatient(context.Background(), clinic, validInput())

	rec := httptest.NewRecorder()
	body := `{"id":"` + strings.ToUpper(p.ID.String()) + `"}`
	c := e.NewContext(jsonRequest("/actions/delete-patient", body, clinic), rec)

	if err := h.DeleteAction(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.patients) != 0 {
		t.Error("expected patient removed")
	}
}

func TestDeleteAction_InvalidID(t *testing.T) {
	h, _, e := newTestHandler(t)
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest("/actions/delete-patient", `{"id":"abc"}`, uuid.New()), rec)

	_ = h.DeleteAction(c)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if env := decode(t, rec); env.ValidationErrors["id"][0] != "ID inválido" {
		t.Errorf("unexpected errors %v", env.ValidationErrors)
	}
}

func TestDeleteAction_NotFound(t *testing.T) {
	h, _, e := newTestHandler(t)
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest("/actions/delete-patient", `{"id":"`+uuid.NewString()+`"}`, uuid.New()), rec)

	_ = h.DeleteAction(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if env := decode(t, rec); env.ServerError != "Paciente não encontrado" {
		t.Errorf("unexpected serverError %q", env.ServerError)
	}
}

// -- Pages --

func TestSubmitForm_CreatesAndRedirects(t *testing.T) {
	h, repo, e := newTestHandler(t)
	form := url.Values{
		"name":        {"Ana Silva"},
		"email":       {"ana@x.com"},
		"phoneNumber": {"(11) 99999-9999"},
		"sex":         {"female"},
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest("/patients", form, uuid.New()), rec)

	if err := h.SubmitForm(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/patients" {
		t.Fatalf("expected redirect to /patients, got %d %s", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	if f := flashOf(t, e, rec); f == nil || f.Message != "Paciente criado com sucesso" {
		t.Errorf("unexpected flash %+v", f)
	}
	if len(repo.patients) != 1 {
		t.Errorf("expected one patient, got %d", len(repo.patients))
	}
}

func TestSubmitForm_UpdateFlash(t *testing.T) {
	h, _, e := newTestHandler(t)
	clinic := uuid.New()
	p, _ := h.svc.UpsertPatient(context.Background(), clinic, validInput())

	form := url.Values{
		"id":          {p.ID.String()},
		"name":        {"Ana Souza"},
		"email":       {"ana@x.com"},
		"phoneNumber": {"11999999999"},
		"sex":         {"female"},
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest("/patients", form, clinic), rec)

	_ = h.SubmitForm(c)
	if f := flashOf(t, e, rec); f == nil || f.Message != "Paciente atualizado com sucesso" {
		t.Errorf("unexpected flash %+v", f)
	}
}

func TestSubmitForm_RendersFieldErrors(t *testing.T) {
	h, repo, e := newTestHandler(t)
	form := url.Values{
		"name":        {""},
		"email":       {"ana@x.com"},
		"phoneNumber": {"123"},
		"sex":         {"female"},
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest("/patients", form, uuid.New()), rec)

	if err := h.SubmitForm(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Nome é obrigatório", "Número de telefone inválido", `value="ana@x.com"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in page", want)
		}
	}
	if len(repo.patients) != 0 {
		t.Error("expected nothing persisted")
	}
}

func TestSubmitForm_RepoFailureFlash(t *testing.T) {
	h, repo, e := newTestHandler(t)
	repo.failWith = errors.New("boom")
	form := url.Values{
		"name": {"Ana Silva"}, "email": {"ana@x.com"}, "phoneNumber": {"11999999999"}, "sex": {"female"},
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest("/patients", form, uuid.New()), rec)

	_ = h.SubmitForm(c)
	f := flashOf(t, e, rec)
	if f == nil || f.Kind != web.FlashError || f.Message != "Erro ao salvar paciente" {
		t.Errorf("unexpected flash %+v", f)
	}
}

func TestDeleteForm(t *testing.T) {
	h, repo, e := newTestHandler(t)
	clinic := uuid.New()
	p, _ := h.svc.UpsertPatient(context.Background(), clinic, validInput())

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest("/patients/"+p.ID.String()+"/delete", url.Values{}, clinic), rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.DeleteForm(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if f := flashOf(t, e, rec); f == nil || f.Message != "Paciente deletado com sucesso" {
		t.Errorf("unexpected flash %+v", f)
	}
	if len(repo.patients) != 0 {
		t.Error("expected patient removed")
	}
}

func TestDeleteForm_NotFound(t *testing.T) {
	h, _, e := newTestHandler(t)
	id := uuid.NewString()
	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest("/patients/"+id+"/delete", url.Values{}, uuid.New()), rec)
	c.SetParamNames("id")
	c.SetParamValues(id)

	_ = h.DeleteForm(c)
	if f := flashOf(t, e, rec); f == nil || f.Message != "Paciente não encontrado" {
		t.Errorf("unexpected flash %+v", f)
	}
}

func TestListPage_EmptyState(t *testing.T) {
	h, _, e := newTestHandler(t)
	rec := httptest.NewRecorder()
	c := e.NewContext(withClinic(httptest.NewRequest(http.MethodGet, "/patients", nil), uuid.New()), rec)

	if err := h.ListPage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Nenhum paciente cadastrado") {
		t.Error("expected empty state")
	}
}

func TestListPage_RendersCards(t *testing.T) {
	h, _, e := newTestHandler(t)
	clinic := uuid.New()
	p, _ := h.svc.UpsertPatient(context.Background(), clinic, validInput())
	h.svc.UpsertPatient(context.Background(), uuid.New(), UpsertInput{
		Name: "Outra Clínica", Email: "o@x.com", PhoneNumber: "11777777777", Sex: "male",
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/patients?edit="+p.ID.String(), nil)
	c := e.NewContext(withClinic(req, clinic), rec)

	if err := h.ListPage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{"Ana Silva", "Feminino", ">AS<", "Ver detalhes", "Editar Paciente", p.ID.String()} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in page", want)
		}
	}
	if strings.Contains(body, "Outra Clínica") {
		t.Error("expected patients of other clinics to be hidden")
	}
}
