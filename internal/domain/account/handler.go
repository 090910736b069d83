package account

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/validation"
	"github.com/clinic/clinic/internal/platform/web"
)

const (
	msgInvalidCredentials = "Email ou senha inválidos"
	msgEmailTaken         = "Email já cadastrado"
	msgSignInFailed       = "Erro ao fazer login"
	msgSignUpFailed       = "Erro ao criar conta"
	msgClinicCreated      = "Clínica criada com sucesso"
	msgClinicFailed       = "Erro ao criar clínica"
)

// HomePath is where a user with a clinic lands after signing in.
const HomePath = "/doctors"

type Handler struct {
	svc      *Service
	sessions *auth.SessionManager
	logger   zerolog.Logger
}

func NewHandler(svc *Service, sessions *auth.SessionManager, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, sessions: sessions, logger: logger}
}

// RegisterRoutes mounts the sign-in pages on public and the sign-out and
// clinic pages on signedIn, which must require a user.
func (h *Handler) RegisterRoutes(public *echo.Group, signedIn *echo.Group) {
	public.GET(auth.LoginPath, h.AuthenticationPage)
	public.POST(auth.LoginPath+"/sign-in", h.SignIn)
	public.POST(auth.LoginPath+"/sign-up", h.SignUp)

	signedIn.POST("/sign-out", h.SignOut)
	signedIn.GET(auth.ClinicFormPath, h.ClinicFormPage)
	signedIn.POST(auth.ClinicFormPath, h.CreateClinic)
}

// landing is where s belongs: the clinic form until the user has a clinic.
func landing(s *auth.Session) string {
	if !s.HasClinic() {
		return auth.ClinicFormPath
	}
	return HomePath
}

func (h *Handler) AuthenticationPage(c echo.Context) error {
	if s := auth.SessionFromContext(c.Request().Context()); s != nil {
		return c.Redirect(http.StatusFound, landing(s))
	}
	return h.renderAuth(c, http.StatusOK, "sign-in", SignInInput{}, nil)
}

func (h *Handler) renderAuth(c echo.Context, status int, tab string, form interface{}, errs validation.Errors) error {
	page := web.NewPage(c, "Autenticação")
	page.Data = tab
	page.Form = form
	if errs != nil {
		page.Errors = errs
	}
	return c.Render(status, "authentication", page)
}

func (h *Handler) SignIn(c echo.Context) error {
	var in SignInInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requisição inválida")
	}

	s, err := h.svc.SignIn(c.Request().Context(), in)
	if errs, ok := validation.AsErrors(err); ok {
		return h.renderAuth(c, http.StatusUnprocessableEntity, "sign-in", in, errs)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		return h.renderAuth(c, http.StatusUnauthorized, "sign-in", in, validation.Errors{"password": {msgInvalidCredentials}})
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("sign in")
		web.Error(c, msgSignInFailed)
		return c.Redirect(http.StatusSeeOther, auth.LoginPath)
	}

	if err := h.sessions.Issue(c, *s); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, landing(s))
}

func (h *Handler) SignUp(c echo.Context) error {
	var in SignUpInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requisição inválida")
	}

	s, err := h.svc.SignUp(c.Request().Context(), in)
	if errs, ok := validation.AsErrors(err); ok {
		return h.renderAuth(c, http.StatusUnprocessableEntity, "sign-up", in, errs)
	}
	if errors.Is(err, ErrEmailTaken) {
		return h.renderAuth(c, http.StatusConflict, "sign-up", in, validation.Errors{"email": {msgEmailTaken}})
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("sign up")
		web.Error(c, msgSignUpFailed)
		return c.Redirect(http.StatusSeeOther, auth.LoginPath)
	}

	if err := h.sessions.Issue(c, *s); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, landing(s))
}

func (h *Handler) SignOut(c echo.Context) error {
	h.sessions.Clear(c)
	return c.Redirect(http.StatusSeeOther, auth.LoginPath)
}

func (h *Handler) ClinicFormPage(c echo.Context) error {
	s := auth.SessionFromContext(c.Request().Context())
	if s.HasClinic() {
		return c.Redirect(http.StatusFound, HomePath)
	}
	page := web.NewPage(c, "Adicionar clínica")
	page.Form = ClinicInput{}
	return c.Render(http.StatusOK, "clinic_form", page)
}

func (h *Handler) CreateClinic(c echo.Context) error {
	s := auth.SessionFromContext(c.Request().Context())
	if s == nil {
		return c.Redirect(http.StatusSeeOther, auth.LoginPath)
	}
	if s.HasClinic() {
		return c.Redirect(http.StatusSeeOther, HomePath)
	}

	var in ClinicInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requisição inválida")
	}

	updated, err := h.svc.CreateClinic(c.Request().Context(), s, in)
	if errs, ok := validation.AsErrors(err); ok {
		page := web.NewPage(c, "Adicionar clínica")
		page.Form = in
		page.Errors = errs
		return c.Render(http.StatusUnprocessableEntity, "clinic_form", page)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", s.UserID.String()).Msg("create clinic")
		web.Error(c, msgClinicFailed)
		return c.Redirect(http.StatusSeeOther, auth.ClinicFormPath)
	}

	if err := h.sessions.Issue(c, *updated); err != nil {
		return err
	}
	web.Success(c, msgClinicCreated)
	return c.Redirect(http.StatusSeeOther, HomePath)
}
