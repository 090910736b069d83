package doctor

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/validation"
	"github.com/clinic/clinic/internal/platform/web"
)

const (
	msgCreated      = "Médico adicionado com sucesso"
	msgUpdated      = "Médico atualizado com sucesso"
	msgDeleted      = "Médico deletado com sucesso"
	msgSaveFailed   = "Erro ao salvar médico"
	msgDeleteFailed = "Erro ao deletar médico"
	msgNotFound     = "Médico não encontrado"
	msgBadRequest   = "Requisição inválida"
)

const listPath = "/doctors"

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(pages *echo.Group, actions *echo.Group) {
	pages.GET(listPath, h.ListPage)
	pages.POST(listPath, h.SubmitForm)
	pages.POST(listPath+"/:id/delete", h.DeleteForm)

	actions.POST("/upsert-doctor", h.UpsertAction)
	actions.POST("/delete-doctor", h.DeleteAction)
}

func clinicID(c echo.Context) (uuid.UUID, error) {
	id, ok := auth.ClinicIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusForbidden, "Clínica não encontrada")
	}
	return id, nil
}

// ListPage renders the clinic's doctors, or the empty state.
func (h *Handler) ListPage(c echo.Context) error {
	cid, err := clinicID(c)
	if err != nil {
		return err
	}

	form := defaultInput()
	if edit := c.QueryParam("edit"); edit != "" {
		if id, err := uuid.Parse(edit); err == nil {
			if d, err := h.svc.GetDoctor(c.Request().Context(), cid, id); err == nil {
				form = d.Input()
			}
		}
	}
	return h.render(c, http.StatusOK, cid, form, nil)
}

// defaultInput pre-fills a new doctor as available Monday to Friday, 08:00-18:00.
func defaultInput() UpsertInput {
	return UpsertInput{
		AvailableFromWeekDay: 1,
		AvailableToWeekDay:   5,
		AvailableFromTime:    "08:00:00",
		AvailableToTime:      "18:00:00",
	}
}

func (h *Handler) render(c echo.Context, status int, cid uuid.UUID, form UpsertInput, errs validation.Errors) error {
	doctors, err := h.svc.ListDoctors(c.Request().Context(), cid)
	if err != nil {
		return err
	}

	page := web.NewPage(c, "Médicos")
	page.Form = form
	if errs != nil {
		page.Errors = errs
	}
	page.Data = doctors
	return c.Render(status, "doctors", page)
}

func (h *Handler) SubmitForm(c echo.Context) error {
	cid, err := clinicID(c)
	if err != nil {
		return err
	}

	var in UpsertInput
	if err := c.Bind(&in); err != nil {
		web.Error(c, msgSaveFailed)
		return c.Redirect(http.StatusSeeOther, listPath)
	}

	_, err = h.svc.UpsertDoctor(c.Request().Context(), cid, in)
	if errs, ok := validation.AsErrors(err); ok {
		in.Normalize()
		return h.render(c, http.StatusUnprocessableEntity, cid, in, errs)
	}
	switch {
	case errors.Is(err, ErrNotFound):
		web.Error(c, msgNotFound)
	case err != nil:
		h.logger.Error().Err(err).Str("clinic_id", cid.String()).Msg("upsert doctor")
		web.Error(c, msgSaveFailed)
	case in.ID != "":
		web.Success(c, msgUpdated)
	default:
		web.Success(c, msgCreated)
	}
	return c.Redirect(http.StatusSeeOther, listPath)
}

func (h *Handler) DeleteForm(c echo.Context) error {
	cid, err := clinicID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		web.Error(c, msgNotFound)
		return c.Redirect(http.StatusSeeOther, listPath)
	}

	err = h.svc.DeleteDoctor(c.Request().Context(), cid, id)
	switch {
	case errors.Is(err, ErrNotFound):
		web.Error(c, msgNotFound)
	case err != nil:
		h.logger.Error().Err(err).Str("clinic_id", cid.String()).Msg("delete doctor")
		web.Error(c, msgDeleteFailed)
	default:
		web.Success(c, msgDeleted)
	}
	return c.Redirect(http.StatusSeeOther, listPath)
}

func (h *Handler) UpsertAction(c echo.Context) error {
	cid, err := clinicID(c)
	if err != nil {
		return err
	}

	var in UpsertInput
	if err := c.Bind(&in); err != nil {
		return web.ActionError(c, http.StatusBadRequest, msgBadRequest)
	}

	d, err := h.svc.UpsertDoctor(c.Request().Context(), cid, in)
	if errs, ok := validation.AsErrors(err); ok {
		return web.ActionValidation(c, errs)
	}
	if errors.Is(err, ErrNotFound) {
		return web.ActionError(c, http.StatusNotFound, msgNotFound)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("clinic_id", cid.String()).Msg("upsert doctor")
		return web.ActionError(c, http.StatusInternalServerError, msgSaveFailed)
	}
	return web.ActionOK(c, d)
}

func (h *Handler) DeleteAction(c echo.Context) error {
	cid, err := clinicID(c)
	if err != nil {
		return err
	}

	var in DeleteInput
	if err := c.Bind(&in); err != nil {
		return web.ActionError(c, http.StatusBadRequest, msgBadRequest)
	}
	if errs := in.Check(h.svc.v); errs != nil {
		return web.ActionValidation(c, errs)
	}

	id := uuid.MustParse(in.ID)
	err = h.svc.DeleteDoctor(c.Request().Context(), cid, id)
	if errors.Is(err, ErrNotFound) {
		return web.ActionError(c, http.StatusNotFound, msgNotFound)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("clinic_id", cid.String()).Msg("delete doctor")
		return web.ActionError(c, http.StatusInternalServerError, msgDeleteFailed)
	}
	return web.ActionOK(c, map[string]string{"id": id.String()})
}
