package patient

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/validation"
	"github.com/clinic/clinic/internal/platform/web"
	"github.com/clinic/clinic/pkg/pagination"
)

const (
	msgCreated      = "Paciente criado com sucesso"
	msgUpdated      = "Paciente atualizado com sucesso"
	msgDeleted      = "Paciente deletado com sucesso"
	msgSaveFailed   = "Erro ao salvar paciente"
	msgDeleteFailed = "Erro ao deletar paciente"
	msgNotFound     = "Paciente não encontrado"
	msgBadRequest   = "Requisição inválida"
)

const listPath = "/patients"

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the patient pages and actions. Both groups must
// already require a user with a clinic.
func (h *Handler) RegisterRoutes(pages *echo.Group, actions *echo.Group) {
	pages.GET(listPath, h.ListPage)
	pages.POST(listPath, h.SubmitForm)
	pages.POST(listPath+"/:id/delete", h.DeleteForm)

	actions.POST("/upsert-patient", h.UpsertAction)
	actions.POST("/delete-patient", h.DeleteAction)
}

func clinicID(c echo.Context) (uuid.UUID, error) {
	id, ok := auth.ClinicIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusForbidden, "Clínica não encontrada")
	}
	return id, nil
}

// -- Pages --

func (h *Handler) ListPage(c echo.Context) error {
	cid, err := clinicID(c)
	if err != nil {
		return err
	}

	form := UpsertInput{}
	if edit := c.QueryParam("edit"); edit != "" {
		if id, err := uuid.Parse(edit); err == nil {
			if p, err := h.svc.GetPatient(c.Request().Context(), cid, id); err == nil {
				form = p.Input()
			}
		}
	}
	return h.render(c, http.StatusOK, cid, form, nil)
}

func (h *Handler) render(c echo.Context, status int, cid uuid.UUID, form UpsertInput, errs validation.Errors) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPatients(c.Request().Context(), cid, pg.Limit, pg.Offset())
	if err != nil {
		return err
	}

	page := web.NewPage(c, "Pacientes")
	page.Form = form
	if errs != nil {
		page.Errors = errs
	}
	page.Data = pagination.NewPage(items, total, pg)
	return c.Render(status, "patients", page)
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

	_, err = h.svc.UpsertPatient(c.Request().Context(), cid, in)
	if errs, ok := validation.AsErrors(err); ok {
		in.Normalize()
		return h.render(c, http.StatusUnprocessableEntity, cid, in, errs)
	}
	switch {
	case errors.Is(err, ErrNotFound):
		web.Error(c, msgNotFound)
	case err != nil:
		h.logger.Error().Err(err).Str("clinic_id", cid.String()).Msg("upsert patient")
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

	err = h.svc.DeletePatient(c.Request().Context(), cid, id)
	switch {
	case errors.Is(err, ErrNotFound):
		web.Error(c, msgNotFound)
	case err != nil:
		h.logger.Error().Err(err).Str("clinic_id", cid.String()).Msg("delete patient")
		web.Error(c, msgDeleteFailed)
	default:
		web.Success(c, msgDeleted)
	}
	return c.Redirect(http.StatusSeeOther, listPath)
}

// -- Actions --

func (h *Handler) UpsertAction(c echo.Context) error {
	cid, err := clinicID(c)
	if err != nil {
		return err
	}

	var in UpsertInput
	if err := c.Bind(&in); err != nil {
		return web.ActionError(c, http.StatusBadRequest, msgBadRequest)
	}

	p, err := h.svc.UpsertPatient(c.Request().Context(), cid, in)
	if errs, ok := validation.AsErrors(err); ok {
		return web.ActionValidation(c, errs)
	}
	if errors.Is(err, ErrNotFound) {
		return web.ActionError(c, http.StatusNotFound, msgNotFound)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("clinic_id", cid.String()).Msg("upsert patient")
		return web.ActionError(c, http.StatusInternalServerError, msgSaveFailed)
	}
	return web.ActionOK(c, p)
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
	err = h.svc.DeletePatient(c.Request().Context(), cid, id)
	if errors.Is(err, ErrNotFound) {
		return web.ActionError(c, http.StatusNotFound, msgNotFound)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("clinic_id", cid.String()).Msg("delete patient")
		return web.ActionError(c, http.StatusInternalServerError, msgDeleteFailed)
	}
	return web.ActionOK(c, map[string]string{"id": id.String()})
}
