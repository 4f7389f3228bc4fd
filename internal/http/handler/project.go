package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"annotation-service/internal/auth"
	"annotation-service/internal/domain/project"
	"annotation-service/internal/service"
	apperrors "annotation-service/pkg/errors"
	"annotation-service/pkg/validator"
)

type ProjectHandler struct {
	projects *service.ProjectService
}

func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// Post creates, updates or deletes a project depending on mode and the
// delete flag.
func (h *ProjectHandler) Post(c echo.Context) error {
	caller, err := auth.GetUserEmail(c)
	if err != nil {
		return respondAppError(c, err)
	}

	name := strings.TrimSpace(c.FormValue(paramProjName))
	if err := validator.ProjectName(name); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	switch c.FormValue(paramMode) {
	case modeCreate:
		p, err := h.projects.Create(c.Request().Context(), caller, project.CreateInput{
			Name:       name,
			Visibility: c.FormValue(paramVisibility),
			Owners:     project.ParseEmails(c.FormValue(paramOwners)),
			Editors:    project.ParseEmails(c.FormValue(paramEditors)),
		})
		if err != nil {
			return respondAppError(c, err)
		}
		return c.JSON(http.StatusCreated, p)

	case modeUpdate:
		in := project.UpdateInput{
			Delete:     parseBool(c.FormValue(paramDelete)),
			Name:       name,
			Visibility: c.FormValue(paramVisibility),
			Owners:     project.ParseEmails(c.FormValue(paramOwners)),
			Editors:    project.ParseEmails(c.FormValue(paramEditors)),
		}
		p, err := h.projects.Update(c.Request().Context(), caller, c.FormValue(paramProjID), in)
		if err != nil {
			return respondAppError(c, err)
		}
		if in.Delete {
			return respondMessage(c, http.StatusOK, msgProjectDeleted)
		}
		return c.JSON(http.StatusOK, p)

	default:
		return respondError(c, http.StatusBadRequest, msgInvalidMode)
	}
}

// Get fetches one project by proj-id, or lists projects matching the
// query filters. Anonymous callers only ever see public projects.
func (h *ProjectHandler) Get(c echo.Context) error {
	caller, _ := auth.GetUserEmail(c)

	if projID := c.QueryParam(paramProjID); projID != "" {
		p, err := h.projects.Get(c.Request().Context(), caller, projID)
		if err != nil {
			return respondAppError(c, err)
		}
		return c.JSON(http.StatusOK, p)
	}

	in := service.ListProjectsInput{
		Role:       c.QueryParam(paramRole),
		Visibility: c.QueryParam(paramVisibility),
		Global:     parseBool(c.QueryParam(paramGlobal)),
		SearchTerm: c.QueryParam(paramSearchTerm),
		Sort:       c.QueryParam(paramSort),
	}

	if caller == "" && !in.Global {
		return respondAppError(c, apperrors.Unauthenticated(msgNotLoggedIn))
	}

	projects, err := h.projects.List(c.Request().Context(), caller, in)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(http.StatusOK, projects)
}

func parseBool(raw string) bool {
	b, err := strconv.ParseBool(raw)
	return err == nil && b
}
