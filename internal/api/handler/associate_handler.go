package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"associados_api/internal/api/middleware"
	"associados_api/internal/app/service"
	"associados_api/internal/common"
	"associados_api/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type AssociateHandler struct {
	associateService *service.AssociateService
	authenticator    *middleware.Authenticator
}

func NewAssociateHandler(associateService *service.AssociateService, authenticator *middleware.Authenticator) *AssociateHandler {
	return &AssociateHandler{associateService: associateService, authenticator: authenticator}
}

func (h *AssociateHandler) RegisterRoutes(r chi.Router) {
	r.Use(h.authenticator.Handler)
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *AssociateHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateAssociateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, r, &common.RequestError{
			Status:  http.StatusBadRequest,
			Message: "Invalid request payload.",
		})
		return
	}

	associate, err := h.associateService.Create(r.Context(), req)
	if err != nil {
		common.RespondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, associate)
}

type paginationLinks struct {
	First string `json:"first"`
	Last  string `json:"last"`
	Prev  string `json:"prev"`
	Next  string `json:"next"`
}

type paginationMeta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

type paginatedAssociatesResponse struct {
	Data  []model.Associate `json:"data"`
	Links paginationLinks   `json:"links"`
	Meta  paginationMeta    `json:"meta"`
}

func (h *AssociateHandler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	result, err := h.associateService.GetAll(r.Context(), page, perPage)
	if err != nil {
		common.RespondError(w, r, err)
		return
	}

	pageLink := func(n int) string {
		return fmt.Sprintf("%s?page=%d", r.URL.Path, n)
	}
	links := paginationLinks{
		First: pageLink(1),
		Last:  pageLink(result.LastPage),
	}
	if result.Page > 1 {
		links.Prev = pageLink(result.Page - 1)
	}
	if result.Page < result.LastPage {
		links.Next = pageLink(result.Page + 1)
	}

	common.RespondWithJSON(w, http.StatusOK, paginatedAssociatesResponse{
		Data:  result.Items,
		Links: links,
		Meta: paginationMeta{
			CurrentPage: result.Page,
			PerPage:     result.PerPage,
			Total:       result.Total,
			LastPage:    result.LastPage,
		},
	})
}

func (h *AssociateHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := associateID(r)
	if err != nil {
		common.RespondError(w, r, err)
		return
	}

	var req service.UpdateAssociateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, r, &common.RequestError{
			Status:  http.StatusBadRequest,
			Message: "Invalid request payload.",
		})
		return
	}

	associate, err := h.associateService.Update(r.Context(), id, req)
	if err != nil {
		common.RespondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, associate)
}

func (h *AssociateHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := associateID(r)
	if err != nil {
		common.RespondError(w, r, err)
		return
	}

	if err := h.associateService.Delete(r.Context(), id); err != nil {
		common.RespondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Associate deleted successfully",
	})
}

// associateID parses the {id} path parameter. A non-numeric id is a
// route miss, same as the original's integer route binding.
func associateID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, common.ErrNotFound
	}
	return id, nil
}
