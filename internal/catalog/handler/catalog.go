package handler

import (
	"encoding/json"
	"net/http"

	"lessondesk/internal/catalog/service"
	apperrors "lessondesk/pkg/errors"
	httputil "lessondesk/pkg/http"
	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// CatalogHandler exposes the administrator CRUD surface.
type CatalogHandler struct {
	service service.Service
	log     *logger.Logger
}

func NewCatalogHandler(svc service.Service, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{service: svc, log: log}
}

func (h *CatalogHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/time-slots", h.createTimeSlot)
	router.GET("/api/v1/time-slots", h.listTimeSlots)
	router.GET("/api/v1/time-slots/:id", h.getTimeSlot)
	router.PATCH("/api/v1/time-slots/:id", h.updateTimeSlot)
	router.DELETE("/api/v1/time-slots/:id", h.deleteTimeSlot)

	router.POST("/api/v1/teachers", h.createTeacher)
	router.GET("/api/v1/teachers", h.listTeachers)
	router.GET("/api/v1/teachers/:id", h.getTeacher)
	router.PATCH("/api/v1/teachers/:id", h.updateTeacher)
	router.DELETE("/api/v1/teachers/:id", h.deleteTeacher)

	router.POST("/api/v1/holidays", h.createHoliday)
	router.GET("/api/v1/holidays", h.listHolidays)
	router.DELETE("/api/v1/holidays/:id", h.deleteHoliday)

	router.POST("/api/v1/price-tiers", h.createPriceTier)
	router.GET("/api/v1/price-tiers", h.listPriceTiers)
	router.DELETE("/api/v1/price-tiers/:id", h.deletePriceTier)
}

func (h *CatalogHandler) createTimeSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var def model.TimeSlotDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		h.writeError(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	id, err := h.service.CreateTimeSlot(r.Context(), &def)
	if err != nil {
		h.writeError(w, err)
		return
	}
	def.ID = id
	h.write(httputil.WriteCreated(w, def))
}

func (h *CatalogHandler) listTimeSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	defs, total, err := h.service.ListTimeSlots(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.write(httputil.WritePaginated(w, defs, total, limit, offset))
}

func (h *CatalogHandler) getTimeSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	def, err := h.service.GetTimeSlot(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.write(httputil.WriteSuccess(w, def))
}

func (h *CatalogHandler) updateTimeSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.TimeSlotDefinitionUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	if err := h.service.UpdateTimeSlot(r.Context(), ps.ByName("id"), &update); err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *CatalogHandler) deleteTimeSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteTimeSlot(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *CatalogHandler) createTeacher(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var teacher model.Teacher
	if err := json.NewDecoder(r.Body).Decode(&teacher); err != nil {
		h.writeError(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	id, err := h.service.CreateTeacher(r.Context(), &teacher)
	if err != nil {
		h.writeError(w, err)
		return
	}
	teacher.ID = id
	h.write(httputil.WriteCreated(w, teacher))
}

func (h *CatalogHandler) listTeachers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	teachers, total, err := h.service.ListTeachers(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.write(httputil.WritePaginated(w, teachers, total, limit, offset))
}

func (h *CatalogHandler) getTeacher(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	teacher, err := h.service.GetTeacher(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.write(httputil.WriteSuccess(w, teacher))
}

func (h *CatalogHandler) updateTeacher(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.TeacherUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	if err := h.service.UpdateTeacher(r.Context(), ps.ByName("id"), &update); err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *CatalogHandler) deleteTeacher(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteTeacher(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *CatalogHandler) createHoliday(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var mark model.HolidayMark
	if err := json.NewDecoder(r.Body).Decode(&mark); err != nil {
		h.writeError(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	id, err := h.service.CreateHoliday(r.Context(), &mark)
	if err != nil {
		h.writeError(w, err)
		return
	}
	mark.ID = id
	h.write(httputil.WriteCreated(w, mark))
}

func (h *CatalogHandler) listHolidays(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	marks, err := h.service.ListHolidays(r.Context(), query.Get("from"), query.Get("to"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.write(httputil.WriteSuccess(w, marks))
}

func (h *CatalogHandler) deleteHoliday(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteHoliday(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *CatalogHandler) createPriceTier(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var tier model.PriceTier
	if err := json.NewDecoder(r.Body).Decode(&tier); err != nil {
		h.writeError(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	id, err := h.service.CreatePriceTier(r.Context(), &tier)
	if err != nil {
		h.writeError(w, err)
		return
	}
	tier.ID = id
	h.write(httputil.WriteCreated(w, tier))
}

func (h *CatalogHandler) listPriceTiers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tiers, err := h.service.ListPriceTiers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.write(httputil.WriteSuccess(w, tiers))
}

func (h *CatalogHandler) deletePriceTier(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeletePriceTier(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, err error) {
	h.write(httputil.WriteError(w, err))
}

func (h *CatalogHandler) write(err error) {
	if err != nil {
		h.log.Error("failed to write response", "error", err)
	}
}
