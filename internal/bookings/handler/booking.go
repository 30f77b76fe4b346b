package handler

import (
	"encoding/json"
	"net/http"

	"lessondesk/internal/bookings/service"
	apperrors "lessondesk/pkg/errors"
	httputil "lessondesk/pkg/http"
	"lessondesk/pkg/kafka"
	"lessondesk/pkg/logger"
	"lessondesk/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// BookingHandler exposes availability, expansion and the booking
// lifecycle over HTTP. The payment webhook funnels into the same commit
// path the operator uses.
type BookingHandler struct {
	service service.Service
	log     *logger.Logger
}

func NewBookingHandler(svc service.Service, log *logger.Logger) *BookingHandler {
	return &BookingHandler{service: svc, log: log}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability", h.availability)
	router.POST("/api/v1/bookings/expand", h.expand)
	router.POST("/api/v1/bookings", h.commit)
	router.GET("/api/v1/bookings", h.list)
	router.GET("/api/v1/bookings/:id", h.getByID)
	router.DELETE("/api/v1/bookings/:id", h.cancel)
	router.POST("/api/v1/payments/webhook", h.paymentWebhook)
}

func (h *BookingHandler) availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	view, err := h.service.Availability(r.Context(), query.Get("from"), query.Get("to"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.write(httputil.WriteSuccess(w, view))
}

func (h *BookingHandler) expand(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.ExpandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	result, err := h.service.Expand(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.write(httputil.WriteSuccess(w, result))
}

func (h *BookingHandler) commit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	booking, err := h.service.Commit(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.write(httputil.WriteCreated(w, booking))
}

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	bookings, total, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.write(httputil.WritePaginated(w, bookings, total, limit, offset))
}

func (h *BookingHandler) getByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	detail, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.write(httputil.WriteSuccess(w, detail))
}

func (h *BookingHandler) cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Cancel(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// paymentWebhook accepts the gateway's payment-completed payload and
// commits the booking it describes. Signature verification happens in
// middleware before the request reaches this handler.
func (h *BookingHandler) paymentWebhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var event kafka.PaymentCompletedEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.writeError(w, apperrors.InvalidInput("invalid webhook payload"))
		return
	}

	req := CommitRequestFromPayment(&event)
	booking, err := h.service.Commit(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.log.Info("payment webhook committed booking",
		"booking_id", booking.ID, "reference", event.Reference)
	h.write(httputil.WriteCreated(w, booking))
}

// CommitRequestFromPayment maps a gateway event onto the coordinator
// input. The paid amount doubles as the expected-total guard.
func CommitRequestFromPayment(event *kafka.PaymentCompletedEvent) *model.CommitRequest {
	occurrences := make([]model.BookingOccurrence, 0, len(event.Occurrences))
	for _, occ := range event.Occurrences {
		occurrences = append(occurrences, model.BookingOccurrence{
			Date:      occ.Date,
			TimeSlot:  occ.TimeSlot,
			TeacherID: occ.TeacherID,
			Notes:     occ.Notes,
		})
	}
	return &model.CommitRequest{
		StudentName:    event.StudentName,
		Email:          event.Email,
		Phone:          event.Phone,
		Notes:          event.Notes,
		Occurrences:    occurrences,
		ExpectedTotal:  event.AmountPaid,
		IdempotencyKey: event.IdempotencyKey,
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, err error) {
	h.write(httputil.WriteError(w, err))
}

func (h *BookingHandler) write(err error) {
	if err != nil {
		h.log.Error("failed to write response", "error", err)
	}
}
