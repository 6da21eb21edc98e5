package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/crmdash/backoffice-api/internal/model"
	"github.com/crmdash/backoffice-api/internal/repository"
)

// LeadHandler exposes lead record management. These endpoints are plain
// store-and-forward CRUD on top of the lead repository.
type LeadHandler struct {
	leadRepo  repository.LeadRepository
	validator *requestValidator
	logger    *zerolog.Logger
}

type CreateLeadRequest struct {
	FullName    string  `json:"fullName"    validate:"required"`
	Email       string  `json:"email"       validate:"required,email"`
	Status      string  `json:"status"      validate:"required"`
	PlanType    string  `json:"planType"    validate:"required"`
	NumberAsked int64   `json:"numberAsked" validate:"required"`
	TollFreeNo  int64   `json:"tollFreeNo"`
	LocalNo     int64   `json:"localNo"`
	CurrentNo   int64   `json:"currentNo"   validate:"required"`
	Price       float64 `json:"price"       validate:"required"`
	Address     string  `json:"address"     validate:"required"`
	State       string  `json:"state"       validate:"required"`
	City        string  `json:"city"        validate:"required"`
	ZipCode     string  `json:"zipCode"     validate:"required"`
	Temp        string  `json:"temp"`
	NoOfUsers   int64   `json:"noOfUsers"   validate:"required"`
}

type UpdateLeadRequest struct {
	FullName  *string  `json:"fullName"`
	Email     *string  `json:"email"     validate:"omitempty,email"`
	Status    *string  `json:"status"`
	PlanType  *string  `json:"planType"`
	Price     *float64 `json:"price"`
	CurrentNo *int64   `json:"currentNo"`
	NoOfUsers *int64   `json:"noOfUsers"`
}

type LeadResponse struct {
	ID          string    `json:"id"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	Status      string    `json:"status"`
	PlanType    string    `json:"planType"`
	NumberAsked int64     `json:"numberAsked"`
	TollFreeNo  int64     `json:"tollFreeNo,omitempty"`
	LocalNo     int64     `json:"localNo,omitempty"`
	CurrentNo   int64     `json:"currentNo"`
	Price       float64   `json:"price"`
	Address     string    `json:"address"`
	State       string    `json:"state"`
	City        string    `json:"city"`
	ZipCode     string    `json:"zipCode"`
	Temp        string    `json:"temp,omitempty"`
	NoOfUsers   int64     `json:"noOfUsers"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewLeadHandler(leadRepo repository.LeadRepository, logger *zerolog.Logger) *LeadHandler {
	return &LeadHandler{
		leadRepo:  leadRepo,
		validator: newRequestValidator(),
		logger:    logger,
	}
}

// RegisterRoutes mounts the lead endpoints on the given router.
func (h *LeadHandler) RegisterRoutes(r chi.Router) {
	r.Route("/leads", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	params := repository.FilterLeadsParams{}

	query := r.URL.Query()
	if v := query.Get("limit"); v != "" {
		if limit, err := strconv.ParseUint(v, 10, 64); err == nil {
			params.Limit = limit
		}
	}
	if v := query.Get("offset"); v != "" {
		if offset, err := strconv.ParseUint(v, 10, 64); err == nil {
			params.Offset = offset
		}
	}
	if v := query.Get("sort_by"); v != "" {
		params.SortBy = &v
	}
	params.SortDesc = query.Get("sort_desc") == "true"
	if v := query.Get("status"); v != "" {
		params.Status = &v
	}
	if v := query.Get("email"); v != "" {
		params.Email = &v
	}

	leads, err := h.leadRepo.ListLeads(r.Context(), params)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list leads")
		respondInternalError(w)
		return
	}

	responses := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		responses = append(responses, newLeadResponse(lead))
	}

	respondJSON(w, http.StatusOK, responses)
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := h.validator.check(req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	lead, err := h.leadRepo.CreateLead(r.Context(), &model.Lead{
		FullName:    req.FullName,
		Email:       req.Email,
		Status:      req.Status,
		PlanType:    req.PlanType,
		NumberAsked: req.NumberAsked,
		TollFreeNo:  req.TollFreeNo,
		LocalNo:     req.LocalNo,
		CurrentNo:   req.CurrentNo,
		Price:       req.Price,
		Address:     req.Address,
		State:       req.State,
		City:        req.City,
		ZipCode:     req.ZipCode,
		Temp:        req.Temp,
		NoOfUsers:   req.NoOfUsers,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create lead")
		respondInternalError(w)
		return
	}

	respondJSON(w, http.StatusCreated, newLeadResponse(lead))
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		respondError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	lead, err := h.leadRepo.GetLead(r.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(w, http.StatusNotFound, "lead not found")
			return
		}

		h.logger.Error().Err(err).Str("id", id).Msg("failed to get lead")
		respondInternalError(w)
		return
	}

	respondJSON(w, http.StatusOK, newLeadResponse(lead))
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		respondError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	var req UpdateLeadRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := h.validator.check(req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	lead, err := h.leadRepo.UpdateLead(r.Context(), id, repository.UpdateLeadParams{
		FullName:  req.FullName,
		Email:     req.Email,
		Status:    req.Status,
		PlanType:  req.PlanType,
		Price:     req.Price,
		CurrentNo: req.CurrentNo,
		NoOfUsers: req.NoOfUsers,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(w, http.StatusNotFound, "lead not found")
			return
		}

		h.logger.Error().Err(err).Str("id", id).Msg("failed to update lead")
		respondInternalError(w)
		return
	}

	respondJSON(w, http.StatusOK, newLeadResponse(lead))
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		respondError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	if _, err := h.leadRepo.DeleteLead(r.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(w, http.StatusNotFound, "lead not found")
			return
		}

		h.logger.Error().Err(err).Str("id", id).Msg("failed to delete lead")
		respondInternalError(w)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{
		Message: "lead deleted successfully",
		Success: true,
	})
}

func newLeadResponse(lead *model.Lead) LeadResponse {
	return LeadResponse{
		ID:          lead.ID.Hex(),
		FullName:    lead.FullName,
		Email:       lead.Email,
		Status:      lead.Status,
		PlanType:    lead.PlanType,
		NumberAsked: lead.NumberAsked,
		TollFreeNo:  lead.TollFreeNo,
		LocalNo:     lead.LocalNo,
		CurrentNo:   lead.CurrentNo,
		Price:       lead.Price,
		Address:     lead.Address,
		State:       lead.State,
		City:        lead.City,
		ZipCode:     lead.ZipCode,
		Temp:        lead.Temp,
		NoOfUsers:   lead.NoOfUsers,
		CreatedAt:   lead.CreatedAt,
	}
}
