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

// CustomerHandler exposes customer record management.
type CustomerHandler struct {
	customerRepo repository.CustomerRepository
	validator    *requestValidator
	logger       *zerolog.Logger
}

type CreateCustomerRequest struct {
	FullName    string  `json:"fullName"    validate:"required"`
	Email       string  `json:"email"       validate:"required,email"`
	Status      string  `json:"status"      validate:"required"`
	PlanType    string  `json:"planType"    validate:"required"`
	NumberType  string  `json:"numberType"  validate:"required"`
	NumberAsked int64   `json:"numberAsked"`
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

type UpdateCustomerRequest struct {
	FullName   *string  `json:"fullName"`
	Email      *string  `json:"email"      validate:"omitempty,email"`
	Status     *string  `json:"status"`
	PlanType   *string  `json:"planType"`
	NumberType *string  `json:"numberType"`
	Price      *float64 `json:"price"`
	CurrentNo  *int64   `json:"currentNo"`
	NoOfUsers  *int64   `json:"noOfUsers"`
}

type CustomerResponse struct {
	ID          string    `json:"id"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	Status      string    `json:"status"`
	PlanType    string    `json:"planType"`
	NumberType  string    `json:"numberType"`
	NumberAsked int64     `json:"numberAsked,omitempty"`
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

func NewCustomerHandler(customerRepo repository.CustomerRepository, logger *zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerRepo: customerRepo,
		validator:    newRequestValidator(),
		logger:       logger,
	}
}

// RegisterRoutes mounts the customer endpoints on the given router.
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	params := repository.FilterCustomersParams{}

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
	if v := query.Get("plan_type"); v != "" {
		params.PlanType = &v
	}

	customers, err := h.customerRepo.ListCustomers(r.Context(), params)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list customers")
		respondInternalError(w)
		return
	}

	responses := make([]CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		responses = append(responses, newCustomerResponse(customer))
	}

	respondJSON(w, http.StatusOK, responses)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := h.validator.check(req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	customer, err := h.customerRepo.CreateCustomer(r.Context(), &model.Customer{
		FullName:    req.FullName,
		Email:       req.Email,
		Status:      req.Status,
		PlanType:    req.PlanType,
		NumberType:  req.NumberType,
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
		h.logger.Error().Err(err).Msg("failed to create customer")
		respondInternalError(w)
		return
	}

	respondJSON(w, http.StatusCreated, newCustomerResponse(customer))
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	customer, err := h.customerRepo.GetCustomer(r.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(w, http.StatusNotFound, "customer not found")
			return
		}

		h.logger.Error().Err(err).Str("id", id).Msg("failed to get customer")
		respondInternalError(w)
		return
	}

	respondJSON(w, http.StatusOK, newCustomerResponse(customer))
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var req UpdateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := h.validator.check(req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	customer, err := h.customerRepo.UpdateCustomer(r.Context(), id, repository.UpdateCustomerParams{
		FullName:   req.FullName,
		Email:      req.Email,
		Status:     req.Status,
		PlanType:   req.PlanType,
		NumberType: req.NumberType,
		Price:      req.Price,
		CurrentNo:  req.CurrentNo,
		NoOfUsers:  req.NoOfUsers,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(w, http.StatusNotFound, "customer not found")
			return
		}

		h.logger.Error().Err(err).Str("id", id).Msg("failed to update customer")
		respondInternalError(w)
		return
	}

	respondJSON(w, http.StatusOK, newCustomerResponse(customer))
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	if _, err := h.customerRepo.DeleteCustomer(r.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(w, http.StatusNotFound, "customer not found")
			return
		}

		h.logger.Error().Err(err).Str("id", id).Msg("failed to delete customer")
		respondInternalError(w)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{
		Message: "customer deleted successfully",
		Success: true,
	})
}

func newCustomerResponse(customer *model.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          customer.ID.Hex(),
		FullName:    customer.FullName,
		Email:       customer.Email,
		Status:      customer.Status,
		PlanType:    customer.PlanType,
		NumberType:  customer.NumberType,
		NumberAsked: customer.NumberAsked,
		TollFreeNo:  customer.TollFreeNo,
		LocalNo:     customer.LocalNo,
		CurrentNo:   customer.CurrentNo,
		Price:       customer.Price,
		Address:     customer.Address,
		State:       customer.State,
		City:        customer.City,
		ZipCode:     customer.ZipCode,
		Temp:        customer.Temp,
		NoOfUsers:   customer.NoOfUsers,
		CreatedAt:   customer.CreatedAt,
	}
}
