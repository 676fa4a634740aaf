// Package handler exposes company lookups over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"nsg/internal/registry/models"
	"nsg/internal/registry/normalize"
	"nsg/internal/registry/providers"
	"nsg/internal/registry/providers/norway"
	"nsg/internal/registry/schema"
	"nsg/pkg/platform/httputil"
	"nsg/pkg/platform/middleware/requestid"
	"nsg/pkg/requestcontext"
)

const (
	// EvidenceCodeBasicInformation names the company-basic-information dataset.
	EvidenceCodeBasicInformation = "NsgCompanyBasicInformation"

	requestIDNotSet = "NOT_SET"
	maxBodyBytes    = 1 << 20
)

// Dispatcher resolves lookups to jurisdiction adapters.
type Dispatcher interface {
	ByCountry(ctx context.Context, country, notation string) (*models.CompanyRecord, error)
	ByICD(ctx context.Context, identifier string) (*models.CompanyRecord, models.Jurisdiction, error)
}

// Handler wires the lookup endpoints to the dispatcher.
type Handler struct {
	dispatcher Dispatcher
	logger     *slog.Logger
}

// New constructs a lookup handler.
func New(dispatcher Dispatcher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{dispatcher: dispatcher, logger: logger}
}

// Register mounts the lookup endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/is-alive", h.HandleIsAlive)
	r.Post("/registered-organisations", h.HandleRegisteredOrganisations)
	r.Post("/company-basic-information", h.HandleCompanyBasicInformation)
	r.Get("/metadata", h.HandleMetadata)
	r.Get("/metadata/company-basic-information.schema.json", h.HandleSchema)
}

// HandleIsAlive answers 200 when a well-known Norwegian unit can be looked up.
func (h *Handler) HandleIsAlive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := h.dispatcher.ByCountry(ctx, models.JurisdictionNorway.String(), norway.LivenessOrganization); err != nil {
		h.logger.ErrorContext(ctx, "liveness lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleRegisteredOrganisations handles POST /registered-organisations. Error
// envelopes echo the caller's x-request-id, or NOT_SET when it was not sent.
func (h *Handler) HandleRegisteredOrganisations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := requestid.FromRequest(r, requestIDNotSet)
	start := time.Now()

	h.logger.InfoContext(ctx, "registered-organisations called", "request_id", callerID)

	var req RegisteredOrganisationsRequest
	if err := decode(w, r, &req); err != nil {
		httputil.WriteError(w, err, callerID, requestcontext.Now(ctx))
		return
	}
	if strings.TrimSpace(req.Notation) == "" {
		httputil.WriteError(w, providers.InvalidInput("notation", "Notation is required"), callerID, requestcontext.Now(ctx))
		return
	}

	rec, err := h.dispatcher.ByCountry(ctx, req.Country, req.Notation)
	if err != nil {
		h.logFailure(ctx, "registered organisation lookup failed", callerID, req.Country, err, start)
		httputil.WriteError(w, err, callerID, requestcontext.Now(ctx))
		return
	}

	h.logger.InfoContext(ctx, "registered organisation retrieved",
		"request_id", callerID,
		"country", req.Country,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// HandleCompanyBasicInformation handles POST /company-basic-information.
func (h *Handler) HandleCompanyBasicInformation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	var req CompanyBasicInformationRequest
	if err := decode(w, r, &req); err != nil {
		httputil.WriteError(w, err, requestID, requestcontext.Now(ctx))
		return
	}
	identifier := strings.TrimSpace(req.OrganizationNumber)

	rec, j, err := h.dispatcher.ByICD(ctx, identifier)
	if err != nil {
		h.logFailure(ctx, "company basic information lookup failed", requestID, string(j), err, start)
		httputil.WriteError(w, err, requestID, requestcontext.Now(ctx))
		return
	}

	doc := normalize.BasicInformation(identifier, j.String(), rec)
	if raw, err := json.Marshal(doc); err == nil {
		if verr := schema.ValidateBasicInformation(raw); verr != nil {
			h.logger.WarnContext(ctx, "basic information is incomplete",
				"request_id", requestID,
				"identifier", identifier,
				"error", verr,
			)
		}
	}

	h.logger.InfoContext(ctx, "company basic information retrieved",
		"request_id", requestID,
		"jurisdiction", j.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, doc)
}

// HandleMetadata lists the evidence codes this source serves.
func (h *Handler) HandleMetadata(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, []EvidenceCode{{
		EvidenceCodeName: EvidenceCodeBasicInformation,
		EvidenceSource:   "Nsg",
		ServiceContext:   "Nordic Smart Government",
		IsPublic:         true,
		Values: []EvidenceValue{{
			EvidenceValueName:    "default",
			ValueType:            "jsonSchema",
			JSONSchemaDefinition: schema.BasicInformation(),
		}},
	}})
}

// HandleSchema serves the company-basic-information JSON Schema.
func (h *Handler) HandleSchema(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(schema.BasicInformation())
}

func (h *Handler) logFailure(ctx context.Context, msg, requestID, jurisdiction string, err error, start time.Time) {
	level := slog.LevelWarn
	if c := providers.GetCategory(err); c == providers.CategoryServerError || c == providers.CategoryUpstreamPermanent {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestID,
		"jurisdiction", jurisdiction,
		"category", string(providers.GetCategory(err)),
		"error", err,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return providers.InvalidInput("body", "Request body is too large")
		}
		return providers.InvalidInput("body", "Request body must be a JSON object")
	}
	return nil
}
