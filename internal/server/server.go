// Package server exposes the balance engine and configuration editor over a
// JSON HTTP API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minesite-tools/water-balance/internal/balance"
	"github.com/minesite-tools/water-balance/internal/catalog"
	"github.com/minesite-tools/water-balance/internal/editor"
	"github.com/minesite-tools/water-balance/internal/flowconfig"
	"github.com/minesite-tools/water-balance/internal/measurements"
	"github.com/minesite-tools/water-balance/pkg/constants"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	catalog       *catalog.Catalog
	store         flowconfig.Store
	engine        *balance.Engine
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the balance and
// configuration API.
func NewHandler(logger *zap.Logger, cat *catalog.Catalog, store flowconfig.Store, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		catalog:       cat,
		store:         store,
		engine:        balance.NewEngine(logger, cat),
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
	}

	mux := http.NewServeMux()

	// Balance API endpoint (measurement file upload)
	mux.HandleFunc("/api/balance", h.handleBalance)

	// Balance API endpoint for editor-driven runs
	mux.HandleFunc("/api/editor/balance", h.handleEditorBalance)

	// Flow configuration listing and updates
	mux.HandleFunc("/api/flows", h.handleFlows)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type balanceResponse struct {
	Result   balance.Result `json:"result"`
	Error    string         `json:"errorPercent"`
	Duration string         `json:"duration"`
}

type flowStateResponse struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	NominalVolume float64 `json:"nominalVolume"`
	Enabled       bool    `json:"enabled"`
}

type categoryGroupResponse struct {
	Category string              `json:"category"`
	Flows    []flowStateResponse `json:"flows"`
}

type flowsResponse struct {
	Categories []categoryGroupResponse `json:"categories"`
}

type flowsUpdateRequest struct {
	Flows map[string]struct {
		Enabled bool `json:"enabled"`
	} `json:"flows"`
}

type editorBalanceRequest struct {
	Measurements []measurementPayload `json:"measurements"`
}

type measurementPayload struct {
	Code  string  `json:"code"`
	Value float64 `json:"value"`
}

func (h *handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize))
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing measurement file")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.handleBalance"),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read measurements: %v", err))
		return
	}

	measured, err := measurements.ParseCSV(&buf)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("error reading measurement data, %v", err))
		return
	}

	h.runBalance(w, measured, start, "server.handleBalance")
}

func (h *handler) handleEditorBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()

	var payload editorBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode measurements: %v", err))
		return
	}

	measured := make([]balance.MeasuredFlow, 0, len(payload.Measurements))
	for _, m := range payload.Measurements {
		if strings.TrimSpace(m.Code) == "" {
			h.respondError(w, http.StatusBadRequest, "measurement entry has no code")
			return
		}
		measured = append(measured, balance.MeasuredFlow{Code: m.Code, Value: m.Value})
	}

	h.runBalance(w, measured, start, "server.handleEditorBalance")
}

func (h *handler) runBalance(w http.ResponseWriter, measured []balance.MeasuredFlow, start time.Time, op string) {
	result := h.engine.Calculate(measured, h.store.Load())

	errorPercent := "N/A"
	if result.ErrorPercentDefined {
		errorPercent = fmt.Sprintf("%.2f", result.ErrorPercent)
	}

	h.logger.Debug("computed balance",
		zap.String("op", op),
		zap.Int("measurements", len(measured)),
		zap.Int("unknown", len(result.UnknownFlows)),
		zap.Int("excluded", len(result.ExcludedFlows)),
	)

	h.writeJSON(w, http.StatusOK, balanceResponse{
		Result:   result,
		Error:    errorPercent,
		Duration: time.Since(start).String(),
	})
}

func (h *handler) handleFlows(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listFlows(w)
	case http.MethodPost:
		h.updateFlows(w, r)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *handler) listFlows(w http.ResponseWriter) {
	ed := editor.New(h.catalog, h.store)

	resp := flowsResponse{}
	for _, group := range ed.ListByCategory() {
		groupResp := categoryGroupResponse{Category: group.Category.String()}
		for _, state := range group.Flows {
			groupResp.Flows = append(groupResp.Flows, flowStateResponse{
				Code:          state.Definition.Code,
				Name:          state.Definition.Name,
				NominalVolume: state.Definition.NominalVolume,
				Enabled:       state.Enabled,
			})
		}
		resp.Categories = append(resp.Categories, groupResp)
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) updateFlows(w http.ResponseWriter, r *http.Request) {
	var payload flowsUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode flow configuration: %v", err))
		return
	}

	ed := editor.New(h.catalog, h.store)
	for code, entry := range payload.Flows {
		if err := ed.SetEnabled(code, entry.Enabled); err != nil {
			if errors.Is(err, editor.ErrUnknownFlow) {
				h.respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			h.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if err := ed.Commit(); err != nil {
		h.logger.Error("failed to save flow configuration",
			zap.String("op", "server.updateFlows"),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save flow configuration: %v", err))
		return
	}

	h.listFlows(w)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
