package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/eugenenazirov/stowage-planner/internal/catalog"
	"github.com/eugenenazirov/stowage-planner/internal/report"
	"github.com/eugenenazirov/stowage-planner/internal/stowage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires the stowage planner and the catalog store into HTTP
// handlers. Planners are constructed per request from the current
// packaging table, so PUT updates take effect immediately.
type Handler struct {
	store catalog.Store

	clock func() time.Time

	mu                 sync.RWMutex
	catalogUpdatedAt   time.Time
	packagingUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store catalog.Store, opts ...HandlerOption) *Handler {
	h := &Handler{
		store: store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	now := h.clock()
	h.catalogUpdatedAt = now
	h.packagingUpdatedAt = now
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	_ = r
	types, err := h.store.Catalog()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := catalogResponse{
		Containers: toContainerDTOs(types),
		UpdatedAt:  h.updatedAt(&h.catalogUpdatedAt),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutCatalog(w http.ResponseWriter, r *http.Request) {
	var req catalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Containers) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid catalog", "containers must contain at least one type")
		return
	}

	if err := h.store.SetCatalog(fromContainerDTOs(req.Containers)); err != nil {
		var validation *stowage.ValidationError
		if errors.Is(err, catalog.ErrInvalidCatalog) || errors.As(err, &validation) {
			writeError(w, http.StatusBadRequest, "Invalid catalog", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markUpdated(&h.catalogUpdatedAt)

	types, err := h.store.Catalog()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := catalogResponse{
		Containers: toContainerDTOs(types),
		UpdatedAt:  h.updatedAt(&h.catalogUpdatedAt),
		Message:    "Container catalog updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetPackagingCodes(w http.ResponseWriter, r *http.Request) {
	_ = r
	table, err := h.store.PackagingTable()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := packagingResponse{
		Synonyms:  table,
		UpdatedAt: h.updatedAt(&h.packagingUpdatedAt),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutPackagingCodes(w http.ResponseWriter, r *http.Request) {
	var req packagingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Synonyms) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid packaging table", "synonyms must contain at least one entry")
		return
	}

	if err := h.store.SetPackagingTable(req.Synonyms); err != nil {
		if errors.Is(err, catalog.ErrInvalidPackagingTable) {
			writeError(w, http.StatusBadRequest, "Invalid packaging table", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markUpdated(&h.packagingUpdatedAt)

	table, err := h.store.PackagingTable()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := packagingResponse{
		Synonyms:  table,
		UpdatedAt: h.updatedAt(&h.packagingUpdatedAt),
		Message:   "Packaging table updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	items, ok := h.decodePlanRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result, types, err := h.runPlan(items)
	elapsed := time.Since(start)

	if err != nil {
		writePlanError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, buildPlanResponse(items, result, types, elapsed))
}

func (h *Handler) handlePlanExport(w http.ResponseWriter, r *http.Request) {
	items, ok := h.decodePlanRequest(w, r)
	if !ok {
		return
	}

	result, _, err := h.runPlan(items)
	if err != nil {
		writePlanError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="stowage-plan.csv"`)
	if err := report.WriteCSV(w, report.BuildRows(result)); err != nil {
		writeInternalError(w, err)
	}
}

func (h *Handler) decodePlanRequest(w http.ResponseWriter, r *http.Request) ([]stowage.CargoItem, bool) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return nil, false
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid request", "items must contain at least one cargo record")
		return nil, false
	}

	items := make([]stowage.CargoItem, len(req.Items))
	for i, item := range req.Items {
		rotate := true
		if item.RotateAllowed != nil {
			rotate = *item.RotateAllowed
		}
		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}
		items[i] = stowage.CargoItem{
			ID:            item.ID,
			Description:   item.Description,
			Length:        item.LengthCM,
			Width:         item.WidthCM,
			Height:        item.HeightCM,
			Weight:        item.WeightKG,
			Quantity:      quantity,
			Packaging:     item.Packaging,
			RotateAllowed: rotate,
		}
	}
	return items, true
}

// runPlan snapshots the store and executes one plan call against it.
func (h *Handler) runPlan(items []stowage.CargoItem) (*stowage.PlanningResult, []stowage.ContainerType, error) {
	table, err := h.store.PackagingTable()
	if err != nil {
		return nil, nil, err
	}
	types, err := h.store.Catalog()
	if err != nil {
		return nil, nil, err
	}

	planner := stowage.NewPlanner(stowage.NewMapper(table))
	result, err := planner.Plan(items, types)
	if err != nil {
		return nil, nil, err
	}
	return result, types, nil
}

func writePlanError(w http.ResponseWriter, err error) {
	var validation *stowage.ValidationError
	var configuration *stowage.ConfigurationError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, "Invalid cargo record", err.Error())
	case errors.As(err, &configuration):
		suggestion := "Add a standard-category container type to the catalog"
		writeError(w, http.StatusInternalServerError, "Catalog misconfigured", err.Error(), suggestion)
	default:
		writeInternalError(w, err)
	}
}

func buildPlanResponse(items []stowage.CargoItem, result *stowage.PlanningResult, types []stowage.ContainerType, elapsed time.Duration) planResponse {
	oogByItem := make(map[string]stowage.OOGResult, len(result.OOG))
	for _, oog := range result.OOG {
		oogByItem[oog.ItemID] = oog
	}

	containers := make([]containerInstanceResponse, len(result.Containers))
	for i, instance := range result.Containers {
		unitIDs := make([]string, len(instance.Units))
		maxOverW, maxOverH := 0.0, 0.0
		for j, unit := range instance.Units {
			unitIDs[j] = unit.UnitID
			if oog := oogByItem[unit.ItemID]; oog.Flagged() {
				maxOverW = max(maxOverW, oog.OverWidth)
				maxOverH = max(maxOverH, oog.OverHeight)
			}
		}
		gross := stowage.GrossWeight(instance)
		containers[i] = containerInstanceResponse{
			Label:             instance.Label(),
			Type:              instance.Type.Name,
			Index:             instance.Index,
			Units:             unitIDs,
			ConsumedVolumeM3:  instance.ConsumedVolume(),
			ConsumedWeightKG:  instance.ConsumedWeight(),
			VolumeUtilization: instance.VolumeUtilization(),
			WeightUtilization: instance.WeightUtilization(),
			GrossWeightKG:     gross,
			TruckingNote:      stowage.TruckingNote(gross, maxOverW, maxOverH),
		}
	}

	infeasible := make([]string, len(result.Infeasible))
	for i, unit := range result.Infeasible {
		infeasible[i] = unit.UnitID
	}

	oog := make([]oogResponse, 0, len(result.OOG))
	for _, entry := range result.OOG {
		if !entry.Flagged() {
			continue
		}
		oog = append(oog, oogResponse{
			ItemID:       entry.ItemID,
			OverLengthCM: entry.OverLength,
			OverWidthCM:  entry.OverWidth,
			OverHeightCM: entry.OverHeight,
			Override:     string(entry.Override),
			Orientation:  entry.Orientation.Key,
		})
	}

	return planResponse{
		Containers:        containers,
		Infeasible:        infeasible,
		OOG:               oog,
		SpecialNeeds:      stowage.SummarizeSpecialNeeds(items, result.OOG, types),
		VolumeUtilization: result.VolumeUtilization,
		WeightUtilization: result.WeightUtilization,
		CalculationTimeMs: elapsed.Milliseconds(),
	}
}

func (h *Handler) updatedAt(field *time.Time) time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return *field
}

func (h *Handler) markUpdated(field *time.Time) {
	h.mu.Lock()
	*field = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func toContainerDTOs(types []stowage.ContainerType) []containerTypeDTO {
	out := make([]containerTypeDTO, len(types))
	for i, t := range types {
		out[i] = containerTypeDTO{
			Name:           t.Name,
			Category:       string(t.Category),
			InnerLengthCM:  t.InnerLength,
			InnerWidthCM:   t.InnerWidth,
			InnerHeightCM:  t.InnerHeight,
			MaxPayloadKG:   t.MaxPayload,
			TareWeightKG:   t.TareWeight,
			Cost:           t.Cost,
			PackagingCodes: t.PackagingCodes,
		}
	}
	return out
}

func fromContainerDTOs(dtos []containerTypeDTO) []stowage.ContainerType {
	out := make([]stowage.ContainerType, len(dtos))
	for i, dto := range dtos {
		out[i] = stowage.ContainerType{
			Name:           dto.Name,
			Category:       stowage.Category(dto.Category),
			InnerLength:    dto.InnerLengthCM,
			InnerWidth:     dto.InnerWidthCM,
			InnerHeight:    dto.InnerHeightCM,
			MaxPayload:     dto.MaxPayloadKG,
			TareWeight:     dto.TareWeightKG,
			Cost:           dto.Cost,
			PackagingCodes: dto.PackagingCodes,
		}
	}
	return out
}

type cargoItemDTO struct {
	ID            string  `json:"id"`
	Description   string  `json:"description"`
	LengthCM      float64 `json:"lengthCm"`
	WidthCM       float64 `json:"widthCm"`
	HeightCM      float64 `json:"heightCm"`
	WeightKG      float64 `json:"weightKg"`
	Quantity      int     `json:"quantity"`
	Packaging     string  `json:"packaging"`
	RotateAllowed *bool   `json:"rotateAllowed"`
}

type containerTypeDTO struct {
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	InnerLengthCM  float64  `json:"innerLengthCm"`
	InnerWidthCM   float64  `json:"innerWidthCm"`
	InnerHeightCM  float64  `json:"innerHeightCm"`
	MaxPayloadKG   float64  `json:"maxPayloadKg"`
	TareWeightKG   float64  `json:"tareWeightKg"`
	Cost           float64  `json:"cost"`
	PackagingCodes []string `json:"packagingCodes,omitempty"`
}

type planRequest struct {
	Items []cargoItemDTO `json:"items"`
}

type catalogRequest struct {
	Containers []containerTypeDTO `json:"containers"`
}

type catalogResponse struct {
	Containers []containerTypeDTO `json:"containers"`
	UpdatedAt  time.Time          `json:"updatedAt"`
	Message    string             `json:"message,omitempty"`
}

type packagingRequest struct {
	Synonyms map[string]string `json:"synonyms"`
}

type packagingResponse struct {
	Synonyms  map[string]string `json:"synonyms"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Message   string            `json:"message,omitempty"`
}

type containerInstanceResponse struct {
	Label             string   `json:"label"`
	Type              string   `json:"type"`
	Index             int      `json:"index"`
	Units             []string `json:"units"`
	ConsumedVolumeM3  float64  `json:"consumedVolumeM3"`
	ConsumedWeightKG  float64  `json:"consumedWeightKg"`
	VolumeUtilization float64  `json:"volumeUtilization"`
	WeightUtilization float64  `json:"weightUtilization"`
	GrossWeightKG     float64  `json:"grossWeightKg"`
	TruckingNote      string   `json:"truckingNote"`
}

type oogResponse struct {
	ItemID       string  `json:"itemId"`
	OverLengthCM float64 `json:"overLengthCm"`
	OverWidthCM  float64 `json:"overWidthCm"`
	OverHeightCM float64 `json:"overHeightCm"`
	Override     string  `json:"override"`
	Orientation  string  `json:"orientation"`
}

type planResponse struct {
	Containers        []containerInstanceResponse `json:"containers"`
	Infeasible        []string                    `json:"infeasible"`
	OOG               []oogResponse               `json:"oog"`
	SpecialNeeds      map[string]int              `json:"specialNeeds"`
	VolumeUtilization float64                     `json:"volumeUtilization"`
	WeightUtilization float64                     `json:"weightUtilization"`
	CalculationTimeMs int64                       `json:"calculationTimeMs"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
