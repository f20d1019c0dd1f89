package api

import "time"

type (
	// AllOperatorsResponse returns the cached catalog and discovery errors
	AllOperatorsResponse struct {
		Operators Catalog          `json:"operators"`
		Errors    []DiscoveryError `json:"errors"`
	}

	// OperatorsStatusResponse summarizes operator availability
	OperatorsStatusResponse struct {
		Available   Catalog           `json:"available"`
		Unavailable map[string]string `json:"unavailable"`
		Summary     StatusSummary     `json:"summary"`
	}

	// StatusSummary contains the counts reported by the status endpoint
	StatusSummary struct {
		TotalAvailableModules   int `json:"total_available_modules"`
		TotalUnavailableModules int `json:"total_unavailable_modules"`
		TotalOperators          int `json:"total_operators"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		ScannedAt time.Time `json:"scanned_at,omitzero"`
		Service   string    `json:"service"`
		Version   string    `json:"version"`
		Status    string    `json:"status"`
	}

	// MessageResponse contains a simple message string
	MessageResponse struct {
		Message string `json:"message"`
	}

	// ErrorResponse contains error details for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
	}
)

// NewOperatorsStatusResponse builds the availability summary for a catalog
// and its discovery errors. A later error for the same module replaces an
// earlier one
func NewOperatorsStatusResponse(
	cat Catalog, errs []DiscoveryError,
) *OperatorsStatusResponse {
	unavailable := make(map[string]string, len(errs))
	for _, e := range errs {
		unavailable[e.Module] = e.Error
	}
	if cat == nil {
		cat = Catalog{}
	}
	return &OperatorsStatusResponse{
		Available:   cat,
		Unavailable: unavailable,
		Summary: StatusSummary{
			TotalAvailableModules:   len(cat),
			TotalUnavailableModules: len(unavailable),
			TotalOperators:          cat.OperatorCount(),
		},
	}
}
