package types

// Event is a typed record emitted when reserve state changes. Attributes
// carry string-encoded payload fields for downstream consumers such as
// indexers and metrics collectors.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
