package dto

// AnonymizeResponse carries the anonymized replacement for one cell.
type AnonymizeResponse struct {
	Column     string `json:"column"`
	Anonymized string `json:"anonymized"`
}

// DeanonymizeResponse carries the original value resolved from the vault.
type DeanonymizeResponse struct {
	Column   string `json:"column"`
	Original string `json:"original"`
}
