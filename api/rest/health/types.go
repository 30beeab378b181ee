package health

import "context"

type Response struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
}

type ReadyResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

// identity of the serving corpus as "<database>.<table>"
type StatusResponse struct {
	Result string `json:"result"`
}

type RecordCounter interface {
	CountRecords(ctx context.Context) (int, error)
}
