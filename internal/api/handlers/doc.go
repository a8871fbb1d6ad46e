package handlers

// StatusOutput is the generic response for state-changing endpoints
// that return no resource body.
type StatusOutput struct {
	Body struct {
		Status string `json:"status" example:"ok" doc:"Operation status"`
	}
}

func statusOK() *StatusOutput {
	out := &StatusOutput{}
	out.Body.Status = "ok"
	return out
}

// StatusResponse is the body of the liveness and readiness endpoints.
type StatusResponse struct {
	Status  string `json:"status" example:"ready"`
	Sources int    `json:"sources,omitempty" example:"3"`
}
