package servicerequests

type createRequest struct {
	CustomerName string      `json:"customerName"`
	Email        string      `json:"email"`
	Company      string      `json:"company"`
	ProjectName  string      `json:"projectName"`
	Notes        string      `json:"notes"`
	Items        []ItemInput `json:"items"`
}

type statusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type provisionRequest struct {
	DomainName  string `json:"domainName"`
	Region      string `json:"region"`
	RetryFailed bool   `json:"retryFailed"`
}

type resultsRequest struct {
	Results []ResultInput `json:"results"`
}

type requestResponse struct {
	OK      bool           `json:"ok"`
	Request ServiceRequest `json:"request"`
}

type listResponse struct {
	OK       bool             `json:"ok"`
	Requests []ServiceRequest `json:"requests"`
}

type provisionResponse struct {
	OK      bool           `json:"ok"`
	Request ServiceRequest `json:"request"`
	Job     jobResponse    `json:"job"`
}

type jobResponse struct {
	DomainName  string `json:"domainName"`
	Region      string `json:"region"`
	RetryFailed bool   `json:"retryFailed"`
	ItemIndexes []int  `json:"itemIndexes"`
	EnqueuedAt  string `json:"enqueuedAt"`
}

type resultsResponse struct {
	OK      bool           `json:"ok"`
	Request ServiceRequest `json:"request"`
	Summary BatchSummary   `json:"summary"`
}
