package domain

// ============================================================
// Dev Tools: only served when DEV_AUTH=true
// ============================================================

type DevAddBalanceRequest struct {
	UserID string  `json:"userId"`
	Amount float64 `json:"amount"`
}

type DevAddBalanceResponse struct {
	UserID     string  `json:"userId"`
	NewBalance float64 `json:"newBalance"`
	Added      float64 `json:"added"`
	Message    string  `json:"message"`
}

type DevGenerateJobsRequest struct {
	CustomerID    string `json:"customerId"`
	ElectricianID string `json:"electricianId"`
	Count         int    `json:"count"`
}

type DevGenerateJobsResponse struct {
	Generated int      `json:"generated"`
	JobIDs    []string `json:"jobIds"`
	Message   string   `json:"message"`
}
