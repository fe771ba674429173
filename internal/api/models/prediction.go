package models

// PredictResponse is the body of a successful POST /api/predict.
type PredictResponse struct {
	Status string `json:"status"`
}

// AirportsResponse lists the codes the model was fitted on.
type AirportsResponse struct {
	Origins      []string `json:"origins"`
	Destinations []string `json:"destinations"`
}
