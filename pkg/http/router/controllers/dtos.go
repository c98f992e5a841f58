package controllers

import "github.com/Arturo-Amberg/TrabajoTesis/pkg/http/usecases"

type travelTimeRequest struct {
	From   string `json:"from" validate:"required,max=64"`
	To     string `json:"to" validate:"required,max=64"`
	Region string `json:"region" validate:"max=16"`
}

type travelTimeResponse struct {
	Region  string  `json:"region"`
	From    string  `json:"from"`
	To      string  `json:"to"`
	Minutes float64 `json:"minutes"`
	Status  string  `json:"status"`
}

func NewTravelTimeResponse(tt usecases.TravelTime) travelTimeResponse {
	return travelTimeResponse{
		Region:  tt.Region,
		From:    tt.From,
		To:      tt.To,
		Minutes: tt.Minutes,
		Status:  tt.Status,
	}
}

type matrixResponse struct {
	Region string `json:"region"`
	Rows   int    `json:"rows"`
	Cols   int    `json:"cols"`
	HasIDs bool   `json:"has_ids"`
}

func NewMatricesResponse(infos []usecases.MatrixInfo) []matrixResponse {
	resp := make([]matrixResponse, 0, len(infos))
	for _, info := range infos {
		resp = append(resp, matrixResponse{
			Region: info.Region,
			Rows:   info.Rows,
			Cols:   info.Cols,
			HasIDs: info.HasIDs,
		})
	}
	return resp
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
