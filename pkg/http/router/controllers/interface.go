package controllers

import "github.com/Arturo-Amberg/TrabajoTesis/pkg/http/usecases"

type MatrixService interface {
	TravelTime(region, from, to string) (usecases.TravelTime, error)
	Matrices() []usecases.MatrixInfo
}
