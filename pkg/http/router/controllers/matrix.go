package controllers

import (
	"fmt"
	"net/http"

	helper "github.com/Arturo-Amberg/TrabajoTesis/pkg/http/router/routerhelper"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type matrixAPI struct {
	matrixService MatrixService
	log           *zap.Logger

	validate *validator.Validate
	trans    ut.Translator
}

func New(matrixService MatrixService, log *zap.Logger) *matrixAPI {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	return &matrixAPI{
		matrixService: matrixService,
		log:           log,
		validate:      validate,
		trans:         trans,
	}
}

func (api *matrixAPI) Routes(group *helper.RouteGroup) {
	group.GET("/travelTime", api.travelTime)
	group.GET("/matrices", api.matrices)
}

func (api *matrixAPI) travelTime(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	query := r.URL.Query()
	request := travelTimeRequest{
		From:   query.Get("from"),
		To:     query.Get("to"),
		Region: query.Get("region"),
	}

	if err := api.validate.Struct(request); err != nil {
		vv := translateError(err, api.trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return
	}

	tt, err := api.matrixService.TravelTime(request.Region, request.From, request.To)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewTravelTimeResponse(tt)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *matrixAPI) matrices(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewMatricesResponse(api.matrixService.Matrices())}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
