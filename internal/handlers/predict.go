package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/aws/aws-lambda-go/events"

	"college-predictor/internal/models"
	"college-predictor/internal/utils"
)

// PredictHandler serves predictions behind API Gateway.
type PredictHandler struct {
	predictor Predictor
	defaults  QueryDefaults
}

// NewPredictHandler creates a new Lambda predict handler.
func NewPredictHandler(p Predictor, defaults QueryDefaults) *PredictHandler {
	return &PredictHandler{predictor: p, defaults: defaults}
}

// Handle accepts GET with query string parameters or POST with a JSON body.
func (h *PredictHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	q, err := h.parse(request)
	if err != nil {
		return proxyJSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()}), nil
	}

	result, err := h.predictor.Predict(ctx, q)
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			utils.GetLogger().Error("Prediction failed", utils.Error(err))
		}
		return proxyJSON(status, Response{Success: false, Error: err.Error()}), nil
	}

	return proxyJSON(http.StatusOK, Response{Success: true, Data: result}), nil
}

func (h *PredictHandler) parse(request events.APIGatewayProxyRequest) (models.Query, error) {
	if request.HTTPMethod == http.MethodPost {
		body := []byte(request.Body)
		if request.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(request.Body)
			if err != nil {
				return models.Query{}, err
			}
			body = decoded
		}

		var req PredictRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return models.Query{}, err
		}
		return req.ToQuery(h.defaults)
	}

	values := url.Values{}
	for k, vs := range request.MultiValueQueryStringParameters {
		values[k] = append(values[k], vs...)
	}
	for k, v := range request.QueryStringParameters {
		if _, ok := values[k]; !ok {
			values.Set(k, v)
		}
	}
	return ParseQuery(values, h.defaults)
}
