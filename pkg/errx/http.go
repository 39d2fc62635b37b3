package errx

import (
	"github.com/gofiber/fiber/v2"
)

// HTTPErrorResponse is the body written for every failed request
type HTTPErrorResponse struct {
	Error     string         `json:"error"`
	Code      string         `json:"code"`
	Type      string         `json:"type"`
	Status    int            `json:"status"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// ToHTTPResponse converts an Error to an HTTPErrorResponse
func (e *Error) ToHTTPResponse() HTTPErrorResponse {
	resp := HTTPErrorResponse{
		Error:  e.Message,
		Code:   e.Code,
		Type:   string(e.Type),
		Status: e.HTTPStatus,
	}
	if len(e.Details) > 0 {
		resp.Details = e.Details
	}
	return resp
}

// Respond writes err as a JSON error body with its status code.
func Respond(c *fiber.Ctx, err error) error {
	e := From(err)
	body := e.ToHTTPResponse()
	body.RequestID = c.Get(fiber.HeaderXRequestID)
	return c.Status(e.HTTPStatus).JSON(body)
}
