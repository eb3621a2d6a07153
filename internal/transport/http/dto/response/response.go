package response

type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

func SuccessResponse(data interface{}) Response {
	return Response{
		Status: "success",
		Data:   data,
	}
}

// WithDetails returns a copy of e carrying details.
func (e ErrorResponse) WithDetails(details string) ErrorResponse {
	e.Details = details
	return e
}
