package domain

// EnforceRequest asks whether a user holds a named permission through any
// of their roles.
type EnforceRequest struct {
	UserID     string `json:"user_id" binding:"required,uuid"`
	Permission string `json:"permission" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}
