package transport

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type Item struct {
	ItemID string `json:"item_id"`
	Owner  string `json:"owner"`
}

type ErrorDetail struct {
	Detail string `json:"detail"`
}
