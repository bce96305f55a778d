package api

import (
	"context"
	"net/http"

	"github.com/mmynk/tripwiser/internal/models"
)

// SignupRequest registers a new account.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	UserType string `json:"userType"`
}

type SignupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the token pair and the user snapshot the session
// store caches. VerifyOTP returns the same shape.
type LoginResponse struct {
	Message      string      `json:"message"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	User         models.User `json:"user"`
}

type GetOTPRequest struct {
	Email string `json:"email"`
}

type GetOTPResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// Signup creates a new account. Duplicate email/phone surfaces as a
// Conflict classification.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	var resp SignupResponse
	if err := c.do(ctx, http.MethodPost, "auth/signup", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOTP requests a one-time code for the given email.
func (c *Client) GetOTP(ctx context.Context, req GetOTPRequest) (*GetOTPResponse, error) {
	var resp GetOTPResponse
	if err := c.do(ctx, http.MethodPost, "auth/getotp", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyOTP exchanges a one-time code for a token pair.
func (c *Client) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "auth/verifyotp", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
