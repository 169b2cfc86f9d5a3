package dto

import (
	"time"

	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/wizard"
)

// ============ Shared ============

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ============ Auth ============

type RegisterRequest struct {
	Login    string `json:"login" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required"`
	Role     int    `json:"role" binding:"omitempty,gte=0,lte=2"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Login    string `json:"login"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// ============ Tags ============

type TagResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type TagListResponse struct {
	Tags  []TagResponse `json:"tags"`
	Total int           `json:"total"`
}

type CreateTagRequest struct {
	Name string `json:"name" binding:"required,min=2,max=50"`
}

// ============ Wizard ============

type UpdateDraftFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type ToggleValueRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value" binding:"required"`
}

type SelectPaymentOptionRequest struct {
	OptionID string `json:"option_id" binding:"required"`
}

// WizardSessionResponse is the full wizard state plus the request-list
// display aggregation the Summary step renders.
type WizardSessionResponse struct {
	Session      *wizard.Session `json:"session"`
	RequestCount int             `json:"request_count"`
}

// PayResponse mirrors wizard.PayResult plus the public key the embedded
// checkout needs.
type PayResponse struct {
	PublicKey string            `json:"public_key,omitempty"`
	Result    *wizard.PayResult `json:"result"`
}

// ============ Orders ============

type OrderResponse struct {
	ID        uint       `json:"id"`
	Reference string     `json:"reference"`
	Status    string     `json:"status"`
	Title     string     `json:"title"`
	Total     float64    `json:"total"`
	Currency  string     `json:"currency"`
	CreatedAt time.Time  `json:"created_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	ProofURL  string     `json:"proof_url,omitempty"`
	Items     int        `json:"items"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
}
