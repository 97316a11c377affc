package handlers

import "github.com/ballop/merchplan/internal/models"

type LoginRequest struct {
	IDToken string `json:"idToken"`
	AsAdmin bool   `json:"asAdmin,omitempty"`
}

type LoginResult struct {
	Token   string         `json:"token"`
	Account models.Account `json:"account"`
}

type ProfileRequest struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

type BrandsRequest struct {
	Brands []string `json:"brands"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type SKURequest struct {
	Brand string `json:"brand"`
}

type SKUResult struct {
	SKU string `json:"sku"`
}

type RoleRequest struct {
	Role string `json:"role"`
}

type AccountStatusRequest struct {
	Status string `json:"status"`
}
