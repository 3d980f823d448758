// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"loyalty/internal/delivery/api/middleware"
	"loyalty/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	CoinHandler    *handler.CoinHandler
	VoucherHandler *handler.VoucherHandler
	RatingHandler  *handler.RatingHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	coinHandler    *handler.CoinHandler
	voucherHandler *handler.VoucherHandler
	ratingHandler  *handler.RatingHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		coinHandler:    params.CoinHandler,
		voucherHandler: params.VoucherHandler,
		ratingHandler:  params.RatingHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// API v1 routes
	apiV1 := e.Group("/api/v1")
	apiV1.Use(r.authMiddleware.Authenticate) // All API v1 routes require authentication

	coinsGroup := apiV1.Group("/coins")
	{
		coinsGroup.GET("/balance", r.coinHandler.GetBalance)
		coinsGroup.GET("/history", r.coinHandler.GetHistory)
		coinsGroup.POST("/preview", r.coinHandler.PreviewDiscount)
		coinsGroup.POST("/commit", r.coinHandler.CommitDiscount)
	}

	vouchersGroup := apiV1.Group("/vouchers")
	{
		vouchersGroup.GET("/mine", r.voucherHandler.GetMyVouchers)
		vouchersGroup.GET("/available", r.voucherHandler.GetAvailableVouchers)
		vouchersGroup.POST("/claim", r.voucherHandler.ClaimVoucher)
		vouchersGroup.POST("/validate", r.voucherHandler.ValidateVoucher)

		reservationsGroup := vouchersGroup.Group("/reservations")
		reservationsGroup.POST("", r.voucherHandler.ReserveVoucher)
		reservationsGroup.POST("/redeem", r.voucherHandler.RedeemReservation)
		reservationsGroup.GET("/:token/qr", r.voucherHandler.GetReservationQR)
	}

	ratingsGroup := apiV1.Group("/ratings")
	{
		ratingsGroup.POST("", r.ratingHandler.SubmitRating)
		ratingsGroup.GET("/pending", r.ratingHandler.GetPendingRatings)
	}

	apiV1.GET("/orders/:orderId/ratings", r.ratingHandler.GetOrderRatings)
}
