package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/service"
)

// ============================================================
// Wallet & offers
// ============================================================

func getWalletHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/wallet")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}

		wallet, err := market.GetWallet(ctx, p)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, wallet)
	}
}

func addMoneyHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/wallet/add")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}

		var req domain.AddMoneyRequest
		if !decodeBody(w, r, &req) {
			return
		}

		wallet, err := market.AddMoney(ctx, p, req.Amount)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, wallet)
	}
}

func listOffersHandler(market *service.Marketplace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/wallet/offers")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}

		offers := market.ListOffers(ctx, p)
		writeJSON(w, http.StatusOK, domain.ListResponse[domain.Offer]{Data: offers, Total: len(offers)})
	}
}

func applyOfferHandler(market *service.Marketplace, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/wallet/offers/apply")
		defer span.End()

		p, ok := principal(w, r)
		if !ok {
			return
		}

		var req domain.ApplyOfferRequest
		if !decodeBody(w, r, &req) {
			return
		}

		wallet, err := market.ApplyOffer(ctx, p, req.Code)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, wallet)
	}
}
