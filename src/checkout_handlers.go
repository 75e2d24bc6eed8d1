package main

import (
	"errors"
	"log"
	"net/http"

	"fcshop/src/common"
	"fcshop/src/db"
	"fcshop/src/payments"
	"fcshop/src/types"

	"github.com/gin-gonic/gin"
)

func checkoutHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/checkout/intent", func(ctx *gin.Context) {
			var body types.CreateIntentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			memberId := ctx.GetUint("id")
			selection, err := common.GetCartSelection(ctx.Request.Context(), memberId)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			handle, err := common.CreateCheckoutIntent(ctx.Request.Context(), memberId, selection, body.CashbackToApply, body.Processor)
			if err != nil {
				log.Printf("Could not create checkout intent for member %d: %s\n", memberId, err.Error())
				if errors.Is(err, types.ErrGatewayFailure) {
					ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": handle})
		}).
		POST("/checkout/confirm", func(ctx *gin.Context) {
			var body types.ConfirmCheckoutRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			memberId := ctx.GetUint("id")

			intent, err := common.IntentByReference(body.Reference)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": types.ErrIntentNotFound.Error()})
				return
			}
			if intent.MemberID != memberId {
				ctx.Status(http.StatusNotFound)
				return
			}

			gw, err := payments.For(intent.Processor)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			status, err := gw.Confirm(ctx.Request.Context(), body.Reference)
			if err != nil {
				ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
				return
			}
			if status != payments.CONFIRM_SUCCEEDED {
				ctx.JSON(http.StatusPaymentRequired, gin.H{"error": types.ErrPaymentIncomplete.Error(), "status": status})
				return
			}

			receipt, err := common.Settle(ctx.Request.Context(), body.Reference)
			if err != nil {
				log.Printf("Settlement failed for reference %s: %s\n", body.Reference, err.Error())
				if errors.Is(err, types.ErrHoldExpired) || errors.Is(err, types.ErrStockExceeded) || errors.Is(err, types.ErrInsufficientCashback) {
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "reversal_required": true})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": receipt})
		}).
		GET("/membership", func(ctx *gin.Context) {
			memberId := ctx.GetUint("id")
			common.ExpireLapsedStandings()
			standing, err := common.ActiveStanding(db.GetDb(), memberId)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if standing == nil {
				ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
					"tier":             nil,
					"cashback_balance": 0,
				}})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"tier":             standing.Tier,
				"status":           standing.Status,
				"cashback_balance": standing.CashbackBalance,
				"expires_at":       standing.ExpiresAt,
			}})
		})
	return g
}
