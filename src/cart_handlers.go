package main

import (
	"errors"
	"log"
	"net/http"

	"fcshop/src/common"
	"fcshop/src/db"
	"fcshop/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func cartHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/cart", func(ctx *gin.Context) {
			memberId := ctx.GetUint("id")
			common.ExpireStaleHolds()
			selection, err := common.GetCartSelection(ctx.Request.Context(), memberId)
			if err != nil {
				log.Printf("Error loading cart for member %d: %s\n", memberId, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			holds, err := common.ReservedHolds(db.GetDb(), memberId)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"items":          selection,
				"reserved_holds": holds,
			}})
		}).
		PUT("/cart", func(ctx *gin.Context) {
			var body types.PutCartRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			memberId := ctx.GetUint("id")
			if err := common.PutCartSelection(ctx.Request.Context(), memberId, body.Items); err != nil {
				log.Printf("Error storing cart for member %d: %s\n", memberId, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "Gear item not found"})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": body.Items})
		}).
		DELETE("/cart/items/:gearID", func(ctx *gin.Context) {
			var params types.CartLineURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			memberId := ctx.GetUint("id")
			if err := common.RemoveCartLine(ctx.Request.Context(), memberId, params.GearID); err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/cart/preview", func(ctx *gin.Context) {
			var body types.CartPreviewRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			memberId := ctx.GetUint("id")
			common.ExpireStaleHolds()
			common.ExpireLapsedStandings()
			selection, err := common.GetCartSelection(ctx.Request.Context(), memberId)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			preview, err := common.BuildPreview(db.GetDb(), memberId, selection, body.CashbackToApply)
			if err != nil {
				log.Printf("Error building preview for member %d: %s\n", memberId, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": preview})
		})
	return g
}
