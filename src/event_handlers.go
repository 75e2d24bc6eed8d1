package main

import (
	"errors"
	"log"
	"net/http"

	"fcshop/src/common"
	"fcshop/src/db"
	"fcshop/src/models"
	"fcshop/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func eventHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/events", func(ctx *gin.Context) {
			common.ExpireStaleHolds()
			db := db.GetDb()
			var events []models.Event
			err := db.
				Model(&models.Event{}).
				Order("date_time ASC").
				Limit(100).
				Find(&events).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": events, "count": len(events)})
		}).
		GET("/events/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			common.ExpireStaleHolds()
			db := db.GetDb()
			var event models.Event
			if err := db.
				Model(&models.Event{}).
				Where(&models.Event{ID: params.ID}).
				First(&event).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": event})
		}).
		POST("/events/:id/reserve", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.ReserveTicketsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			memberId := ctx.GetUint("id")
			common.ExpireStaleHolds()
			hold, err := common.ReserveTickets(memberId, params.ID, body.Quantity)
			if err != nil {
				log.Printf("Could not reserve tickets for member %d: %s\n", memberId, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
					return
				}
				if errors.Is(err, types.ErrCapacityExceeded) || errors.Is(err, types.ErrDuplicateHold) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{
				"hold_id":    hold.ID,
				"expires_at": hold.ExpiresAt,
				"quantity":   hold.Quantity,
				"unit_price": hold.UnitPrice,
			}})
		})
	return g
}
