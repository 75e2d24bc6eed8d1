package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"

	"fcshop/src/common"
	"fcshop/src/types"

	"github.com/gin-gonic/gin"
	"github.com/yeqown/go-qrcode"
	"gorm.io/gorm"
)

func reservationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/reservations", func(ctx *gin.Context) {
			memberId := ctx.GetUint("id")
			common.ExpireStaleHolds()
			holds, err := common.HoldsForMember(memberId)
			if err != nil {
				log.Printf("Error retrieving holds for member %d: %s\n", memberId, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": holds, "count": len(holds)})
		}).
		POST("/reservations/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			memberId := ctx.GetUint("id")
			if err := common.CancelHold(memberId, params.ID); err != nil {
				log.Printf("Could not cancel hold %d for member %d: %s\n", params.ID, memberId, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"id": params.ID, "status": types.HOLD_CANCELED}})
		}).
		GET("/reservations/:id/eticket", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			memberId := ctx.GetUint("id")
			hold, err := common.GetHold(memberId, params.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if hold.Status != types.HOLD_CONFIRMED || hold.ConfirmationCode == nil {
				ctx.JSON(http.StatusConflict, gin.H{"error": "Ticket is not confirmed"})
				return
			}

			rawData := map[string]any{
				"holdId":           hold.ID,
				"eventId":          hold.EventID,
				"quantity":         hold.Quantity,
				"confirmationCode": *hold.ConfirmationCode,
			}
			rawBytes, _ := json.Marshal(rawData)
			qrc, err := qrcode.New(string(rawBytes))
			if err != nil {
				log.Printf("Error generating qrcode for hold %d: %s\n", hold.ID, err.Error())
				ctx.Status(http.StatusUnprocessableEntity)
				return
			}
			filepath := path.Join(os.TempDir(), fmt.Sprintf("eticket_%d.jpeg", hold.ID))
			if err := qrc.Save(filepath); err != nil {
				log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
				ctx.Status(http.StatusUnprocessableEntity)
				return
			}
			ctx.FileAttachment(filepath, "eticket.jpeg")
		})
	return g
}
