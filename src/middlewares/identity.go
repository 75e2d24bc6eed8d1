package middlewares

import (
	"log"
	"strconv"

	"fcshop/src/db"
	"fcshop/src/models"

	"github.com/gin-gonic/gin"
)

// IdentityMiddleware trusts the upstream auth layer to have resolved the
// member and to pass the id in X-Member-ID. This subsystem never
// authenticates; it only refuses requests that arrive without a resolved
// member.
func IdentityMiddleware(ctx *gin.Context) {
	header := ctx.Request.Header.Get("X-Member-ID")
	if header == "" {
		ctx.AbortWithStatus(401)
		return
	}
	atoi, err := strconv.Atoi(header)
	if err != nil || atoi < 1 {
		ctx.AbortWithStatus(401)
		return
	}
	memberId := uint(atoi)

	db := db.GetDb()
	var member models.Member
	err = db.
		Model(&models.Member{}).
		Where(&models.Member{ID: memberId}).
		First(&member).
		Error
	if err != nil {
		log.Printf("Unknown member %d: %s\n", memberId, err.Error())
		ctx.AbortWithStatus(401)
		return
	}

	ctx.Set("id", member.ID)
	ctx.Set("email", member.Email)
}
