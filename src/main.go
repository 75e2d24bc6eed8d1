package main

import (
	"log"
	"net/http"
	"os"
	"path"

	"fcshop/src/boot"
	"fcshop/src/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	apiPrefix string = "/api/v1"
)

// cashbackamount accepts any non-negative redemption request; the upper
// bound depends on the member's live balance and is enforced by the preview
// and the conditional redeem update, not by binding.
var cashbackAmountValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	amount, ok := fl.Field().Interface().(float64)
	if !ok {
		return false
	}
	return amount >= 0
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	return g.Group(apiPrefix)
}

func setupRouter() *gin.Engine {
	router := gin.Default()

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	stripeWebhookRoute(router)
	paypalWebhookRoute(router)

	apiv1 := apiv1Group(router)
	apiv1.Use(middlewares.IdentityMiddleware)
	eventHandlers(apiv1)
	reservationHandlers(apiv1)
	cartHandlers(apiv1)
	checkoutHandlers(apiv1)

	return router
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			log.Printf("No .env file loaded: %s\n", err.Error())
		}
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("cashbackamount", cashbackAmountValidatorFunc)
	}

	boot.InitDb()
	boot.InitScheduler()

	router := setupRouter()
	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "X-Member-ID")
		cc.AllowAllOrigins = true
		router.Use(cors.New(cc))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Error starting server: %s\n", err.Error())
	}
}
