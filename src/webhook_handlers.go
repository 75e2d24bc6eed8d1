package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"

	"fcshop/src/common"
	"fcshop/src/payments"
	"fcshop/src/types"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/tidwall/gjson"
)

// Processor callbacks. Both processors may deliver the same confirmation
// more than once; Settle is idempotent on the reference, so replays are
// answered 200 without re-applying anything.

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "payment_intent.succeeded":
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				break
			}
			if _, err := common.Settle(ctx.Request.Context(), pi.ID); err != nil {
				log.Printf("[Stripe] Settlement failed for %s: %s\n", pi.ID, err.Error())
				ctx.Status(http.StatusUnprocessableEntity)
				return
			}
		case "payment_intent.payment_failed":
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
				break
			}
			log.Printf("[Stripe] Payment failed for intent %s\n", pi.ID)
		}
		ctx.Status(http.StatusOK)
	})
	return apiv1
}

func paypalWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/paypal", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		body := string(payload)
		if !gjson.Valid(body) {
			log.Println("[PayPal] Received invalid json body. Aborting")
			ctx.Status(http.StatusBadRequest)
			return
		}
		eventType := gjson.Get(body, "event_type").String()
		log.Printf("[PayPalEvent] %s\n", eventType)
		switch eventType {
		case "PAYMENT.CAPTURE.COMPLETED":
			// The capture's parent order id is the reference the intent was
			// recorded under.
			reference := gjson.Get(body, "resource.supplementary_data.related_ids.order_id").String()
			if reference == "" {
				reference = gjson.Get(body, "resource.id").String()
			}
			if reference == "" {
				ctx.Status(http.StatusBadRequest)
				return
			}
			// These notifications arrive unsigned, unlike Stripe's. The body
			// alone proves nothing; the processor must report the capture as
			// completed before settlement runs.
			gw, err := payments.For(types.PROCESSOR_WALLET)
			if err != nil {
				ctx.Status(http.StatusUnprocessableEntity)
				return
			}
			status, err := gw.Confirm(ctx.Request.Context(), reference)
			if err != nil || status != payments.CONFIRM_SUCCEEDED {
				log.Printf("[PayPal] Unconfirmed capture notification for %s\n", reference)
				ctx.Status(http.StatusBadRequest)
				return
			}
			if _, err := common.Settle(ctx.Request.Context(), reference); err != nil {
				log.Printf("[PayPal] Settlement failed for %s: %s\n", reference, err.Error())
				ctx.Status(http.StatusUnprocessableEntity)
				return
			}
		case "CHECKOUT.ORDER.APPROVED":
			// Approval is not completion; settlement waits for the capture.
			log.Printf("[PayPal] Order approved: %s\n", gjson.Get(body, "resource.id").String())
		}
		ctx.Status(http.StatusOK)
	})
	return apiv1
}
