package lib

import (
	"context"
	"log"
	"os"

	"github.com/plutov/paypal/v4"
)

var paypalClient *paypal.Client

func GetPayPalClient() *paypal.Client {
	if paypalClient != nil {
		return paypalClient
	}
	clientID := os.Getenv("PAYPAL_CLIENT_ID")
	secret := os.Getenv("PAYPAL_CLIENT_SECRET")
	apiBase := os.Getenv("PAYPAL_API_BASE")
	if apiBase == "" {
		apiBase = paypal.APIBaseSandBox
	}
	c, err := paypal.NewClient(clientID, secret, apiBase)
	if err != nil {
		log.Printf("[paypal] Error initializing client: %s\n", err.Error())
		return nil
	}
	if _, err := c.GetAccessToken(context.Background()); err != nil {
		log.Printf("[paypal] Error fetching access token: %s\n", err.Error())
	}
	paypalClient = c
	return c
}

// NewPayPalClient Replace paypal instance with custom client implementation
func NewPayPalClient(c *paypal.Client) *paypal.Client {
	paypalClient = c
	return paypalClient
}
