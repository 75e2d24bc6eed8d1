package mailer

import (
	"fmt"
	"log"
	"os"
	"strings"

	"fcshop/src/lib"
	"fcshop/src/types"

	"github.com/wneessen/go-mail"
)

// SendReceipt emails the settlement receipt to the member. Called after the
// settlement transaction commits; a mail failure never unwinds a settlement.
func SendReceipt(to string, name string, receipt *types.Receipt) error {
	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "noreply@club.example"
	}
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return err
	}
	if err := m.To(to); err != nil {
		return err
	}
	m.Subject(fmt.Sprintf("Payment confirmation %s", receipt.Reference))

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "We received your payment of %.2f (%s).\n", receipt.Amount, receipt.Processor)
	if receipt.OrderID != nil {
		fmt.Fprintf(&b, "Order #%d has been confirmed.\n", *receipt.OrderID)
	}
	if len(receipt.ConfirmationCodes) > 0 {
		fmt.Fprintf(&b, "Ticket confirmation codes: %s\n", strings.Join(receipt.ConfirmationCodes, ", "))
	}
	if receipt.CashbackRedeemed > 0 {
		fmt.Fprintf(&b, "Cashback redeemed: %.2f\n", receipt.CashbackRedeemed)
	}
	if receipt.CashbackAccrued > 0 {
		fmt.Fprintf(&b, "Cashback earned: %.2f\n", receipt.CashbackAccrued)
	}
	b.WriteString("\nSee you at the ground!\n")
	m.SetBodyString(mail.TypeTextPlain, b.String())

	c, err := lib.GetSMTPClient()
	if err != nil {
		return err
	}
	if err := c.DialAndSend(m); err != nil {
		log.Printf("[mailer] Error sending receipt %s: %s\n", receipt.Reference, err.Error())
		return err
	}
	return nil
}
