package notify

import (
	"fmt"
	"strings"

	"github.com/vinsight/vinsight/internal/domain"
)

// Message is a rendered notification ready for the dispatcher.
type Message struct {
	Subject  string
	TextBody string
	HTMLBody string
}

func htmlWrap(title, body string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">`)
	fmt.Fprintf(&b, "<h2>%s</h2>", title)
	b.WriteString(body)
	b.WriteString(`<p style="color:#888;font-size:12px">Vinsight Vehicle History Reports</p></div>`)
	return b.String()
}

func orderRows(o *domain.Order) string {
	vin := ""
	if o.VinNumber != nil {
		vin = *o.VinNumber
	}
	return fmt.Sprintf(
		"<p>Order number: <strong>%s</strong><br>"+
			"Package: %s<br>Vehicle: %s (%s: %s)<br>VIN: %s<br>"+
			"Amount: %.2f %s<br>Payment status: %s</p>",
		o.OrderNumber, o.PackageType, o.VehicleType,
		o.IdentificationType, o.IdentificationValue, vin,
		o.Amount, o.Currency, o.PaymentStatus)
}

func orderText(o *domain.Order) string {
	return fmt.Sprintf(
		"Order number: %s\nPackage: %s\nVehicle: %s (%s: %s)\nAmount: %.2f %s\nPayment status: %s\n",
		o.OrderNumber, o.PackageType, o.VehicleType,
		o.IdentificationType, o.IdentificationValue,
		o.Amount, o.Currency, o.PaymentStatus)
}

// OrderPendingAdmin alerts the administrator that a new order arrived.
func OrderPendingAdmin(o *domain.Order) Message {
	return Message{
		Subject:  fmt.Sprintf("New Order: %s", o.OrderNumber),
		TextBody: fmt.Sprintf("A new order was placed by %s.\n\n%s", o.CustomerEmail, orderText(o)),
		HTMLBody: htmlWrap("New Order",
			fmt.Sprintf("<p>A new order was placed by %s.</p>%s", o.CustomerEmail, orderRows(o))),
	}
}

// OrderPendingCustomer acknowledges receipt of the order before payment.
func OrderPendingCustomer(o *domain.Order) Message {
	return Message{
		Subject: fmt.Sprintf("Order Received - %s", o.OrderNumber),
		TextBody: fmt.Sprintf(
			"Thank you for your order.\n\n%s\nWe will start preparing your report as soon as payment completes.\n",
			orderText(o)),
		HTMLBody: htmlWrap("Order Received",
			orderRows(o)+"<p>We will start preparing your report as soon as payment completes.</p>"),
	}
}

// OrderCompletedAdmin alerts the administrator that payment was captured.
func OrderCompletedAdmin(o *domain.Order) Message {
	return Message{
		Subject:  fmt.Sprintf("Order Completed: %s", o.OrderNumber),
		TextBody: fmt.Sprintf("Payment completed for order %s.\n\n%s", o.OrderNumber, orderText(o)),
		HTMLBody: htmlWrap("Order Completed", orderRows(o)),
	}
}

// OrderConfirmation is the customer confirmation, sent on completion and
// on administrator resend.
func OrderConfirmation(o *domain.Order) Message {
	body := orderText(o) + "\nYour vehicle history report is being prepared.\n"
	htmlBody := orderRows(o) + "<p>Your vehicle history report is being prepared.</p>"
	if o.ReportURL != nil && *o.ReportURL != "" {
		body = orderText(o) + fmt.Sprintf("\nYour report is ready: %s\n", *o.ReportURL)
		htmlBody = orderRows(o) + fmt.Sprintf(`<p>Your report is ready: <a href="%s">%s</a></p>`, *o.ReportURL, *o.ReportURL)
	}
	return Message{
		Subject:  fmt.Sprintf("Order Confirmation - %s", o.OrderNumber),
		TextBody: "Thank you for your purchase.\n\n" + body,
		HTMLBody: htmlWrap("Order Confirmation", htmlBody),
	}
}

// ContactReceived alerts the administrator of a contact form submission.
func ContactReceived(c *domain.ContactSubmission) Message {
	return Message{
		Subject: fmt.Sprintf("Contact Form: %s", c.Subject),
		TextBody: fmt.Sprintf("From: %s <%s>\n\n%s\n", c.Name, c.Email, c.Message),
		HTMLBody: htmlWrap("Contact Form",
			fmt.Sprintf("<p>From: %s &lt;%s&gt;</p><p>%s</p>", c.Name, c.Email, c.Message)),
	}
}

// ReviewReceived alerts the administrator of a review awaiting moderation.
func ReviewReceived(r *domain.Review) Message {
	return Message{
		Subject: fmt.Sprintf("New Review from %s", r.Name),
		TextBody: fmt.Sprintf("Rating: %d/5\n%s\n\n%s\n", r.Rating, r.Title, r.Body),
		HTMLBody: htmlWrap("New Review",
			fmt.Sprintf("<p>Rating: %d/5</p><p><strong>%s</strong></p><p>%s</p>", r.Rating, r.Title, r.Body)),
	}
}
