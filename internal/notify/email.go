package notify

import (
	"fmt"
	"time"

	"bookline/pkg/model"
)

// EmailNotification is the payload published for the downstream mailer.
type EmailNotification struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

const (
	EventBookingReceived  = "booking.received"
	EventPendingReview    = "booking.pending_review"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingRejected  = "booking.rejected"
)

func displayName(b *model.Booking) string {
	if b.Name != "" {
		return b.Name
	}
	return "Customer"
}

func formatWindow(b *model.Booking) (string, string) {
	return b.StartTime.Format(time.RFC1123), b.EndTime.Format(time.RFC1123)
}

func receivedEmail(b *model.Booking, from string) EmailNotification {
	start, end := formatWindow(b)
	body := fmt.Sprintf(`Dear %s,

We have received your booking request and it is awaiting review.

Booking Details:
- Type: %s
- Start Time: %s
- End Time: %s

You will receive another email once your booking has been reviewed.

Best regards,
Your Booking Team`, displayName(b), b.Type, start, end)

	return EmailNotification{
		To:      b.Email,
		From:    from,
		Subject: "Booking Request Received",
		Body:    body,
	}
}

func pendingReviewEmail(b *model.Booking, from, adminEmail string) EmailNotification {
	start, end := formatWindow(b)
	body := fmt.Sprintf(`A new booking request is awaiting review.

Booking Details:
- Name: %s
- Email: %s
- Phone: %s
- Type: %s
- Start Time: %s
- End Time: %s
- Notes: %s`, b.Name, b.Email, b.Phone, b.Type, start, end, b.Notes)

	return EmailNotification{
		To:      adminEmail,
		From:    from,
		Subject: "New Booking Pending Review",
		Body:    body,
	}
}

func confirmedEmail(b *model.Booking, from string) EmailNotification {
	start, end := formatWindow(b)
	body := fmt.Sprintf(`Dear %s,

Your booking has been confirmed!

Booking Details:
- Type: %s
- Start Time: %s
- End Time: %s
- Email: %s

Thank you for your booking!

Best regards,
Your Booking Team`, displayName(b), b.Type, start, end, b.Email)

	return EmailNotification{
		To:      b.Email,
		From:    from,
		Subject: "Booking Confirmation",
		Body:    body,
	}
}

func rejectedEmail(b *model.Booking, from, message string) EmailNotification {
	start, end := formatWindow(b)
	body := fmt.Sprintf(`Dear %s,

Unfortunately your booking request could not be accommodated.

Booking Details:
- Type: %s
- Start Time: %s
- End Time: %s`, displayName(b), b.Type, start, end)

	if message != "" {
		body += fmt.Sprintf(`

Message from the administrator:
%s`, message)
	}

	body += `

You are welcome to request another time.

Best regards,
Your Booking Team`

	return EmailNotification{
		To:      b.Email,
		From:    from,
		Subject: "Booking Request Declined",
		Body:    body,
	}
}
