package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

var (
	emailFrom     = os.Getenv("EMAIL_FROM")
	emailPassword = os.Getenv("EMAIL_PASSWORD")
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	companyName   = "Rentora"
	baseURL       = os.Getenv("BASE_URL")
)

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #2b6cb0; margin: 0;">Rentora</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>© 2026 Rentora. All rights reserved.</p>
		</div>
	</div>
</body>
</html>
`

func SendEmail(to []string, subject, body string) error {
	if emailFrom == "" || emailPassword == "" || smtpHost == "" || smtpPort == "" {
		return fmt.Errorf("email configuration not set")
	}

	// Headers
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", companyName, emailFrom)
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"
	headers["X-Mailer"] = "Rentora-Mailer"

	// Build message
	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + body

	// Authentication
	auth := smtp.PlainAuth("", emailFrom, emailPassword, smtpHost)

	// Send email
	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, emailFrom, to, []byte(message))
	if err != nil {
		log.Printf("Failed to send email: %v", err)
		return err
	}

	log.Printf("Successfully sent email to recipients: %v", to)
	return nil
}

func SendNewBookingEmail(to []string, propertyTitle, tenantName, startDate, endDate string) error {
	subject := "New Booking Request - Rentora"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">New Booking</h1>
					<p>Hello,</p>
					<p>Your property <strong>%s</strong> has been booked by <strong>%s</strong>.</p>
					<p>Dates: <strong>%s</strong> — <strong>%s</strong> (checkout day excluded).</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/bookings" style="background-color: #2b6cb0; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">View Bookings</a>
					</div>
					<p>Best regards,<br>The Rentora Team</p>
				</div>`+emailFooter,
		propertyTitle, tenantName, startDate, endDate, baseURL)

	return SendEmail(to, subject, body)
}

func SendBookingCancelledEmail(to []string, bookingID uint, propertyTitle, cancelledBy string) error {
	subject := fmt.Sprintf("Booking #%d Cancelled - Rentora", bookingID)
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Cancelled</h1>
					<p>Hello,</p>
					<p>Booking #%d for <strong>%s</strong> has been cancelled by the %s.</p>
					<p>The dates are available again.</p>
					<p>Best regards,<br>The Rentora Team</p>
				</div>`+emailFooter,
		bookingID, propertyTitle, strings.ToLower(cancelledBy))

	return SendEmail(to, subject, body)
}

func SendBookingOverdueEmail(to []string, bookingID uint, propertyTitle, endDate string) error {
	subject := fmt.Sprintf("Booking #%d Overdue - Rentora", bookingID)
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #c0392b; text-align: center;">Checkout Overdue</h1>
					<p>Hello,</p>
					<p>The stay at <strong>%s</strong> (booking #%d) ended on <strong>%s</strong> and checkout has not been confirmed.</p>
					<p>Please confirm the checkout or contact the other party.</p>
					<p>Best regards,<br>The Rentora Team</p>
				</div>`+emailFooter,
		propertyTitle, bookingID, endDate)

	return SendEmail(to, subject, body)
}

func SendBookingUpdatedEmail(to []string, bookingID uint, propertyTitle, startDate, endDate string) error {
	subject := fmt.Sprintf("Booking #%d Updated - Rentora", bookingID)
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Dates Changed</h1>
					<p>Hello,</p>
					<p>Booking #%d for <strong>%s</strong> now covers <strong>%s</strong> — <strong>%s</strong>.</p>
					<p>Best regards,<br>The Rentora Team</p>
				</div>`+emailFooter,
		bookingID, propertyTitle, startDate, endDate)

	return SendEmail(to, subject, body)
}

func SendCheckoutConfirmedEmail(to []string, bookingID uint, propertyTitle string) error {
	subject := "Checkout Confirmed - Rentora"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Checkout Confirmed</h1>
					<p>Hello,</p>
					<p>The owner confirmed your checkout from <strong>%s</strong> (booking #%d). Thank you for staying!</p>
					<p>You can now leave a review of the property.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/bookings" style="background-color: #2b6cb0; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Leave a Review</a>
					</div>
					<p>Best regards,<br>The Rentora Team</p>
				</div>`+emailFooter,
		propertyTitle, bookingID, baseURL)

	return SendEmail(to, subject, body)
}

func SendPasswordResetEmail(email, otp string) error {
	subject := "Password Reset Code - Rentora"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Password Reset</h1>
					<p>Hello,</p>
					<p>Your password reset code is:</p>
					<div style="text-align: center; margin: 30px 0;">
						<span style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">%s</span>
					</div>
					<p>The code expires in 15 minutes. If you did not request a reset, ignore this email.</p>
					<p>Best regards,<br>The Rentora Team</p>
				</div>`+emailFooter,
		otp)

	return SendEmail([]string{email}, subject, body)
}
