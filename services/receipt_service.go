package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	config "github.com/academyhq/academy_backend/configs"
	"github.com/academyhq/academy_backend/database"
	"github.com/academyhq/academy_backend/models"
	"github.com/academyhq/academy_backend/notifications"
	"github.com/academyhq/academy_backend/utils"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

const receiptTemplate = `<!DOCTYPE html>
<html>
<head><style>
body { font-family: Georgia, serif; margin: 48px; color: #222; }
h1 { text-align: center; letter-spacing: 2px; }
table { width: 100%; border-collapse: collapse; margin-top: 32px; }
td { padding: 8px 4px; border-bottom: 1px solid #ddd; }
td:first-child { color: #666; width: 40%; }
.footer { margin-top: 48px; text-align: center; color: #999; font-size: 12px; }
</style></head>
<body>
<h1>{{.AcademyName}}</h1>
<p style="text-align:center">Fee Receipt {{.ReceiptNumber}}</p>
<table>
<tr><td>Student</td><td>{{.StudentName}}</td></tr>
<tr><td>Batch</td><td>{{.BatchName}}</td></tr>
<tr><td>Month</td><td>{{.Month}}</td></tr>
<tr><td>Amount</td><td>{{.Amount}}</td></tr>
<tr><td>Payment mode</td><td>{{.Mode}}</td></tr>
<tr><td>Paid on</td><td>{{.PaidOn}}</td></tr>
</table>
<div class="footer">Generated on {{.GeneratedOn}}</div>
</body>
</html>`

// GenerateFeeReceipt renders a PDF receipt for a paid fee, uploads it and
// stores the URL on the fee row, then mails the parent. Meant to run in
// the background after the payment update commits; every failure is
// logged and abandoned, the fee itself stays paid.
func GenerateFeeReceipt(feeID uuid.UUID) {
	var fee models.Fee
	err := database.DB.Preload("Student").Preload("Batch").First(&fee, "id = ?", feeID).Error
	if err != nil {
		log.Printf("🔥 Receipt: failed to load fee %s: %v", feeID, err)
		return
	}
	if fee.Status != models.FeeStatusPaid || fee.PaidOn == nil {
		return
	}
	if fee.ReceiptURL != nil {
		return
	}

	var academy models.Academy
	if err := database.DB.First(&academy, "id = ?", fee.AcademyID).Error; err != nil {
		log.Printf("🔥 Receipt: failed to load academy for fee %s: %v", feeID, err)
		return
	}

	receiptNumber, err := utils.GenerateUniqueReceiptNumber(database.DB)
	if err != nil {
		log.Printf("🔥 Receipt: failed to generate receipt number: %v", err)
		return
	}

	htmlData, err := renderReceiptHTML(academy.Name, receiptNumber, &fee)
	if err != nil {
		log.Printf("🔥 Receipt: failed to render HTML: %v", err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Receipt: failed to generate PDF: %v", err)
		return
	}

	uploadURL, err := uploadReceiptPDF(pdfBytes, fee.StudentID.String())
	if err != nil {
		log.Printf("🔥 Receipt: failed to upload PDF: %v", err)
		return
	}

	fee.ReceiptNumber = &receiptNumber
	fee.ReceiptURL = &uploadURL
	if err := database.DB.Model(&models.Fee{}).Where("id = ?", fee.ID).
		Updates(map[string]any{"receipt_number": receiptNumber, "receipt_url": uploadURL}).Error; err != nil {
		log.Printf("🔥 Receipt: failed to store receipt URL for fee %s: %v", fee.ID, err)
		return
	}

	log.Printf("✅ Generated receipt %s for fee %s.", receiptNumber, fee.ID)
	if fee.Student.ParentEmail != nil && *fee.Student.ParentEmail != "" {
		notifications.SendEmail(
			fee.Student.ParentName, *fee.Student.ParentEmail,
			fmt.Sprintf("Fee receipt %s", receiptNumber),
			fmt.Sprintf("<p>Payment of %.2f for %s (%s) received. Receipt: %s</p>", fee.Amount, fee.Student.Name, fee.Month, uploadURL),
		)
	}
}

func renderReceiptHTML(academyName, receiptNumber string, fee *models.Fee) (string, error) {
	tmpl, err := template.New("receipt").Parse(receiptTemplate)
	if err != nil {
		return "", err
	}

	data := struct {
		AcademyName   string
		ReceiptNumber string
		StudentName   string
		BatchName     string
		Month         string
		Amount        string
		Mode          string
		PaidOn        string
		GeneratedOn   string
	}{
		AcademyName:   academyName,
		ReceiptNumber: receiptNumber,
		StudentName:   fee.Student.Name,
		BatchName:     fee.Batch.Name,
		Month:         fee.Month,
		Amount:        fmt.Sprintf("%.2f", fee.Amount),
		Mode:          fee.Mode,
		PaidOn:        fee.PaidOn.Format("January 2, 2006"),
		GeneratedOn:   time.Now().Format("January 2, 2006"),
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadReceiptPDF(fileBytes []byte, studentID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s_%s", studentID, uuid.New().String()),
		Folder:       "academy_receipts",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
