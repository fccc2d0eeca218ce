package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"itam/pkg/employees"
	"itam/pkg/sendemail"
)

const digestDateLayout = "2006-01-02"

// EmployeeDirectory resolves the recipient of an assignment notification.
// The employees repository satisfies it.
type EmployeeDirectory interface {
	GetByID(ctx context.Context, nameID string) (employees.Employee, error)
}

// WarrantyItem is one row of the expiring warranty digest.
type WarrantyItem struct {
	AssetID     string
	AssetType   string
	Brand       string
	Model       string
	AssignedTo  string
	WarrantyEnd time.Time
}

// Service renders and sends the emails the asset workflows trigger.
type Service struct {
	directory EmployeeDirectory
	mailer    sendemail.EmailService
	log       *logrus.Entry
}

func NewService(directory EmployeeDirectory, mailer sendemail.EmailService, log *logrus.Entry) *Service {
	return &Service{
		directory: directory,
		mailer:    mailer,
		log:       log,
	}
}

// NotifyAssignment emails an employee that an asset landed on their desk.
// The assignment itself already committed, so failures are logged and
// swallowed rather than bubbled back to the caller.
func (s *Service) NotifyAssignment(ctx context.Context, employeeID, assetID string) {
	emp, err := s.directory.GetByID(ctx, employeeID)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"employeeId": employeeID,
			"assetId":    assetID,
		}).Warn("Could not resolve employee for assignment email")
		return
	}
	if emp.Email == "" {
		s.log.WithField("employeeId", employeeID).Debug("Employee has no email, skipping assignment notification")
		return
	}

	if err := s.sendAssignmentEmail(emp.Name, emp.Email, assetID); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"employeeId": employeeID,
			"assetId":    assetID,
		}).Error("Failed to send assignment email")
		return
	}
	s.log.WithFields(logrus.Fields{
		"employeeId": employeeID,
		"assetId":    assetID,
	}).Info("Assignment email sent")
}

// SendWarrantyDigest mails one summary of warranties that are about to run
// out. Nothing is sent when the list is empty.
func (s *Service) SendWarrantyDigest(recipient string, items []WarrantyItem) error {
	if recipient == "" {
		return fmt.Errorf("digest recipient not configured")
	}
	if len(items) == 0 {
		return nil
	}

	subject := fmt.Sprintf("%d warranties expiring soon", len(items))
	plain, html := renderWarrantyDigest(items)
	return s.mailer.SendEmail(subject, recipient, plain, html)
}

func (s *Service) sendAssignmentEmail(name, toEmail, assetID string) error {
	subject := fmt.Sprintf("Asset %s assigned to you", assetID)
	plainTextContent := fmt.Sprintf("Hi %s, asset %s has been assigned to you. Please contact IT if anything is missing.", name, assetID)
	htmlContent := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px;">
			<h2>Asset assigned to you</h2>
			<p>Hi %s,</p>
			<p>Asset <b>%s</b> has been assigned to you.</p>
			<p>Please contact IT if anything is missing.</p>
		</div>
	`, name, assetID)

	return s.mailer.SendEmail(subject, toEmail, plainTextContent, htmlContent)
}

func renderWarrantyDigest(items []WarrantyItem) (string, string) {
	var plain strings.Builder
	plain.WriteString("Warranties expiring soon:\n")

	var rows strings.Builder
	for _, item := range items {
		holder := item.AssignedTo
		if holder == "" {
			holder = "Not Assigned"
		}
		end := item.WarrantyEnd.Format(digestDateLayout)

		fmt.Fprintf(&plain, "- %s %s %s %s (%s) expires %s\n",
			item.AssetID, item.AssetType, item.Brand, item.Model, holder, end)
		fmt.Fprintf(&rows, `<tr><td style="padding: 6px 12px;">%s</td><td style="padding: 6px 12px;">%s</td><td style="padding: 6px 12px;">%s %s</td><td style="padding: 6px 12px;">%s</td><td style="padding: 6px 12px;">%s</td></tr>`,
			item.AssetID, item.AssetType, item.Brand, item.Model, holder, end)
	}

	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px;">
			<h2>Warranties expiring soon</h2>
			<table style="border-collapse: collapse; background-color: #f5f5f5;">
				<tr><th style="padding: 6px 12px; text-align: left;">Asset</th><th style="padding: 6px 12px; text-align: left;">Type</th><th style="padding: 6px 12px; text-align: left;">Brand / Model</th><th style="padding: 6px 12px; text-align: left;">Assigned To</th><th style="padding: 6px 12px; text-align: left;">Warranty End</th></tr>
				%s
			</table>
		</div>
	`, rows.String())

	return plain.String(), html
}
