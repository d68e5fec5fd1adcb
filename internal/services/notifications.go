package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/sirupsen/logrus"
)

const textbeltURL = "https://textbelt.com/text"

// NotificationService sends appointment SMS through Textbelt. With no API
// key configured it does nothing.
type NotificationService struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *logrus.Logger
}

func NewNotificationService(apiKey string, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		apiKey:   apiKey,
		endpoint: textbeltURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// SendAppointmentConfirmationSMS texts the patient's contact number in the
// background so it never holds up the API response.
func (s *NotificationService) SendAppointmentConfirmationSMS(patient *models.Patient, apt *models.Appointment) {
	if s.apiKey == "" {
		return
	}
	if patient == nil || patient.Contact == "" {
		s.logger.Println("SMS not sent: patient has no contact number.")
		return
	}

	smsBody := fmt.Sprintf(
		"Appointment %s: %s on %s.",
		apt.Status,
		patient.Name,
		apt.DateTime.Format("Jan 2 at 3:04 PM"),
	)
	go func() {
		if err := s.Send(context.Background(), patient.Contact, smsBody); err != nil {
			s.logger.WithError(err).WithField("phone", patient.Contact).Warn("failed to send SMS")
			return
		}
		s.logger.WithField("phone", patient.Contact).Info("sent appointment SMS")
	}()
}

// Send posts one message to Textbelt and reports its verdict.
func (s *NotificationService) Send(ctx context.Context, phone, message string) error {
	postBody, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(postBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("textbelt request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("textbelt response: %w", err)
	}
	if !result.Success {
		if result.Error == "" {
			return errors.New("textbelt: not sent")
		}
		return errors.New("textbelt: " + result.Error)
	}
	return nil
}
