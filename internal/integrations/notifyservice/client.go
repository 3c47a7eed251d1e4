package notifyservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с NotifyService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента NotifyService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Notify отправляет студенту уведомление об изменении его места в очереди
func (c *Client) Notify(ctx context.Context, studentID int64, kind domain.NotificationKind, payload map[string]string) error {
	url := fmt.Sprintf("%s/internal/notifications", c.baseURL)

	body := NotificationRequest{
		StudentID: studentID,
		Kind:      string(kind),
		Payload:   payload,
	}

	return c.post(ctx, url, body)
}

// SendOTP отправляет одноразовый код подтверждения на телефон
func (c *Client) SendOTP(ctx context.Context, phone string) error {
	url := fmt.Sprintf("%s/internal/otp/send", c.baseURL)

	return c.post(ctx, url, OTPRequest{Phone: phone})
}

// NotifyWithGracefulDegradation отправляет уведомление с graceful degradation
// При недоступности NotifyService возвращает ErrServiceDegraded: уведомление
// теряется, но бизнес-операция (постановка в очередь, промоушен) не откатывается
func (c *Client) NotifyWithGracefulDegradation(ctx context.Context, studentID int64, kind domain.NotificationKind, payload map[string]string) error {
	if err := c.Notify(ctx, studentID, kind, payload); err != nil {
		c.log.Error("NotifyService unavailable, dropping %s notification for student_id=%d: %v", kind, studentID, err)
		return fmt.Errorf("%w: student_id=%d, kind=%s, error=%v", ErrServiceDegraded, studentID, kind, err)
	}

	c.log.Info("Sent %s notification to student_id=%d", kind, studentID)
	return nil
}

func (c *Client) post(ctx context.Context, url string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
		return nil
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}
}
