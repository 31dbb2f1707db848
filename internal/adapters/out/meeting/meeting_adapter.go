package meeting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/booking-link-engine/internal/config"
	"github.com/suchimauz/booking-link-engine/internal/core/ports/out"
)

// MeetingAdapter - клиент внешнего провайдера ссылок на видеовстречи.
// Вызывается только после успешного сохранения брони: любая ошибка здесь
// логируется и возвращает пустую ссылку, но не трогает саму бронь
type MeetingAdapter struct {
	client   *http.Client
	baseURL  string
	username string
	password string
	logger   out.LoggerPort
}

func NewMeetingAdapter(cfg *config.Config, logger out.LoggerPort) *MeetingAdapter {
	if !cfg.MeetingLink.Enabled {
		logger.Info("meeting.disabled", out.LogFields{
			"message": "Meeting link provider is disabled",
		})
		return nil
	}

	return &MeetingAdapter{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  cfg.MeetingLink.URL,
		username: cfg.MeetingLink.Username,
		password: cfg.MeetingLink.Password,
		logger:   logger,
	}
}

type createMeetingRequest struct {
	OwnerID       string    `json:"ownerId"`
	Title         string    `json:"title"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	AttendeeName  string    `json:"attendeeName"`
	AttendeeEmail string    `json:"attendeeEmail"`
}

type createMeetingResponse struct {
	URL string `json:"url"`
}

func (a *MeetingAdapter) CreateMeetingLink(ctx context.Context, ownerID uuid.UUID, req out.MeetingLinkRequest) (string, error) {
	a.logger.Info("meeting.create", out.LogFields{
		"ownerId": ownerID,
		"start":   req.Start,
	})

	body, err := json.Marshal(createMeetingRequest{
		OwnerID:       ownerID.String(),
		Title:         req.Title,
		Start:         req.Start,
		End:           req.End,
		AttendeeName:  req.AttendeeName,
		AttendeeEmail: req.AttendeeEmail,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/meetings", a.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		a.logger.Error("meeting.create.request_failed", out.LogFields{
			"error": err.Error(),
		})
		return "", err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(a.username, a.password)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		a.logger.Error("meeting.create.failed", out.LogFields{
			"error": err.Error(),
		})
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		a.logger.Error("meeting.create.failed", out.LogFields{
			"status": resp.StatusCode,
		})
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var meetingResp createMeetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&meetingResp); err != nil {
		a.logger.Error("meeting.create.decode_response_failed", out.LogFields{
			"error": err.Error(),
		})
		return "", err
	}

	a.logger.Debug("meeting.create.success", out.LogFields{
		"ownerId": ownerID,
	})

	return meetingResp.URL, nil
}
