package transport

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"agenthub/services/channel-api/internal/domain/connection"
	"agenthub/services/channel-api/internal/utils/platformerrors"
)

// TelegramSender delivers mapped payloads through the Telegram Bot API.
type TelegramSender struct {
	httpClient *resty.Client
	log        zerolog.Logger
}

// telegramResponse is the envelope every Bot API call returns.
type telegramResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

func NewTelegramSender(baseURL string, timeout time.Duration, log zerolog.Logger) *TelegramSender {
	return &TelegramSender{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(timeout),
		log: log.With().Str("component", "telegram-transport").Logger(),
	}
}

// Send posts the payload to /bot<token>/<method>. The bot token never
// appears in logs; only the method and chat are recorded.
func (t *TelegramSender) Send(ctx context.Context, creds *connection.Credentials, payload map[string]any) error {
	if creds == nil || creds.BotToken == "" {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeCredential,
			"telegram send requires a bot token",
			nil,
			"c7d8e9f0-1212-4c8d-4e9f-a0b1c2d3e4f5",
		)
	}

	method, _ := payload["method"].(string)
	if method == "" {
		method = "sendMessage"
	}

	body := make(map[string]any, len(payload))
	for k, v := range payload {
		if k == "method" {
			continue
		}
		body[k] = v
	}

	var result telegramResponse
	resp, err := t.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&result).
		Post("/bot" + creds.BotToken + "/" + method)
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"telegram request failed",
			err,
			"d8e9f0a1-2323-4d9e-5f0a-b1c2d3e4f5a6",
		)
	}
	if resp.IsError() || !result.OK {
		detail := result.Description
		if detail == "" {
			detail = resp.Status()
		}
		t.log.Warn().
			Str("method", method).
			Int("error_code", result.ErrorCode).
			Msg("telegram rejected send")
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			"telegram send rejected: "+detail,
			nil,
			"e9f0a1b2-3434-4e0f-6a1b-c2d3e4f5a6b7",
		)
	}

	return nil
}
