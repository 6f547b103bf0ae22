package telegram

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// apiResponse is the envelope every Bot API method answers with.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient talks to the Bot API at baseURL (https://api.telegram.org in
// production).
func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	rc := resty.New().
		SetBaseURL(fmt.Sprintf("%s/bot%s", baseURL, token)).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Accept", "application/json")

	return &Client{http: rc, logger: logger}
}

type sendMessageReq struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// SendMessage posts plain text. Markdown is left off because patient names
// and free text routinely contain characters the parser rejects.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	var result apiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(sendMessageReq{ChatID: chatID, Text: text}).
		SetResult(&result).
		SetError(&result).
		Post("/sendMessage")

	return c.check("sendMessage", chatID, resp, err, result)
}

func (c *Client) SendDocument(ctx context.Context, chatID int64, data []byte, fileName, caption string) error {
	form := map[string]string{"chat_id": strconv.FormatInt(chatID, 10)}
	if caption != "" {
		form["caption"] = caption
	}

	var result apiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetFileReader("document", fileName, bytes.NewReader(data)).
		SetResult(&result).
		SetError(&result).
		Post("/sendDocument")

	return c.check("sendDocument", chatID, resp, err, result)
}

func (c *Client) check(method string, chatID int64, resp *resty.Response, err error, result apiResponse) error {
	if err != nil {
		c.logger.Error("Telegram request failed",
			zap.String("method", method),
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	if resp.IsError() || !result.OK {
		c.logger.Error("Telegram API returned error",
			zap.String("method", method),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("description", result.Description),
		)
		return fmt.Errorf("telegram %s returned status %s: %s", method, resp.Status(), result.Description)
	}
	return nil
}
