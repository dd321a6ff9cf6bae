package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/sijagad/internal/config"
)

// ChatActionTyping shows "typing..." in the chat until the next message arrives.
const ChatActionTyping = "typing"

// Client talks to the Telegram Bot API over fasthttp.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	token   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewClient(cfg config.TelegramConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http: &fasthttp.Client{
			Name:         "sijagad-bot",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		token:   cfg.BotToken,
		timeout: timeout,
		logger:  logger,
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type chatActionRequest struct {
	ChatID string `json:"chat_id"`
	Action string `json:"action"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage posts Markdown text to chatID.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{ChatID: chatID, Text: text, ParseMode: "Markdown"})
}

// SendChatAction posts a transient chat action such as ChatActionTyping.
func (c *Client) SendChatAction(ctx context.Context, chatID, action string) error {
	return c.call(ctx, "sendChatAction", chatActionRequest{ChatID: chatID, Action: action})
}

func (c *Client) call(ctx context.Context, method string, payload interface{}) error {
	if c.token == "" {
		return fmt.Errorf("telegram: bot token not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}

	var decoded apiResponse
	_ = json.Unmarshal(resp.Body(), &decoded)
	if resp.StatusCode() != fasthttp.StatusOK || !decoded.OK {
		return fmt.Errorf("telegram %s: status %d: %s", method, resp.StatusCode(), decoded.Description)
	}

	c.logger.Debug("telegram call succeeded", zap.String("method", method))
	return nil
}
