package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/qualifier/internal/session"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

// maxAnswerLen truncates long answers in the channel message.
const maxAnswerLen = 140

// Poster announces hot leads in a Slack channel.
type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// NotifyHotLead posts a summary of a saved hot-deal call record.
func (p *Poster) NotifyHotLead(ctx context.Context, rec session.CallRecord) error {
	text := formatHotLead(rec)

	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
			{
				"type": "context",
				"elements": []map[string]any{
					{
						"type": "mrkdwn",
						"text": fmt.Sprintf("Record `%s` | Next: %s", rec.ID, rec.NextAction),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return fmt.Errorf("slack error: %s", slackResp.Error)
	}

	p.logger.Info("posted hot lead to slack", "ts", slackResp.TS, "client_id", rec.ClientID, "score", rec.Score)
	return nil
}

func formatHotLead(rec session.CallRecord) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, ":fire: *Hot lead:* %s (score %d, %s)\n", rec.ClientID, rec.Score, rec.Status)
	fmt.Fprintf(&sb, "*Rep:* %s\n", rec.RepID)

	ids := make([]string, 0, len(rec.Answers))
	for id, a := range rec.Answers {
		if strings.TrimSpace(a) != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	if len(ids) == 0 {
		sb.WriteString("_No answers recorded._")
		return sb.String()
	}

	sb.WriteString("\n")
	for _, id := range ids {
		fmt.Fprintf(&sb, "• *%s:* %s\n", id, truncate(strings.TrimSpace(rec.Answers[id]), maxAnswerLen))
	}
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
