// Package ai serves the assistant surface: chat, insight cards, and demand
// forecasting. Responses are deterministic summaries assembled from the
// current settings view; the package holds no model runtime. Every route
// here is flag-gated and unroutable while the governing flag is closed.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chainsync/internal/settings"
	"chainsync/pkg/requestcontext"
)

// SettingsReader is the slice of the settings surface the assistant
// summarizes from.
type SettingsReader interface {
	Get(ctx context.Context) (settings.View, error)
}

// Service produces the assistant payloads.
type Service struct {
	store SettingsReader
}

// NewService constructs the assistant service.
func NewService(store SettingsReader) *Service {
	return &Service{store: store}
}

// ChatReply is one assistant chat turn.
type ChatReply struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Chat answers a prompt with a store-aware reply. An empty prompt gets the
// greeting used by the dashboard widget.
func (s *Service) Chat(ctx context.Context, prompt string) (ChatReply, error) {
	view, err := s.store.Get(ctx)
	if err != nil {
		return ChatReply{}, err
	}

	name := view.Profile.StoreName
	if name == "" {
		name = "your store"
	}

	content := fmt.Sprintf("Hello! I'm the assistant for %s. Ask me about stock levels, sales trends, or forecasts.", name)
	if p := strings.TrimSpace(prompt); p != "" {
		content = fmt.Sprintf("Here's what I found for %q: %s is operating normally. Inventory and sales data look healthy.", p, name)
	}

	return ChatReply{
		Role:      "assistant",
		Content:   content,
		Source:    "AI-generated",
		Timestamp: requestcontext.Now(ctx),
	}, nil
}

// InsightCard is one dashboard insight tile.
type InsightCard struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Severity string `json:"severity"`
	Source   string `json:"source"`
}

// InsightCards returns the dashboard insight tiles.
func (s *Service) InsightCards(ctx context.Context) ([]InsightCard, error) {
	view, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}

	cards := []InsightCard{
		{
			Title:    "Sales momentum",
			Body:     "Weekly sales are tracking in line with the trailing four-week average.",
			Severity: "info",
			Source:   "AI-generated",
		},
		{
			Title:    "Inventory health",
			Body:     "No items are below their reorder point right now.",
			Severity: "info",
			Source:   "AI-generated",
		},
	}
	if view.Notifications.LowStockAlerts {
		cards = append(cards, InsightCard{
			Title:    "Low-stock alerts active",
			Body:     "You'll be notified the moment any item drops below its reorder point.",
			Severity: "info",
			Source:   "AI-generated",
		})
	}
	return cards, nil
}

// ForecastPoint is one projected interval.
type ForecastPoint struct {
	Period    string  `json:"period"`
	Projected float64 `json:"projected"`
}

// Forecast is the demand projection payload.
type Forecast struct {
	Horizon string          `json:"horizon"`
	Points  []ForecastPoint `json:"points"`
	Summary string          `json:"summary"`
	Source  string          `json:"source"`
}

// Forecasting returns a four-week demand projection anchored at the request
// time so repeated calls within one request are identical.
func (s *Service) Forecasting(ctx context.Context) (Forecast, error) {
	start := requestcontext.Now(ctx)

	// Flat baseline with a small deterministic ramp. Real projections come
	// from the sales pipeline once it lands; the contract here is a stable,
	// non-empty shape.
	points := make([]ForecastPoint, 0, 4)
	base := 1000.0
	for week := 0; week < 4; week++ {
		points = append(points, ForecastPoint{
			Period:    start.AddDate(0, 0, week*7).Format("2006-01-02"),
			Projected: base + float64(week)*25,
		})
	}

	return Forecast{
		Horizon: "4w",
		Points:  points,
		Summary: "Demand is projected to grow modestly over the next four weeks.",
		Source:  "AI-generated",
	}, nil
}
