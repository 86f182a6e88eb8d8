// Package standingspublisher uploads the results artifacts (workbook, prize
// chart and JSON summary) after competitions are decided.
package standingspublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"time"

	standingsdomain "github.com/Black-And-White-Club/tripscore/app/modules/standings/domain"
	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
)

const (
	KeyWorkbook = "results.xlsx"
	KeyChart    = "prizes.png"
	KeySummary  = "results.json"

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Source renders the artifacts from the current standings.
type Source interface {
	Results() standingsdomain.Results
	ExportWorkbook(ctx context.Context) ([]byte, error)
	PrizeChartPNG(ctx context.Context) ([]byte, error)
}

// Summary is the JSON document uploaded next to the workbook.
type Summary struct {
	Reason      string                  `json:"reason"`
	PublishedAt time.Time               `json:"published_at"`
	Results     standingsdomain.Results `json:"results"`
}

type Publisher struct {
	source   Source
	uploader Uploader
	prefix   string
	logger   *slog.Logger
	now      func() time.Time
}

func NewPublisher(source Source, uploader Uploader, prefix string, logger *slog.Logger) *Publisher {
	return &Publisher{
		source:   source,
		uploader: uploader,
		prefix:   prefix,
		logger:   logger,
		now:      time.Now,
	}
}

// PublishResults overwrites the three artifacts under the prefix. A failed
// upload aborts the rest; the next publish rewrites everything.
func (p *Publisher) PublishResults(ctx context.Context, reason string) error {
	workbook, err := p.source.ExportWorkbook(ctx)
	if err != nil {
		return fmt.Errorf("failed to export workbook: %w", err)
	}
	chart, err := p.source.PrizeChartPNG(ctx)
	if err != nil {
		return fmt.Errorf("failed to render prize chart: %w", err)
	}
	summary, err := json.MarshalIndent(Summary{
		Reason:      reason,
		PublishedAt: p.now().UTC(),
		Results:     p.source.Results(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	uploads := []struct {
		key, contentType string
		body             []byte
	}{
		{KeyWorkbook, contentTypeXLSX, workbook},
		{KeyChart, "image/png", chart},
		{KeySummary, "application/json", summary},
	}
	for _, u := range uploads {
		if err := p.uploader.Upload(ctx, p.Key(u.key), u.contentType, u.body); err != nil {
			return err
		}
	}

	p.logger.InfoContext(ctx, "Published results artifacts",
		attr.ExtractCorrelationID(ctx),
		attr.String("prefix", p.prefix),
		attr.String("reason", reason),
	)
	return nil
}

func (p *Publisher) Key(name string) string {
	return path.Join(p.prefix, name)
}
