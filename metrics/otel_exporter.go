package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go2gg/edge/webhook"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

/* OTelExporter records the service's metrics and serves them in Prometheus format
 * It implements the gateway, webhook and dunning Recorder interfaces. A nil *OTelExporter
 * records nothing.
 */
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	collector     Collector
	handler       http.Handler

	meter                metric.Meter
	rateLimitDecisions   metric.Int64Counter
	webhookDeliveries    metric.Int64Counter
	webhookDuration      metric.Float64Histogram
	dunningReminders     metric.Int64Counter
	dunningCancellations metric.Int64Counter

	rateLimitWindowsGauge metric.Int64ObservableGauge
	subscriptionsGauge    metric.Int64ObservableGauge
	openDunningGauge      metric.Int64ObservableGauge
}

// NewOTelExporter creates the exporter. With a nil registry the default Prometheus registry is used.
// collector may be nil, in which case no state gauges are reported.
func NewOTelExporter(serviceName string, collector Collector, registry *promclient.Registry) (*OTelExporter, error) {
	var opts []prometheus.Option
	handler := promhttp.Handler()
	if registry != nil {
		opts = append(opts, prometheus.WithRegisterer(registry))
		handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	if registry == nil {
		otel.SetMeterProvider(meterProvider)
	}

	meter := meterProvider.Meter(
		serviceName,
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		collector:     collector,
		handler:       handler,
		meter:         meter,
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates and registers all OpenTelemetry metric instruments
func (oe *OTelExporter) registerInstruments() error {
	var err error

	oe.rateLimitDecisions, err = oe.meter.Int64Counter(
		"ratelimit.decisions",
		metric.WithDescription("Rate limit decisions per policy and outcome"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return fmt.Errorf("creating rate limit decisions counter: %w", err)
	}

	oe.webhookDeliveries, err = oe.meter.Int64Counter(
		"webhook.deliveries",
		metric.WithDescription("Webhook delivery attempts per event and status"),
		metric.WithUnit("{deliveries}"),
	)
	if err != nil {
		return fmt.Errorf("creating webhook deliveries counter: %w", err)
	}

	oe.webhookDuration, err = oe.meter.Float64Histogram(
		"webhook.delivery.duration",
		metric.WithDescription("Duration of webhook delivery attempts"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("creating webhook duration histogram: %w", err)
	}

	oe.dunningReminders, err = oe.meter.Int64Counter(
		"dunning.reminders",
		metric.WithDescription("Dunning reminder emails per schedule day and outcome"),
		metric.WithUnit("{emails}"),
	)
	if err != nil {
		return fmt.Errorf("creating dunning reminders counter: %w", err)
	}

	oe.dunningCancellations, err = oe.meter.Int64Counter(
		"dunning.cancellations",
		metric.WithDescription("Subscriptions canceled after the grace period, per outcome"),
		metric.WithUnit("{subscriptions}"),
	)
	if err != nil {
		return fmt.Errorf("creating dunning cancellations counter: %w", err)
	}

	if oe.collector == nil {
		return nil
	}

	oe.rateLimitWindowsGauge, err = oe.meter.Int64ObservableGauge(
		"ratelimit.windows",
		metric.WithDescription("Keys with a live sliding window"),
		metric.WithUnit("{keys}"),
	)
	if err != nil {
		return fmt.Errorf("creating rate limit windows gauge: %w", err)
	}

	oe.subscriptionsGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.subscriptions",
		metric.WithDescription("Webhook subscriptions per state"),
		metric.WithUnit("{subscriptions}"),
	)
	if err != nil {
		return fmt.Errorf("creating subscriptions gauge: %w", err)
	}

	oe.openDunningGauge, err = oe.meter.Int64ObservableGauge(
		"dunning.open",
		metric.WithDescription("Dunning records neither resolved nor canceled"),
		metric.WithUnit("{records}"),
	)
	if err != nil {
		return fmt.Errorf("creating open dunning gauge: %w", err)
	}

	_, err = oe.meter.RegisterCallback(oe.observeState,
		oe.rateLimitWindowsGauge, oe.subscriptionsGauge, oe.openDunningGauge)
	if err != nil {
		return fmt.Errorf("registering state callback: %w", err)
	}
	return nil
}

// observeState collects one snapshot per scrape and reports every gauge from it
func (oe *OTelExporter) observeState(ctx context.Context, o metric.Observer) error {
	snap, err := oe.collector.Collect(ctx)
	if err != nil {
		return err
	}

	o.ObserveInt64(oe.rateLimitWindowsGauge, snap.RateLimitWindows)
	o.ObserveInt64(oe.subscriptionsGauge, snap.ActiveSubscriptions, metric.WithAttributes(
		attribute.String("state", "active"),
	))
	o.ObserveInt64(oe.subscriptionsGauge, snap.DisabledSubscriptions, metric.WithAttributes(
		attribute.String("state", "disabled"),
	))
	o.ObserveInt64(oe.openDunningGauge, snap.OpenDunningRecords)
	return nil
}

// RecordRateLimitDecision implements gateway.Recorder
func (oe *OTelExporter) RecordRateLimitDecision(ctx context.Context, policy, outcome string) {
	if oe == nil {
		return
	}
	oe.rateLimitDecisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("policy", policy),
		attribute.String("outcome", outcome),
	))
}

// RecordWebhookDelivery implements webhook.Recorder
func (oe *OTelExporter) RecordWebhookDelivery(ctx context.Context, event string, status webhook.Status, duration time.Duration) {
	if oe == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("status", status.String()),
	)
	oe.webhookDeliveries.Add(ctx, 1, attrs)
	oe.webhookDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordDunningReminder implements dunning.Recorder
func (oe *OTelExporter) RecordDunningReminder(ctx context.Context, day int, sent bool) {
	if oe == nil {
		return
	}
	oe.dunningReminders.Add(ctx, 1, metric.WithAttributes(
		attribute.String("day", strconv.Itoa(day)),
		attribute.String("outcome", outcome(sent)),
	))
}

// RecordDunningCancellation implements dunning.Recorder
func (oe *OTelExporter) RecordDunningCancellation(ctx context.Context, canceled bool) {
	if oe == nil {
		return
	}
	oe.dunningCancellations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome(canceled)),
	))
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// ServeHTTP serves Prometheus-formatted metrics on the given HTTP handler
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return oe.handler
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe != nil && oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
