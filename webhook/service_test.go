package webhook_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/go2gg/edge/internal/clock"
	"github.com/go2gg/edge/webhook"
	"github.com/go2gg/edge/webhook/memory"
	"github.com/go2gg/edge/webhook/mocks"
	"github.com/go2gg/edge/webhook/payload"
	"github.com/go2gg/edge/webhook/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	now     = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	userA   = webhook.Scope{UserID: "user_a"}
	orgA    = webhook.Scope{UserID: "user_a", OrganizationID: "org_a"}
	invoice = map[string]any{"invoiceId": "in_1", "amount": 4900}
)

// stubSender answers by URL and records every request it receives
type stubSender struct {
	mu       sync.Mutex
	outcomes map[string]webhook.Outcome
	requests []webhook.Request
}

func newStubSender() *stubSender {
	return &stubSender{outcomes: make(map[string]webhook.Outcome)}
}

func (s *stubSender) respond(url string, out webhook.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[url] = out
}

func (s *stubSender) Send(_ context.Context, req webhook.Request) webhook.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if out, ok := s.outcomes[req.URL]; ok {
		return out
	}
	return webhook.Outcome{StatusCode: http.StatusOK, Response: "ok", Duration: 5 * time.Millisecond, Success: true}
}

func (s *stubSender) sent() []webhook.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]webhook.Request(nil), s.requests...)
}

var (
	ok200    = webhook.Outcome{StatusCode: 200, Response: "ok", Success: true}
	fail500  = webhook.Outcome{StatusCode: 500, Response: "boom"}
	netError = webhook.Outcome{StatusCode: 0, Response: "connection refused", Err: errors.New("connection refused")}
)

func setup(t *testing.T) (*webhook.Service, *memory.Repository, *stubSender) {
	t.Helper()
	repo := memory.NewRepository()
	sender := newStubSender()
	svc := webhook.NewService(repo, sender, webhook.WithClock(clock.NewFake(now)))
	return svc, repo, sender
}

func create(t *testing.T, svc *webhook.Service, scope webhook.Scope, url string, events ...string) webhook.Subscription {
	t.Helper()
	sub, err := svc.Create(context.Background(), scope, webhook.CreateInput{URL: url, Events: events})
	require.NoError(t, err)
	return sub
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("success - unsubscribed event attempts nothing", func(t *testing.T) {
		svc, repo, sender := setup(t)
		create(t, svc, userA, "https://a.example.com/hook", "invoice.failed")

		summary, err := svc.Dispatch(ctx, userA, "invoice.paid", invoice)
		require.NoError(t, err)

		assert.Equal(t, 0, summary.Attempted)
		assert.Empty(t, sender.sent())
		assert.Equal(t, 0, repo.DeliveryCount())
	})

	t.Run("success - signed request with all headers", func(t *testing.T) {
		svc, _, sender := setup(t)
		sub := create(t, svc, userA, "https://a.example.com/hook", "invoice.paid")

		summary, err := svc.Dispatch(ctx, userA, "invoice.paid", invoice)
		require.NoError(t, err)
		require.Equal(t, 1, summary.Succeeded)

		reqs := sender.sent()
		require.Len(t, reqs, 1)
		req := reqs[0]
		assert.Equal(t, sub.URL, req.URL)
		assert.Equal(t, "application/json", req.Headers["Content-Type"])
		assert.Equal(t, webhook.UserAgent, req.Headers["User-Agent"])
		assert.Equal(t, "invoice.paid", req.Headers[webhook.HeaderEvent])
		assert.Equal(t, summary.Deliveries[0].ID, req.Headers[webhook.HeaderID])
		assert.Equal(t, "2026-03-01T12:00:00.000Z", req.Headers[webhook.HeaderTimestamp])
		assert.True(t, strings.HasPrefix(req.Headers[webhook.HeaderSignature], "sha256="))
		assert.True(t, signature.Verify(sub.Secret, req.Body, req.Headers[webhook.HeaderSignature]))

		env, err := payload.Parse(req.Body)
		require.NoError(t, err)
		assert.Equal(t, "invoice.paid", env.Event)
		assert.JSONEq(t, `{"invoiceId":"in_1","amount":4900}`, string(env.Data))
	})

	t.Run("success - wildcard and scope resolution", func(t *testing.T) {
		svc, _, sender := setup(t)
		create(t, svc, userA, "https://user.example.com/hook", "*")
		create(t, svc, orgA, "https://org.example.com/hook", "*")
		create(t, svc, webhook.Scope{UserID: "user_b"}, "https://other.example.com/hook", "*")

		summary, err := svc.Dispatch(ctx, orgA, "link.created", map[string]string{"slug": "abc"})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Attempted)
		require.Len(t, sender.sent(), 1)
		assert.Equal(t, "https://org.example.com/hook", sender.sent()[0].URL)

		summary, err = svc.Dispatch(ctx, userA, "link.created", map[string]string{"slug": "abc"})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Attempted)
		assert.Equal(t, "https://user.example.com/hook", sender.sent()[1].URL)
	})

	t.Run("success - outcomes are independent", func(t *testing.T) {
		svc, repo, sender := setup(t)
		good := create(t, svc, userA, "https://good.example.com", "invoice.paid")
		bad := create(t, svc, userA, "https://bad.example.com", "invoice.paid")
		down := create(t, svc, userA, "https://down.example.com", "invoice.paid")
		sender.respond(bad.URL, fail500)
		sender.respond(down.URL, netError)

		summary, err := svc.Dispatch(ctx, userA, "invoice.paid", invoice)
		require.NoError(t, err)
		assert.Equal(t, 3, summary.Attempted)
		assert.Equal(t, 1, summary.Succeeded)
		assert.Equal(t, 2, summary.Failed)
		assert.Equal(t, 3, repo.DeliveryCount())

		g, _ := repo.GetSubscription(ctx, good.ID)
		b, _ := repo.GetSubscription(ctx, bad.ID)
		d, _ := repo.GetSubscription(ctx, down.ID)
		assert.Equal(t, 0, g.FailureCount)
		assert.Equal(t, 200, g.LastStatus)
		assert.Equal(t, 1, b.FailureCount)
		assert.Equal(t, 500, b.LastStatus)
		assert.Equal(t, 1, d.FailureCount)
		assert.Equal(t, 0, d.LastStatus)

		byWebhook := map[string]webhook.Delivery{}
		for _, del := range summary.Deliveries {
			byWebhook[del.WebhookID] = del
		}
		assert.Equal(t, 0, byWebhook[down.ID].StatusCode)
		assert.Equal(t, "connection refused", byWebhook[down.ID].Response)
		assert.Equal(t, 1, byWebhook[down.ID].Attempts)
	})

	t.Run("success - ten consecutive failures disable the subscription", func(t *testing.T) {
		svc, repo, sender := setup(t)
		sub := create(t, svc, userA, "https://flaky.example.com", "invoice.paid")
		sender.respond(sub.URL, fail500)

		for i := 1; i <= 10; i++ {
			summary, err := svc.Dispatch(ctx, userA, "invoice.paid", invoice)
			require.NoError(t, err)
			require.Equal(t, 1, summary.Attempted, "dispatch %d", i)

			got, _ := repo.GetSubscription(ctx, sub.ID)
			assert.Equal(t, i, got.FailureCount)
			assert.Equal(t, i < 10, got.IsActive, "after failure %d", i)
		}

		last, err := repo.ListDeliveries(ctx, sub.ID, webhook.DeliveryFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, last, 1)
		assert.False(t, last[0].Success)
		assert.Equal(t, 10, repo.DeliveryCount())

		summary, err := svc.Dispatch(ctx, userA, "invoice.paid", invoice)
		require.NoError(t, err)
		assert.Equal(t, 0, summary.Attempted)
		assert.Equal(t, 10, repo.DeliveryCount())
	})

	t.Run("success - one success resets the failure streak", func(t *testing.T) {
		svc, repo, sender := setup(t)
		sub := create(t, svc, userA, "https://recovering.example.com", "invoice.paid")
		sender.respond(sub.URL, fail500)
		for i := 0; i < 7; i++ {
			_, err := svc.Dispatch(ctx, userA, "invoice.paid", invoice)
			require.NoError(t, err)
		}
		got, _ := repo.GetSubscription(ctx, sub.ID)
		require.Equal(t, 7, got.FailureCount)

		sender.respond(sub.URL, ok200)
		_, err := svc.Dispatch(ctx, userA, "invoice.paid", invoice)
		require.NoError(t, err)

		got, _ = repo.GetSubscription(ctx, sub.ID)
		assert.Equal(t, 0, got.FailureCount)
		assert.True(t, got.IsActive)
		require.NotNil(t, got.LastTriggeredAt)
		assert.Equal(t, now, *got.LastTriggeredAt)
	})

	t.Run("success - response stored truncated", func(t *testing.T) {
		svc, repo, sender := setup(t)
		sub := create(t, svc, userA, "https://verbose.example.com", "invoice.paid")
		sender.respond(sub.URL, webhook.Outcome{StatusCode: 400, Response: strings.Repeat("x", 5000)})

		_, err := svc.Dispatch(ctx, userA, "invoice.paid", invoice)
		require.NoError(t, err)

		rows, _ := repo.ListDeliveries(ctx, sub.ID, webhook.DeliveryFilter{})
		require.Len(t, rows, 1)
		assert.Len(t, rows[0].Response, webhook.ResponseLimit)
	})

	t.Run("error - subscription lookup fails", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		repo.On("ListActive", ctx, userA).Return(nil, errors.New("db down"))
		svc := webhook.NewService(repo, mocks.NewSender(t))

		_, err := svc.Dispatch(ctx, userA, "invoice.paid", invoice)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
	})

	t.Run("success - bookkeeping errors are not returned", func(t *testing.T) {
		sub := webhook.Subscription{ID: "wh_1", UserID: userA.UserID, URL: "https://x.example.com", Events: []string{"*"}, IsActive: true, Secret: "whsec_x"}
		repo := mocks.NewRepository(t)
		repo.On("ListActive", ctx, userA).Return([]webhook.Subscription{sub}, nil)
		repo.On("RecordFailure", ctx, "wh_1", 503, now, webhook.MaxConsecutiveFailures).Return(0, false, errors.New("db down"))
		repo.On("InsertDelivery", ctx, webhook.MatchDelivery(func(d webhook.Delivery) bool {
			return d.WebhookID == "wh_1" && d.StatusCode == 503 && !d.Success
		})).Return(errors.New("db down"))
		sender := mocks.NewSender(t)
		sender.On("Send", ctx, webhook.MatchRequest(func(r webhook.Request) bool {
			return r.URL == sub.URL && r.Headers[webhook.HeaderEvent] == "invoice.paid"
		})).Return(webhook.Outcome{StatusCode: 503})
		svc := webhook.NewService(repo, sender, webhook.WithClock(clock.NewFake(now)))

		summary, err := svc.Dispatch(ctx, userA, "invoice.paid", invoice)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failed)
	})

	t.Run("error - invalid event name", func(t *testing.T) {
		svc, _, _ := setup(t)
		_, err := svc.Dispatch(ctx, userA, "not a name", invoice)
		assert.ErrorIs(t, err, webhook.ErrInvalid)
	})

	t.Run("error - empty scope", func(t *testing.T) {
		svc, _, _ := setup(t)
		_, err := svc.Dispatch(ctx, webhook.Scope{}, "invoice.paid", invoice)
		assert.ErrorIs(t, err, webhook.ErrInvalid)
	})
}

func TestPublish(t *testing.T) {
	svc, repo, _ := setup(t)
	create(t, svc, userA, "https://a.example.com/hook", "invoice.paid")

	svc.Publish(userA, "invoice.paid", invoice)

	assert.Eventually(t, func() bool { return repo.DeliveryCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestTest(t *testing.T) {
	ctx := context.Background()

	t.Run("success - no bookkeeping and no audit row", func(t *testing.T) {
		svc, repo, sender := setup(t)
		sub := create(t, svc, userA, "https://a.example.com/hook", "invoice.paid")
		sender.respond(sub.URL, webhook.Outcome{StatusCode: 500, Response: "boom", Duration: time.Second})

		out, err := svc.Test(ctx, userA, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, 500, out.StatusCode)
		assert.Equal(t, "boom", out.Response)
		assert.Equal(t, time.Second, out.Duration)
		assert.False(t, out.Success)

		got, _ := repo.GetSubscription(ctx, sub.ID)
		assert.Equal(t, 0, got.FailureCount)
		assert.Equal(t, 0, repo.DeliveryCount())

		req := sender.sent()[0]
		assert.Equal(t, webhook.TestEvent, req.Headers[webhook.HeaderEvent])
		assert.True(t, signature.Verify(sub.Secret, req.Body, req.Headers[webhook.HeaderSignature]))
	})

	t.Run("error - other tenant's subscription", func(t *testing.T) {
		svc, _, _ := setup(t)
		sub := create(t, svc, userA, "https://a.example.com/hook", "*")

		_, err := svc.Test(ctx, webhook.Scope{UserID: "user_b"}, sub.ID)
		assert.ErrorIs(t, err, webhook.ErrNotFound)
	})
}

func TestRedelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("success - failed attempt schedules redelivery with backoff", func(t *testing.T) {
		repo := memory.NewRepository()
		sender := newStubSender()
		retry := mocks.NewRetryScheduler(t)
		svc := webhook.NewService(repo, sender,
			webhook.WithClock(clock.NewFake(now)),
			webhook.WithRetryScheduler(retry, 3, time.Minute),
		)
		sub := create(t, svc, userA, "https://down.example.com", "invoice.paid")
		sender.respond(sub.URL, fail500)

		retry.On("ScheduleRedelivery", ctx, mock.Anything, 2, time.Minute).Return(nil).Once()
		summary, err := svc.Dispatch(ctx, userA, "invoice.paid", invoice)
		require.NoError(t, err)
		first := summary.Deliveries[0]

		retry.On("ScheduleRedelivery", ctx, mock.Anything, 3, 2*time.Minute).Return(nil).Once()
		require.NoError(t, svc.Redeliver(ctx, first.ID, 2))

		rows, _ := repo.ListDeliveries(ctx, sub.ID, webhook.DeliveryFilter{})
		require.Len(t, rows, 2)
		second := rows[0]
		assert.Equal(t, 2, second.Attempts)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, string(first.Payload), string(second.Payload))

		reqs := sender.sent()
		assert.Equal(t, string(reqs[0].Body), string(reqs[1].Body))
		assert.NotEqual(t, reqs[0].Headers[webhook.HeaderID], reqs[1].Headers[webhook.HeaderID])

		retry.On("ScheduleRedelivery", ctx, mock.Anything, 4, 4*time.Minute).Return(nil).Once()
		require.NoError(t, svc.Redeliver(ctx, second.ID, 3))

		rows, _ = repo.ListDeliveries(ctx, sub.ID, webhook.DeliveryFilter{Limit: 1})
		require.NoError(t, svc.Redeliver(ctx, rows[0].ID, 4))
		retry.AssertNumberOfCalls(t, "ScheduleRedelivery", 3)
	})

	t.Run("success - disabled subscription is skipped", func(t *testing.T) {
		svc, repo, sender := setup(t)
		sub := create(t, svc, userA, "https://down.example.com", "invoice.paid")
		sender.respond(sub.URL, fail500)
		summary, err := svc.Dispatch(ctx, userA, "invoice.paid", invoice)
		require.NoError(t, err)

		for i := 0; i < 9; i++ {
			_, _, err := repo.RecordFailure(ctx, sub.ID, 500, now, webhook.MaxConsecutiveFailures)
			require.NoError(t, err)
		}

		require.NoError(t, svc.Redeliver(ctx, summary.Deliveries[0].ID, 2))
		assert.Len(t, sender.sent(), 1)
	})

	t.Run("success - deleted subscription is skipped", func(t *testing.T) {
		svc, _, sender := setup(t)
		sub := create(t, svc, userA, "https://down.example.com", "invoice.paid")
		sender.respond(sub.URL, fail500)
		summary, err := svc.Dispatch(ctx, userA, "invoice.paid", invoice)
		require.NoError(t, err)
		require.NoError(t, svc.Delete(ctx, userA, sub.ID))

		require.NoError(t, svc.Redeliver(ctx, summary.Deliveries[0].ID, 2))
		assert.Len(t, sender.sent(), 1)
	})

	t.Run("error - unknown delivery", func(t *testing.T) {
		svc, _, _ := setup(t)
		err := svc.Redeliver(ctx, "missing", 2)
		assert.ErrorIs(t, err, webhook.ErrNotFound)
	})
}

func TestSubscriptionManagement(t *testing.T) {
	ctx := context.Background()

	t.Run("success - create generates secret and dedupes events", func(t *testing.T) {
		svc, _, _ := setup(t)
		sub := create(t, svc, orgA, "https://a.example.com/hook", "invoice.paid", "invoice.paid", "*")

		assert.NoError(t, signature.ValidateSecret(sub.Secret))
		assert.Equal(t, []string{"invoice.paid", "*"}, sub.Events)
		assert.True(t, sub.IsActive)
		assert.Equal(t, "org_a", sub.OrganizationID)
		assert.Equal(t, now, sub.CreatedAt)
	})

	t.Run("error - validation rejects before any write", func(t *testing.T) {
		repo := mocks.NewRepository(t)
		svc := webhook.NewService(repo, mocks.NewSender(t))

		cases := []webhook.CreateInput{
			{URL: "", Events: []string{"invoice.paid"}},
			{URL: "ftp://a.example.com", Events: []string{"invoice.paid"}},
			{URL: "not a url", Events: []string{"invoice.paid"}},
			{URL: "https://a.example.com", Events: nil},
			{URL: "https://a.example.com", Events: []string{""}},
			{URL: "https://a.example.com", Events: []string{"invoice.*"}},
		}
		for _, in := range cases {
			_, err := svc.Create(ctx, userA, in)
			assert.ErrorIs(t, err, webhook.ErrInvalid, "input %+v", in)
		}
		repo.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
	})

	t.Run("success - list is scoped", func(t *testing.T) {
		svc, _, _ := setup(t)
		create(t, svc, userA, "https://a.example.com/1", "*")
		create(t, svc, userA, "https://a.example.com/2", "*")
		create(t, svc, orgA, "https://a.example.com/3", "*")

		subs, err := svc.List(ctx, userA)
		require.NoError(t, err)
		assert.Len(t, subs, 2)

		subs, err = svc.List(ctx, orgA)
		require.NoError(t, err)
		assert.Len(t, subs, 1)
	})

	t.Run("success - reactivate clears failures", func(t *testing.T) {
		svc, repo, _ := setup(t)
		sub := create(t, svc, userA, "https://a.example.com", "*")
		for i := 0; i < 10; i++ {
			_, _, err := repo.RecordFailure(ctx, sub.ID, 500, now, webhook.MaxConsecutiveFailures)
			require.NoError(t, err)
		}

		got, err := svc.Reactivate(ctx, userA, sub.ID)
		require.NoError(t, err)
		assert.True(t, got.IsActive)
		assert.Equal(t, 0, got.FailureCount)
	})

	t.Run("success - rotate secret", func(t *testing.T) {
		svc, _, _ := setup(t)
		sub := create(t, svc, userA, "https://a.example.com", "*")

		rotated, err := svc.RotateSecret(ctx, userA, sub.ID)
		require.NoError(t, err)
		assert.NotEqual(t, sub.Secret, rotated.Secret)
		assert.NoError(t, signature.ValidateSecret(rotated.Secret))
	})

	t.Run("success - deliveries filtered by status", func(t *testing.T) {
		svc, _, sender := setup(t)
		sub := create(t, svc, userA, "https://a.example.com", "*")
		_, err := svc.Dispatch(ctx, userA, "invoice.paid", invoice)
		require.NoError(t, err)
		sender.respond(sub.URL, fail500)
		_, err = svc.Dispatch(ctx, userA, "invoice.failed", invoice)
		require.NoError(t, err)

		failed, err := svc.ListDeliveries(ctx, userA, sub.ID, webhook.DeliveryFilter{Status: webhook.Failed})
		require.NoError(t, err)
		require.Len(t, failed, 1)
		assert.Equal(t, "invoice.failed", failed[0].Event)

		all, err := svc.ListDeliveries(ctx, userA, sub.ID, webhook.DeliveryFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("error - delete other tenant's subscription", func(t *testing.T) {
		svc, repo, _ := setup(t)
		sub := create(t, svc, userA, "https://a.example.com", "*")

		err := svc.Delete(ctx, orgA, sub.ID)
		assert.ErrorIs(t, err, webhook.ErrNotFound)
		_, err = repo.GetSubscription(ctx, sub.ID)
		assert.NoError(t, err)
	})

	t.Run("error - get missing", func(t *testing.T) {
		svc, _, _ := setup(t)
		_, err := svc.Get(ctx, userA, "missing")
		assert.True(t, webhook.IsNotFound(err))
	})
}

func TestParseStatus(t *testing.T) {
	s, err := webhook.ParseStatus("failed")
	require.NoError(t, err)
	assert.Equal(t, webhook.Failed, s)
	s, err = webhook.ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, webhook.Status(0), s)
	_, err = webhook.ParseStatus("pending")
	assert.ErrorIs(t, err, webhook.ErrInvalid)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", webhook.Truncate("abc", 5))
	assert.Equal(t, "ab", webhook.Truncate("abc", 2))
	assert.Equal(t, "éé", webhook.Truncate("ééé", 2))

	t.Run("success - invalid utf8 replaced and nul bytes dropped", func(t *testing.T) {
		got := webhook.Truncate("caf\xe9 \x00 gateway error", webhook.ResponseLimit)
		assert.Equal(t, "caf\uFFFD  gateway error", got)
		assert.True(t, utf8.ValidString(got))
		assert.NotContains(t, got, "\x00")
	})
}
