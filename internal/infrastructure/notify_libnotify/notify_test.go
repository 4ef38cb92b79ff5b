package notify_libnotify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/davarch/pipeline-watcher/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls [][]string
	fail  int
}

func (r *recorder) run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	if len(r.calls) <= r.fail {
		return errors.New("no daemon")
	}
	return nil
}

func testNotifier(soft bool, r *recorder) *Notifier {
	n := newNotifier(soft)
	n.run = r.run
	n.retryDelay = time.Millisecond
	return n
}

func TestNotify_FailedEvent(t *testing.T) {
	r := &recorder{}
	n := testNotifier(false, r)

	err := n.Notify(context.Background(), domain.NotificationEvent{
		Kind:    domain.NotificationFailed,
		Title:   "Pipeline Failed",
		Message: "site has failed",
		URL:     "https://bitbucket.org/acme/site/pipelines/results/4",
	})
	require.NoError(t, err)
	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{
		"notify-send",
		"--app-name=pipeline-watcher",
		"--urgency=critical",
		"Pipeline Failed",
		"site has failed\nhttps://bitbucket.org/acme/site/pipelines/results/4",
	}, r.calls[0])
}

func TestNotify_RetriesThenSucceeds(t *testing.T) {
	r := &recorder{fail: 2}
	n := testNotifier(false, r)

	require.NoError(t, n.Notify(context.Background(), domain.NotificationEvent{Kind: domain.NotificationFixed, Title: "Pipeline Fixed"}))
	assert.Len(t, r.calls, 3)
	assert.Contains(t, r.calls[0], "--expire-time=10000")
}

func TestNotify_GivesUp(t *testing.T) {
	r := &recorder{fail: 100}

	err := testNotifier(false, r).Notify(context.Background(), domain.NotificationEvent{Kind: domain.NotificationFailed})
	assert.Error(t, err)
	assert.Len(t, r.calls, 3)

	r = &recorder{fail: 100}
	assert.NoError(t, testNotifier(true, r).Notify(context.Background(), domain.NotificationEvent{Kind: domain.NotificationFailed}))
}
