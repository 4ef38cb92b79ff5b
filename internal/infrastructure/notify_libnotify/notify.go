package notify_libnotify

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/davarch/pipeline-watcher/internal/domain"
)

type Notifier struct {
	soft bool
	opts map[domain.NotificationKind]Options
	run  func(ctx context.Context, name string, args ...string) error

	retries    uint64
	retryDelay time.Duration
}

// New returns a notifier that reports notify-send failures; NewSoft swallows them.
func New() *Notifier     { return newNotifier(false) }
func NewSoft() *Notifier { return newNotifier(true) }

func newNotifier(soft bool) *Notifier {
	return &Notifier{
		soft: soft,
		opts: map[domain.NotificationKind]Options{
			domain.NotificationFailed: {Urgency: "critical"},
			domain.NotificationFixed:  {Urgency: "normal", Expire: 10 * time.Second},
		},
		run:        runCommand,
		retries:    2,
		retryDelay: 200 * time.Millisecond,
	}
}

type Options struct {
	Urgency string
	Expire  time.Duration
}

func (n *Notifier) Notify(ctx context.Context, ev domain.NotificationEvent) error {
	return n.NotifyWith(ctx, ev.Title, ev.Message, ev.URL, n.opts[ev.Kind])
}

// NotifyWith shows one notification, retrying notify-send a few times since
// the notification daemon may still be starting with the session.
func (n *Notifier) NotifyWith(ctx context.Context, title, body, url string, opt Options) error {
	if strings.TrimSpace(url) != "" {
		if body == "" {
			body = url
		} else {
			body = body + "\n" + url
		}
	}

	args := []string{"--app-name=pipeline-watcher"}
	if opt.Urgency != "" {
		args = append(args, "--urgency="+opt.Urgency)
	}
	if opt.Expire > 0 {
		ms := strconv.Itoa(int(opt.Expire / time.Millisecond))
		args = append(args, "--expire-time="+ms)
	}
	args = append(args, title, body)

	op := func() error { return n.run(ctx, "notify-send", args...) }
	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(n.retryDelay), n.retries)

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if n.soft {
			return nil
		}
		return err
	}

	return nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
