package fetcher

import (
	"context"
	"log/slog"
	"os/exec"
	"time"

	"ewintr.nl/vidfeed/model"
)

// YtDlp resolves video durations by shelling out to yt-dlp. Calls are
// best-effort: a failed, empty or timed-out invocation reports the
// duration as unresolved so a later pass can retry it.
type YtDlp struct {
	cmd     string
	timeout time.Duration
	logger  *slog.Logger
}

func NewYtDlp(cmd string, timeout time.Duration, logger *slog.Logger) *YtDlp {
	return &YtDlp{
		cmd:     cmd,
		timeout: timeout,
		logger:  logger,
	}
}

func (y *YtDlp) Duration(ctx context.Context, link string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, y.cmd, "--get-duration", link).Output()
	if err != nil {
		y.logger.Error("failed to resolve duration", slog.String("link", link), slog.String("error", err.Error()))
		return "", false
	}

	label, ok := model.NormalizeDuration(string(out))
	if !ok {
		return "", false
	}

	return label, true
}
