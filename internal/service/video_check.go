package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrVideoUnreachable = errors.New("video is not reachable")

// VideoChecker verifies that a lesson video can be fetched before the
// client starts playback.
type VideoChecker struct {
	client *resty.Client
	debug  bool
}

// NewVideoChecker creates a checker issuing HEAD requests with the given
// timeout
func NewVideoChecker(timeout time.Duration, debug bool) *VideoChecker {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(1).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("User-Agent", "soundsteps-video-check")

	return &VideoChecker{client: client, debug: debug}
}

// Check performs a HEAD request against url. Any transport error or a
// status of 400 and above is reported as ErrVideoUnreachable.
func (c *VideoChecker) Check(ctx context.Context, url string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Head(url)
	if err != nil {
		log.Printf("Video check failed for %s: %v", url, err)
		return fmt.Errorf("%w: %v", ErrVideoUnreachable, err)
	}

	if c.debug {
		log.Printf("[DEBUG] Video check %s: status=%d time=%s", url, resp.StatusCode(), resp.Time())
	}

	if resp.StatusCode() >= 400 {
		return fmt.Errorf("%w: status %d", ErrVideoUnreachable, resp.StatusCode())
	}
	return nil
}
