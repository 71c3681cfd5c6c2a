package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SouzaGabriel26/onde-ir/pkg/mailer"
)

type disposition int

const (
	ack disposition = iota
	drop
	retry
)

type worker struct {
	sender  mailer.Sender
	logger  *logrus.Logger
	timeout time.Duration
}

// handle delivers one queued job. Jobs that can never be sent are dropped;
// transient send failures go back on the queue.
func (w *worker) handle(ctx context.Context, body []byte) disposition {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.logger.WithError(err).Warn("bad message")
		return drop
	}

	c, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	err := mailer.Deliver(c, w.sender, job)
	switch {
	case err == nil:
		w.logger.WithField("template", job.Template).Debug("email sent")
		return ack
	case errors.Is(err, mailer.ErrMalformedJob):
		w.logger.WithError(err).WithField("template", job.Template).Warn("dropping email job")
		return drop
	default:
		w.logger.WithError(err).WithField("template", job.Template).Warn("send failed, requeueing")
		return retry
	}
}
