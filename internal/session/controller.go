package session

import (
	"context"
	"errors"

	"clusterview/internal/domain"
	"clusterview/internal/logging"
)

// Notifier shows blocking notifications to the user.
type Notifier interface {
	Alert(msg string)
}

// Controller drives a Session synchronously against a Backend. The TUI runs
// the same transitions asynchronously; the headless commands use this.
type Controller struct {
	backend domain.Backend
	state   *Session
	notify  Notifier
	logger  *logging.Logger
}

func NewController(backend domain.Backend, state *Session, notify Notifier, logger *logging.Logger) *Controller {
	return &Controller{backend: backend, state: state, notify: notify, logger: logger}
}

func (c *Controller) Session() *Session { return c.state }

// HandleFile selects u and runs the preview. A rejected file is reported
// through the notifier and ErrNotCSV is returned. Preview failures are
// recorded in the session's feature area and returned.
func (c *Controller) HandleFile(ctx context.Context, u domain.Upload) error {
	if err := c.state.SelectFile(u); err != nil {
		c.notify.Alert(MsgNotCSV)
		return err
	}
	ticket, err := c.state.BeginPreview()
	if err != nil {
		return err
	}
	cols, err := c.backend.Preview(ctx, ticket.Upload)
	if err != nil {
		c.logger.Error("", "preview %s: %v", u.Name, err)
		c.state.FailPreview(ticket.Token, err)
		return err
	}
	c.state.ApplyPreview(ticket.Token, cols)
	return nil
}

// Analyze runs one analysis with the current selection. Failures are
// reported through the notifier and returned.
func (c *Controller) Analyze(ctx context.Context) error {
	ticket, err := c.state.BeginAnalyze()
	if err != nil {
		if errors.Is(err, ErrNoFile) {
			c.notify.Alert(MsgNoFile)
		}
		return err
	}
	res, err := c.backend.Analyze(ctx, ticket.Request)
	if err == nil && res == nil {
		err = errors.New("empty analyze response")
	}
	if err != nil {
		c.logger.Error("", "analyze %s: %v", ticket.Request.Upload.Name, err)
		_, alert := c.state.FailAnalyze(ticket.Token, err)
		c.notify.Alert(alert)
		return err
	}
	if _, err := c.state.CompleteAnalyze(ticket.Token, *res); err != nil {
		c.logger.Error("", "render %s: %v", ticket.Request.Upload.Name, err)
		c.notify.Alert(MsgAnalyzeFailed)
		return err
	}
	return nil
}
