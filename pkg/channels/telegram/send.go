package telegram

import (
	"context"
	"fmt"

	"github.com/tinyland-inc/telebridge/pkg/logger"
	"github.com/tinyland-inc/telebridge/pkg/message"
)

// SendResult lists the composite ids of the delivered messages in emission
// order, and every segment that was degraded instead of sent.
type SendResult struct {
	IDs      []string  `json:"ids"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// SendMessage compiles segs into platform requests and issues them one after
// another. A failure on the first request returns the transport error
// unchanged; a later failure returns a *PartialSendError listing what was
// already delivered.
func (a *Adapter) SendMessage(ctx context.Context, segs message.Segments, chatScope string) (SendResult, error) {
	if err := gate(OpSendMessage); err != nil {
		return SendResult{}, err
	}

	calls, warnings, err := compileSend(segs, chatScope)
	logWarnings(OpSendMessage, chatScope, warnings)
	res := SendResult{Warnings: warnings}
	if err != nil {
		return res, err
	}

	for _, call := range calls {
		msgs, err := call.do(ctx, a.api)
		if err != nil {
			if len(res.IDs) == 0 {
				return res, err
			}
			logger.ErrorCF("telegram", "Send failed after partial delivery", map[string]any{
				"chat":   chatScope,
				"method": call.method(),
				"sent":   len(res.IDs),
				"error":  err.Error(),
			})
			return res, &PartialSendError{Sent: res.IDs, Method: call.method(), Err: err}
		}
		for _, m := range msgs {
			res.IDs = append(res.IDs, message.EncodeNumericID(m.Chat.ID, m.MessageID))
		}
	}

	logger.DebugCF("telegram", "Message sent", map[string]any{
		"chat":     chatScope,
		"requests": len(calls),
		"ids":      res.IDs,
	})
	return res, nil
}

// EditMessage replaces the content of the message addressed by id.
func (a *Adapter) EditMessage(ctx context.Context, id string, segs message.Segments) ([]Warning, error) {
	if err := gate(OpEditMessage); err != nil {
		return nil, err
	}
	chat, msgID, err := message.DecodeNumericID(id)
	if err != nil {
		return nil, fmt.Errorf("edit target: %w", err)
	}

	req, warnings := compileEdit(segs, chat, msgID)
	logWarnings(OpEditMessage, chat, warnings)

	if req.media != nil {
		_, err = a.api.EditMessageMedia(ctx, req.media)
	} else {
		_, err = a.api.EditMessageText(ctx, req.text)
	}
	return warnings, err
}

func logWarnings(op Operation, chat string, warnings []Warning) {
	for _, w := range warnings {
		logger.WarnCF("telegram", "Segment degraded", map[string]any{
			"operation": string(op),
			"chat":      chat,
			"segment":   w.Segment,
			"reason":    w.Reason,
		})
	}
}
