// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdiddy/lectic/internal/anthropic"
	"github.com/pdiddy/lectic/internal/lectic"
	"github.com/pdiddy/lectic/internal/render"
	"github.com/pdiddy/lectic/internal/transcript"
	"github.com/pdiddy/lectic/internal/usage"
	"github.com/pdiddy/lectic/pkg/types"
)

// errEmptyConversation is returned when a lectic has nothing to send.
var errEmptyConversation = errors.New("nothing to send: the lectic body is empty")

// usageRecorder is the part of usage.Store the chat command needs.
type usageRecorder interface {
	Record(ctx context.Context, model string, t usage.Tokens, at time.Time) error
}

func runRoot(cmd *cobra.Command, args []string) error {
	inplace, _ := cmd.Flags().GetBool("inplace")
	short, _ := cmd.Flags().GetBool("short")

	path := "-"
	if len(args) == 1 {
		path = args[0]
	}
	if inplace && path == "-" {
		return fmt.Errorf("--inplace needs a file argument")
	}

	text, err := readLectic(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var rec usageRecorder
	if cfg.RecordUsage {
		store, err := usage.NewStore(cfg.DataDir, log)
		if err != nil {
			log.WithError(err).Warn("usage ledger unavailable")
		} else {
			defer store.Close()
			rec = store
		}
	}

	reply, err := converse(cmd.Context(), text, newClient(cfg), rec, log)
	if err != nil {
		return err
	}

	switch {
	case short:
		_, err = fmt.Fprintln(cmd.OutOrStdout(), reply)
	case inplace:
		err = transcript.WriteFile(path, transcript.Append(text, reply))
	default:
		_, err = io.WriteString(cmd.OutOrStdout(), transcript.Append(text, reply))
	}
	return err
}

// converse parses and renders a lectic, asks the backend for the next turn
// and returns it formatted as a reply block. Usage is recorded when rec is
// non-nil; a ledger failure is logged rather than returned. A reply that
// would not read back as one block is logged and returned as an error.
func converse(ctx context.Context, text string, backend anthropic.Backend, rec usageRecorder, log logrus.FieldLogger) (string, error) {
	conv, err := conversationFor(text)
	if err != nil {
		return "", err
	}
	if len(conv.Messages) == 0 {
		return "", errEmptyConversation
	}

	reply, err := backend.Complete(ctx, conv)
	if err != nil {
		return "", err
	}

	if rec != nil {
		t := usage.Tokens{
			Input:  reply.Usage.InputTokens,
			Output: reply.Usage.OutputTokens,
			Cached: reply.Usage.CachedTokens,
		}
		if err := rec.Record(ctx, reply.Model, t, time.Now()); err != nil {
			log.WithError(err).Warn("could not record usage")
		}
	}

	block, err := transcript.FormatReply(conv.Name, reply.Text)
	if err != nil {
		// The reply is already paid for; keep it visible on stderr.
		log.WithField("reply", reply.Text).Error("reply can't be written into the lectic")
		return "", fmt.Errorf("formatting reply: %w", err)
	}
	return block, nil
}

// conversationFor parses text and renders it for the model.
func conversationFor(text string) (*types.Conversation, error) {
	doc, err := lectic.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing lectic: %w", err)
	}
	return render.Render(doc)
}

// readLectic reads the lectic at path, or from stdin when path is "-".
func readLectic(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading standard input: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("can't read lectic: %w", err)
	}
	return string(data), nil
}
