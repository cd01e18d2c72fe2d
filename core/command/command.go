// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package command implements the player commands that change translation
// settings. Replies are written in the actor's locale.
package command

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Dhousefe/aCisDsec/core/session"
	"github.com/Dhousefe/aCisDsec/i18n"
)

// Command names.
const (
	SetLang = "setlang"
	LangOn  = "langon"
	LangOff = "langoff"
)

// ErrUnknownCommand is returned for a command this package does not handle.
var ErrUnknownCommand = errors.New("unknown command")

// Handler runs commands against a session manager.
type Handler struct {
	sessions *session.Manager
	logger   zerolog.Logger
}

// NewHandler creates a Handler.
func NewHandler(sessions *session.Manager) *Handler {
	return &Handler{
		sessions: sessions,
		logger:   log.With().Str("sys", "command").Logger(),
	}
}

// Names returns the handled command names.
func (h *Handler) Names() []string {
	return []string{SetLang, LangOn, LangOff}
}

// Dispatch splits a command line such as ".setlang pt BR" and runs it.
func (h *Handler) Dispatch(ctx context.Context, actorID int, line string) (string, error) {
	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")

	return h.Run(ctx, actorID, strings.TrimPrefix(name, "."), args)
}

// Run executes the command name with its raw argument string.
//
// On success it returns the reply to show the actor. Failures the actor
// should see are returned as [*i18n.UserError]; a name that is not handled
// yields [ErrUnknownCommand].
func (h *Handler) Run(ctx context.Context, actorID int, name, args string) (string, error) {
	switch strings.ToLower(name) {
	case SetLang:
		return h.setLang(ctx, actorID, args)
	case LangOn:
		h.sessions.SetTranslation(actorID, true)

		return h.reply(ctx, actorID, "HTML translation enabled for you."), nil
	case LangOff:
		h.sessions.SetTranslation(actorID, false)

		return h.reply(ctx, actorID, "HTML translation disabled for you. Only the original HTML will be shown now."), nil
	default:
		return "", ErrUnknownCommand
	}
}

func (h *Handler) setLang(ctx context.Context, actorID int, args string) (string, error) {
	params := strings.Fields(args)
	if len(params) == 0 || len(params) > 2 {
		return "", h.userError(ctx, actorID, "Usage: .setlang <language> <country>")
	}

	country := ""
	if len(params) == 2 {
		country = params[1]
	}

	locale, err := h.sessions.SetLocale(actorID, params[0], country)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Int("actor", actorID).
			Strs("params", params).
			Msg("Locale change rejected")

		if errors.Is(err, session.ErrUnsupportedLocale) {
			return "", h.userError(ctx, actorID, "Invalid language or country parameters.")
		}

		return "", h.userError(ctx, actorID, "Failed to change language. Please check the input.")
	}

	return h.reply(ctx, actorID, "Language changed to: {{.Language}}", "Language", locale), nil
}

// localized returns ctx carrying the language of actorID's current locale.
func (h *Handler) localized(ctx context.Context, actorID int) context.Context {
	return i18n.WithTag(ctx, i18n.TagForLocale(h.sessions.Get(actorID).Locale))
}

func (h *Handler) reply(ctx context.Context, actorID int, msgid i18n.MsgKey, kv ...any) string {
	return i18n.Tr(h.localized(ctx, actorID), string(msgid), kv...)
}

func (h *Handler) userError(ctx context.Context, actorID int, msgid i18n.MsgKey) error {
	return i18n.NewUserError(h.localized(ctx, actorID), string(msgid))
}
