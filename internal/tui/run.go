package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"stress-quiz/internal/app"
	"stress-quiz/internal/domain"
	"stress-quiz/internal/eventloop"
)

const inboxSize = 256

// Run opens a session for mode and course and drives it from the terminal
// until the user quits or ctx is cancelled.
func Run(ctx context.Context, service *app.Service, mode domain.Mode, course string, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := eventloop.New(inboxSize)
	go loop.Run(ctx)

	msgs := make(chan tea.Msg, inboxSize)
	session := service.Open("", mode, course, loop, NewPresenter(ctx, msgs))
	call := func(fn func() error) error { return loop.Call(ctx, fn) }
	defer func() {
		err := call(func() error {
			service.Close(session.ID())
			return nil
		})
		if err != nil {
			cancel()
			<-loop.Done()
			service.Close(session.ID())
		}
	}()

	model := New(ctx, session, call, msgs, service.Settings(mode).Slots)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(model, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
