// Package router keeps the stack of screens the quiz runner moves through.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/pgokul695/Winterthon/internal/screen"
)

type navOp int

const (
	opOpen navOp = iota
	opBack
	opSwap
)

// NavMsg asks the router to change the active screen. Build it with
// Open, Back or Swap.
type NavMsg struct {
	op navOp
	to screen.Screen
}

// Open returns a command that stacks s on top of the active screen.
func Open(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return NavMsg{op: opOpen, to: s} }
}

// Back returns a command that returns to the previous screen.
func Back() tea.Cmd {
	return func() tea.Msg { return NavMsg{op: opBack} }
}

// Swap returns a command that replaces the active screen with s, so that
// Back skips over the replaced one. A finished quiz swaps itself for
// its score.
func Swap(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return NavMsg{op: opSwap, to: s} }
}

// Target is the screen a NavMsg moves to, nil for Back.
func (m NavMsg) Target() screen.Screen { return m.to }

// IsBack reports whether m came from Back.
func (m NavMsg) IsBack() bool { return m.op == opBack }

// Router owns the screen stack. The bottom screen is never removed.
type Router struct {
	stack []screen.Screen
}

func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

func (r *Router) Init() tea.Cmd {
	return r.Active().Init()
}

func (r *Router) Active() screen.Screen {
	return r.stack[len(r.stack)-1]
}

func (r *Router) Depth() int {
	return len(r.stack)
}

// Update applies a NavMsg, or hands any other message to the active
// screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	nav, ok := msg.(NavMsg)
	if !ok {
		next, cmd := r.Active().Update(msg)
		r.stack[len(r.stack)-1] = next
		return cmd
	}

	switch nav.op {
	case opOpen:
		r.stack = append(r.stack, nav.to)
	case opSwap:
		r.stack[len(r.stack)-1] = nav.to
	case opBack:
		if len(r.stack) > 1 {
			r.stack = r.stack[:len(r.stack)-1]
		}
		return nil
	}
	return nav.to.Init()
}

func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}
