package view

import (
	"slices"

	"bookrec/internal/book"
)

// Messages shown to the user for failures that carry no server text.
const (
	GenericErrorMessage = "Something went wrong."
	CatalogErrorMessage = "Could not load the book catalog."
)

// Phase is the coarse status of the view.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// Status is Idle, Loading, or Error with a message.
type Status struct {
	Phase   Phase
	Message string
}

func Idle() Status    { return Status{Phase: PhaseIdle} }
func Loading() Status { return Status{Phase: PhaseLoading} }

func Error(msg string) Status { return Status{Phase: PhaseError, Message: msg} }

func (s Status) IsLoading() bool { return s.Phase == PhaseLoading }

// Err returns the error message when the status is Error.
func (s Status) Err() (string, bool) {
	return s.Message, s.Phase == PhaseError
}

func (s Status) String() string {
	if s.Phase == PhaseError {
		return "error: " + s.Message
	}
	return s.Phase.String()
}

// State is everything rendering needs. Slices in a State are never mutated
// after publication; a new fetch replaces them.
type State struct {
	Catalog       []book.Book
	SelectedTitle string
	Results       []book.Book
	Status        Status
}

func (s State) clone() State {
	s.Catalog = slices.Clone(s.Catalog)
	s.Results = slices.Clone(s.Results)
	return s
}
