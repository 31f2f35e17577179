package parser

import (
	"fmt"
	"strings"
)

// Kind says what a line of shell input asks for.
type Kind int

const (
	KindEmpty Kind = iota
	KindTitle
	KindAuthor
	KindCategory
	KindSearch
	KindExport
	KindCatalog
	KindHelp
	KindExit
)

func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindAuthor:
		return "author"
	case KindCategory:
		return "category"
	case KindSearch:
		return "search"
	case KindExport:
		return "export"
	case KindCatalog:
		return "catalog"
	case KindHelp:
		return "help"
	case KindExit:
		return "exit"
	default:
		return "empty"
	}
}

// Command is one parsed line.
type Command struct {
	Kind Kind
	Arg  string
}

var fields = map[string]Kind{
	"title":    KindTitle,
	"author":   KindAuthor,
	"category": KindCategory,
	"search":   KindSearch,
	"any":      KindSearch,
}

var commands = map[string]Kind{
	"export":  KindExport,
	"catalog": KindCatalog,
	"help":    KindHelp,
	"exit":    KindExit,
	"quit":    KindExit,
}

// Parse - точка входа.
//
//	Dune Messiah            -> title "Dune Messiah"
//	author:Frank Herbert    -> author "Frank Herbert"
//	:export results.html    -> export "results.html"
//	Foundation: The Novel   -> title (unknown field names are part of the title)
func Parse(input string) (Command, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Command{Kind: KindEmpty}, nil
	}
	switch strings.ToLower(trimmed) {
	case "exit", "quit":
		return Command{Kind: KindExit}, nil
	case "help", "?":
		return Command{Kind: KindHelp}, nil
	}

	l := NewLexer(trimmed)
	tok := l.NextToken()

	switch tok.Type {
	case TokenCommand:
		kind, ok := commands[tok.Value]
		if !ok {
			return Command{}, fmt.Errorf("unknown command :%s", tok.Value)
		}
		arg := l.Rest()
		if kind == KindExport && arg == "" {
			return Command{}, fmt.Errorf(":export needs a file name")
		}
		return Command{Kind: kind, Arg: arg}, nil

	case TokenField:
		if kind, ok := fields[tok.Value]; ok {
			arg := l.Rest()
			if arg == "" {
				return Command{}, fmt.Errorf("%s: needs a value", tok.Value)
			}
			return Command{Kind: kind, Arg: arg}, nil
		}
	}

	// Implicit title selection
	return Command{Kind: KindTitle, Arg: trimmed}, nil
}
